// Package services defines the business logic of the movie catalog.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Service methods wrap these sentinels with fmt.Errorf("%w: ...") to attach a
// human-readable detail; callers match with errors.Is. Translation into HTTP
// status codes is performed at the handler layer.
package services

import (
	"errors"

	"github.com/tbourn/go-movie-catalog/internal/sentiment"
)

var (
	// ErrValidation indicates malformed or missing input (empty required
	// field, empty review, no search predicate).
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates that the (title, director) pair is already taken
	// by a different movie.
	ErrConflict = errors.New("movie already exists")

	// ErrNotFound indicates a missing movie id or an empty result set.
	ErrNotFound = errors.New("not found")

	// ErrModelUnavailable is returned when sentiment analysis is requested
	// while the classifier is degraded.
	ErrModelUnavailable = sentiment.ErrModelUnavailable
)

// Package services – MovieService
//
// This file implements MovieService, which owns the lifecycle of movie
// records. It normalizes and validates input, enforces the (title, director)
// uniqueness rule, and coordinates repository operations for creating,
// looking up, updating, reviewing and deleting movies.
//
// Duplicate detection runs inside the same transaction as the write, and the
// storage-level unique index backstops concurrent writers; both paths surface
// as ErrConflict.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-movie-catalog/internal/domain"
	"github.com/tbourn/go-movie-catalog/internal/repo"
)

// MovieRepo defines the repository contract required by MovieService and
// ReviewService. Implementations are responsible for persistence of movies.
type MovieRepo interface {
	// GetMovie fetches a movie by id (repo.ErrNotFound if absent).
	GetMovie(ctx context.Context, db *gorm.DB, id int64) (*domain.Movie, error)

	// FindMovies returns all movies matching the exact-match filter.
	FindMovies(ctx context.Context, db *gorm.DB, f repo.MovieFilter) ([]domain.Movie, error)

	// FindDuplicate returns a movie with (title, director) other than excludeID, or nil.
	FindDuplicate(ctx context.Context, db *gorm.DB, title, director string, excludeID int64) (*domain.Movie, error)

	// ListMovies returns all movies in id order.
	ListMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error)

	// ListReviewedMovies returns all movies carrying a review.
	ListReviewedMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error)

	// InsertMovie persists a new movie and assigns its id.
	InsertMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error

	// UpdateMovie replaces the mutable fields of an existing movie.
	UpdateMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error

	// DeleteMovie removes a movie by id.
	DeleteMovie(ctx context.Context, db *gorm.DB, id int64) error

	// SetMovieSentiment stores a sentiment for id while its review still
	// equals review (repo.ErrStale otherwise).
	SetMovieSentiment(ctx context.Context, db *gorm.DB, id int64, review string, raw *string, analyzedAt time.Time) error
}

// MoviePatch carries a partial update. Nil fields are left unchanged.
type MoviePatch struct {
	Title    *string
	Director *string
	Category *string
	Rating   *float64
	ImageURL *string
	Review   *string
}

// MovieQuery is a conjunctive exact-match search. Blank fields are ignored.
type MovieQuery struct {
	Title    string
	Director string
	Category string
}

// MovieService provides movie-level operations.
type MovieService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the movie repository used by this service.
	Repo MovieRepo

	// FieldMaxRunes caps title/director/category by rune length.
	FieldMaxRunes int
	// Now is the clock used to stamp review changes.
	Now func() time.Time

	// writeMu serializes check-then-write transactions within this process;
	// the unique index covers writers in other processes.
	writeMu sync.Mutex
}

// NewMovieService constructs a MovieService with default limits.
func NewMovieService(db *gorm.DB, r MovieRepo) *MovieService {
	return &MovieService{
		DB:            db,
		Repo:          r,
		FieldMaxRunes: 255,
		Now:           time.Now,
	}
}

// Create validates the required fields and inserts a new movie without
// sentiment. Text fields are stored in canonical form (see normalizeField).
// A taken (title, director) pair yields ErrConflict.
func (s *MovieService) Create(ctx context.Context, title, director, category string) (*domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("movie.title", title),
			attribute.String("movie.director", director),
		),
	)
	defer span.End()

	m := &domain.Movie{
		Title:    normalizeField(title),
		Director: normalizeField(director),
		Category: normalizeField(category),
	}
	if err := s.validateRequired(m); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(ctx, tx, m.Title, m.Director, 0); err != nil {
			return err
		}
		return s.Repo.InsertMovie(ctx, tx, m)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	span.SetAttributes(attribute.Int64("movie.id", m.ID))
	return m, nil
}

// Get returns the movie with id or ErrNotFound.
func (s *MovieService) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("movie.id", id)),
	)
	defer span.End()

	m, err := s.Repo.GetMovie(ctx, s.DB, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return m, nil
}

// Update applies the non-nil fields of p to the movie with id. The effective
// (title, director) must not collide with a different movie. Supplying an
// empty required field or an empty review yields ErrValidation.
func (s *MovieService) Update(ctx context.Context, id int64, p MoviePatch) (*domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("movie.id", id)),
	)
	defer span.End()

	var out *domain.Movie
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.Repo.GetMovie(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.applyPatch(m, p); err != nil {
			return err
		}
		if err := s.validateRequired(m); err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, tx, m.Title, m.Director, m.ID); err != nil {
			return err
		}
		if err := s.Repo.UpdateMovie(ctx, tx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return out, nil
}

// AttachReview sets the review text of the movie with id. It does not run
// sentiment analysis; a previously stored sentiment stays in place but is no
// longer reported as current.
func (s *MovieService) AttachReview(ctx context.Context, id int64, text string) (*domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "AttachReview",
		trace.WithAttributes(
			attribute.Int64("movie.id", id),
			attribute.Int("review.runes", utf8.RuneCountInString(text)),
		),
	)
	defer span.End()

	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return nil, fmt.Errorf("%w: review must not be empty", ErrValidation)
	}

	var out *domain.Movie
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.Repo.GetMovie(ctx, tx, id)
		if err != nil {
			return err
		}
		m.SetReview(text, s.now())
		if err := s.Repo.UpdateMovie(ctx, tx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return out, nil
}

// Delete removes the movie with id or returns ErrNotFound.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("movie.id", id)),
	)
	defer span.End()

	return mapRepoError(s.Repo.DeleteMovie(ctx, s.DB, id))
}

// ListAll returns every movie in insertion order. An empty catalog yields
// ErrNotFound.
func (s *MovieService) ListAll(ctx context.Context) ([]domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "ListAll")
	defer span.End()

	items, err := s.Repo.ListMovies(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no movies found", ErrNotFound)
	}
	span.SetAttributes(attribute.Int("movies.count", len(items)))
	return items, nil
}

// FindByTitle returns the first movie (lowest id) whose title equals title.
// The comparison is case-sensitive and exact after normalizeField, so
// " Dune " finds "Dune" but "dune" does not.
func (s *MovieService) FindByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "FindByTitle",
		trace.WithAttributes(attribute.String("movie.title", title)),
	)
	defer span.End()

	title = normalizeField(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	items, err := s.Repo.FindMovies(ctx, s.DB, repo.MovieFilter{Title: title})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no movie titled %q", ErrNotFound, title)
	}
	return &items[0], nil
}

// FindByDirector returns every movie whose director equals director,
// case-sensitive and exact after normalizeField.
func (s *MovieService) FindByDirector(ctx context.Context, director string) ([]domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "FindByDirector",
		trace.WithAttributes(attribute.String("movie.director", director)),
	)
	defer span.End()

	director = normalizeField(director)
	if director == "" {
		return nil, fmt.Errorf("%w: director is required", ErrValidation)
	}
	items, err := s.Repo.FindMovies(ctx, s.DB, repo.MovieFilter{Director: director})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no movies by %q", ErrNotFound, director)
	}
	return items, nil
}

// Search returns the movies matching every non-blank field of q. At least
// one field is required. Each field matches exactly after normalizeField.
func (s *MovieService) Search(ctx context.Context, q MovieQuery) ([]domain.Movie, error) {
	ctx, span := otel.Tracer("services/MovieService").Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("query.title", q.Title),
			attribute.String("query.director", q.Director),
			attribute.String("query.category", q.Category),
		),
	)
	defer span.End()

	f := repo.MovieFilter{
		Title:    normalizeField(q.Title),
		Director: normalizeField(q.Director),
		Category: normalizeField(q.Category),
	}
	if f.Empty() {
		return nil, fmt.Errorf("%w: at least one of title, director or category is required", ErrValidation)
	}
	items, err := s.Repo.FindMovies(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no movies match the search", ErrNotFound)
	}
	return items, nil
}

// applyPatch copies the supplied fields of p onto m.
func (s *MovieService) applyPatch(m *domain.Movie, p MoviePatch) error {
	if p.Title != nil {
		m.Title = normalizeField(*p.Title)
	}
	if p.Director != nil {
		m.Director = normalizeField(*p.Director)
	}
	if p.Category != nil {
		m.Category = normalizeField(*p.Category)
	}
	if p.Rating != nil {
		r := *p.Rating
		m.Rating = &r
	}
	if p.ImageURL != nil {
		u := strings.TrimSpace(*p.ImageURL)
		m.ImageURL = &u
	}
	if p.Review != nil {
		text := norm.NFC.String(strings.TrimSpace(*p.Review))
		if text == "" {
			return fmt.Errorf("%w: review must not be empty", ErrValidation)
		}
		if m.Review == nil || *m.Review != text {
			m.SetReview(text, s.now())
		}
	}
	return nil
}

// validateRequired checks the non-empty and length rules of the required fields.
func (s *MovieService) validateRequired(m *domain.Movie) error {
	for _, f := range []struct{ name, val string }{
		{"title", m.Title},
		{"director", m.Director},
		{"category", m.Category},
	} {
		if f.val == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
		if s.FieldMaxRunes > 0 && utf8.RuneCountInString(f.val) > s.FieldMaxRunes {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, f.name, s.FieldMaxRunes)
		}
	}
	return nil
}

// ensureUnique fails with ErrConflict when another movie holds (title, director).
func (s *MovieService) ensureUnique(ctx context.Context, tx *gorm.DB, title, director string, selfID int64) error {
	dup, err := s.Repo.FindDuplicate(ctx, tx, title, director, selfID)
	if err != nil {
		return err
	}
	if dup != nil {
		return fmt.Errorf("%w: %q by %q (id %d)", ErrConflict, title, director, dup.ID)
	}
	return nil
}

func (s *MovieService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// normalizeField is the canonical form of every stored and queried text
// field: surrounding whitespace trimmed, Unicode NFC applied. Case is kept.
// Writes and lookups both pass through it, so "exact match" in this package
// means byte equality of the canonical forms.
func normalizeField(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}

// mapRepoError translates repository sentinels into service errors, leaving
// service errors and unknown failures unchanged.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: movie not found", ErrNotFound)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: title and director already taken", ErrConflict)
	default:
		return err
	}
}

// Package repo implements the data persistence layer for the movie catalog,
// backed by GORM. This file provides repository functions for the Movie model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Error semantics:
//   - A missing movie yields ErrNotFound (gorm.ErrRecordNotFound).
//   - A (title, director) unique violation yields ErrDuplicate.
//   - Other DB errors are propagated unchanged.
//
// Functions:
//
//   - GetMovie(ctx, db, id) -> *domain.Movie, error
//   - FindMovies(ctx, db, filter) -> []domain.Movie, error
//   - FindDuplicate(ctx, db, title, director, excludeID) -> *domain.Movie, error
//   - ListMovies(ctx, db) -> []domain.Movie, error
//   - ListReviewedMovies(ctx, db) -> []domain.Movie, error
//   - InsertMovie(ctx, db, m) -> error
//   - UpdateMovie(ctx, db, m) -> error
//   - SetMovieSentiment(ctx, db, id, review, raw, analyzedAt) -> error
//   - DeleteMovie(ctx, db, id) -> error
//
// Lists are ordered by id ascending, which is insertion order.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-movie-catalog/internal/domain"
)

// MovieFilter is an exact-match conjunction over the non-empty fields.
type MovieFilter struct {
	Title    string
	Director string
	Category string
}

// Empty reports whether no predicate is set.
func (f MovieFilter) Empty() bool {
	return f.Title == "" && f.Director == "" && f.Category == ""
}

// mutableColumns lists every column replaced by UpdateMovie.
var mutableColumns = []string{
	"title", "director", "category",
	"rating", "image_url", "review",
	"sentiment", "review_updated_at", "analyzed_at",
	"updated_at",
}

// GetMovie fetches a movie by id, or ErrNotFound.
func GetMovie(ctx context.Context, db *gorm.DB, id int64) (*domain.Movie, error) {
	var m domain.Movie
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindMovies returns all movies matching every non-empty field of f. An empty
// filter matches everything; callers decide whether that is allowed.
func FindMovies(ctx context.Context, db *gorm.DB, f MovieFilter) ([]domain.Movie, error) {
	q := db.WithContext(ctx).Model(&domain.Movie{})
	if f.Title != "" {
		q = q.Where("title = ?", f.Title)
	}
	if f.Director != "" {
		q = q.Where("director = ?", f.Director)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var out []domain.Movie
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

// FindDuplicate returns a movie with exactly (title, director) other than
// excludeID (0 excludes nothing), or (nil, nil) when none exists.
func FindDuplicate(ctx context.Context, db *gorm.DB, title, director string, excludeID int64) (*domain.Movie, error) {
	q := db.WithContext(ctx).Where("title = ? AND director = ?", title, director)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var m domain.Movie
	err := q.Order("id ASC").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMovies returns every movie ordered by id.
func ListMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	var out []domain.Movie
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// ListReviewedMovies returns every movie carrying a non-empty review.
func ListReviewedMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	var out []domain.Movie
	err := db.WithContext(ctx).
		Where("review IS NOT NULL AND review <> ''").
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// InsertMovie persists m and sets its id. A duplicate (title, director)
// yields ErrDuplicate.
func InsertMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	m.ID = 0
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateMovie replaces every mutable column of the row identified by m.ID,
// writing NULLs for absent optional fields. It returns ErrNotFound when no
// row matched and ErrDuplicate on a (title, director) collision.
func UpdateMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	m.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ?", m.ID).
		Select(mutableColumns).
		Updates(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMovieSentiment writes only the sentiment columns of movie id, and only
// while its review still equals review. Other columns are left untouched so a
// concurrent edit is never overwritten. It returns ErrStale when no row
// matched: the review changed or the movie was deleted.
func SetMovieSentiment(ctx context.Context, db *gorm.DB, id int64, review string, raw *string, analyzedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ? AND review = ?", id, review).
		Updates(map[string]any{
			"sentiment":   raw,
			"analyzed_at": analyzedAt.UTC(),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// DeleteMovie removes the row with id, or returns ErrNotFound.
func DeleteMovie(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Movie{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

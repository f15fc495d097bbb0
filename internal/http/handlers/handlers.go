// Package handlers exposes the movie catalog over HTTP.
//
// Handlers are transport-thin: they parse and validate input, call the
// application services, and translate results into HTTP responses. Storage
// details needed by the transport itself (conditional GET, idempotent
// create, health) are reached through the narrow Store interface.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-movie-catalog/internal/domain"
	"github.com/tbourn/go-movie-catalog/internal/services"
)

// MovieService defines the catalog operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor ctx.
type MovieService interface {
	Create(ctx context.Context, title, director, category string) (*domain.Movie, error)
	Get(ctx context.Context, id int64) (*domain.Movie, error)
	Update(ctx context.Context, id int64, p services.MoviePatch) (*domain.Movie, error)
	AttachReview(ctx context.Context, id int64, text string) (*domain.Movie, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]domain.Movie, error)
	FindByTitle(ctx context.Context, title string) (*domain.Movie, error)
	FindByDirector(ctx context.Context, director string) ([]domain.Movie, error)
	Search(ctx context.Context, q services.MovieQuery) ([]domain.Movie, error)
}

// ReviewService runs batch sentiment analysis.
type ReviewService interface {
	AnalyzeAll(ctx context.Context) (*services.AnalysisReport, error)
}

// Store is the slice of persistence the transport uses directly.
type Store interface {
	// Ping checks that the database answers queries.
	Ping(ctx context.Context) error
	// MoviesStats returns the row count and latest update time for ETags.
	MoviesStats(ctx context.Context) (count int64, maxUpdatedAt *time.Time, err error)
	// GetIdempotency returns a live record for (scope, key).
	GetIdempotency(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error)
	// CreateIdempotency remembers the result of a completed request for ttl.
	CreateIdempotency(ctx context.Context, scope, key string, movieID int64, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// ModelStatus reports whether the sentiment model is loaded.
type ModelStatus interface {
	Ready() bool
}

// Deps wires Handlers. Store and Model may be nil: conditional GET and
// idempotent create are then skipped, and health reports the missing part.
type Deps struct {
	Movies  MovieService
	Reviews ReviewService
	Store   Store
	Model   ModelStatus

	// IdempotencyTTL is how long a create result can be replayed.
	IdempotencyTTL time.Duration
	// PingTimeout bounds the health check database probe.
	PingTimeout time.Duration
}

// Handlers groups the HTTP endpoints of the catalog.
type Handlers struct {
	movies  MovieService
	reviews ReviewService
	store   Store
	model   ModelStatus

	idemTTL     time.Duration
	pingTimeout time.Duration
}

// New constructs Handlers from d, applying defaults for zero durations.
func New(d Deps) *Handlers {
	h := &Handlers{
		movies:      d.Movies,
		reviews:     d.Reviews,
		store:       d.Store,
		model:       d.Model,
		idemTTL:     d.IdempotencyTTL,
		pingTimeout: d.PingTimeout,
	}
	if h.idemTTL <= 0 {
		h.idemTTL = 24 * time.Hour
	}
	if h.pingTimeout <= 0 {
		h.pingTimeout = 2 * time.Second
	}
	return h
}

// Register mounts the catalog endpoints on g. Static segments (search,
// title, director, review_analyze) coexist with the :id parameter. Title and
// director lookups use catch-all parameters so values containing "/"
// ("Face/Off") still route.
func (h *Handlers) Register(g gin.IRoutes) {
	g.GET("/movies", h.ListMovies)
	g.POST("/movies", h.CreateMovie)
	g.GET("/movies/search", h.SearchMovies)
	g.GET("/movies/title/*title", h.GetByTitle)
	g.GET("/movies/director/*director", h.GetByDirector)
	g.POST("/movies/review_analyze", h.AnalyzeReviews)
	g.GET("/movies/:id", h.GetMovie)
	g.PUT("/movies/:id", h.UpdateMovie)
	g.DELETE("/movies/:id", h.DeleteMovie)
	g.POST("/movies/:id/review", h.AttachReview)
}

// Package httpapi wires the HTTP transport (Gin) to the catalog services,
// middleware, and route handlers. It owns the middleware order and the
// cross-cutting endpoints (health, metrics, API docs).
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-movie-catalog/internal/config"
	"github.com/tbourn/go-movie-catalog/internal/docs"
	"github.com/tbourn/go-movie-catalog/internal/domain"
	"github.com/tbourn/go-movie-catalog/internal/http/handlers"
	"github.com/tbourn/go-movie-catalog/internal/http/middleware"
	"github.com/tbourn/go-movie-catalog/internal/repo"
	"github.com/tbourn/go-movie-catalog/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// movieRepoShim adapts the repository free functions to services.MovieRepo.
type movieRepoShim struct{}

func (movieRepoShim) GetMovie(ctx context.Context, db *gorm.DB, id int64) (*domain.Movie, error) {
	return repo.GetMovie(ctx, db, id)
}

func (movieRepoShim) FindMovies(ctx context.Context, db *gorm.DB, f repo.MovieFilter) ([]domain.Movie, error) {
	return repo.FindMovies(ctx, db, f)
}

func (movieRepoShim) FindDuplicate(ctx context.Context, db *gorm.DB, title, director string, excludeID int64) (*domain.Movie, error) {
	return repo.FindDuplicate(ctx, db, title, director, excludeID)
}

func (movieRepoShim) ListMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	return repo.ListMovies(ctx, db)
}

func (movieRepoShim) ListReviewedMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	return repo.ListReviewedMovies(ctx, db)
}

func (movieRepoShim) InsertMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	return repo.InsertMovie(ctx, db, m)
}

func (movieRepoShim) UpdateMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	return repo.UpdateMovie(ctx, db, m)
}

func (movieRepoShim) DeleteMovie(ctx context.Context, db *gorm.DB, id int64) error {
	return repo.DeleteMovie(ctx, db, id)
}

func (movieRepoShim) SetMovieSentiment(ctx context.Context, db *gorm.DB, id int64, review string, raw *string, analyzedAt time.Time) error {
	return repo.SetMovieSentiment(ctx, db, id, review, raw, analyzedAt)
}

// storeShim binds the transport-level Store to a database handle.
type storeShim struct{ db *gorm.DB }

func (s storeShim) Ping(ctx context.Context) error { return repo.Ping(ctx, s.db) }

func (s storeShim) MoviesStats(ctx context.Context) (int64, *time.Time, error) {
	return repo.MoviesStats(ctx, s.db)
}

func (s storeShim) GetIdempotency(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s.db, scope, key, now)
}

func (s storeShim) CreateIdempotency(ctx context.Context, scope, key string, movieID int64, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, s.db, scope, key, movieID, status, ttl)
}

// RegisterRoutes attaches all middleware and endpoints to r.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger (installs the request-scoped logger)
//  4. Recovery
//  5. Body size limit
//  6. Metrics
//  7. Idempotency validator (before the limiter so replays bypass it)
//  8. Rate limiter (per client IP)
//  9. CORS and security headers
//  10. gzip
//
// /health, /metrics and / are mounted at the root; the catalog lives under
// cfg.APIBasePath.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, clf services.Classifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	store := storeShim{db: db}
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			rec, err := store.GetIdempotency(ctx, scope, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return err == nil && rec != nil, err
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	r.Use(cors.New(corsConfig(cfg.CORS)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	movieSvc := services.NewMovieService(db, movieRepoShim{})
	reviewSvc := services.NewReviewService(db, movieRepoShim{}, clf, cfg.Sentiment.Timeout)

	h := handlers.New(handlers.Deps{
		Movies:         movieSvc,
		Reviews:        reviewSvc,
		Store:          store,
		Model:          clf,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = "/" + strings.TrimPrefix(basePath(cfg.APIBasePath), "/")
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h.Register(groupWithPrefix(r, cfg.APIBasePath))
}

// corsConfig allows every origin when none is configured (credentials off),
// otherwise exactly the listed origins.
func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{
			"X-Request-ID", "ETag", "Location",
			middleware.HeaderIdempotencyReplayed, handlers.HeaderAnalysisFailed,
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

// limitBody caps the request body at maxBytes; reads beyond it fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	return r.Group(basePath(prefix))
}

func basePath(prefix string) string {
	if prefix == "" || prefix == "/" {
		return ""
	}
	return prefix
}

// Package services – ReviewService
//
// This file implements ReviewService, which runs sentiment analysis over every
// reviewed movie and persists the resulting distributions. Records are
// classified one at a time, each call bounded by Timeout; a failing record is
// reported and skipped while the rest of the batch proceeds.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-movie-catalog/internal/domain"
	"github.com/tbourn/go-movie-catalog/internal/repo"
)

// Classifier maps review text to a sentiment distribution.
type Classifier interface {
	// Ready reports whether the underlying model loaded successfully.
	Ready() bool
	// Classify returns a two-class distribution for text.
	Classify(ctx context.Context, text string) (domain.Sentiment, error)
}

// AnalysisFailure records why a single movie could not be analyzed.
type AnalysisFailure struct {
	MovieID int64
	Err     error
}

// AnalysisReport is the outcome of a batch run.
type AnalysisReport struct {
	// Analyzed holds the movies whose new sentiment was persisted, in id order.
	Analyzed []domain.Movie
	// Failed lists the movies skipped because classification or persistence failed.
	Failed []AnalysisFailure
}

// FailedIDs returns the ids of the failed records.
func (r *AnalysisReport) FailedIDs() []int64 {
	out := make([]int64, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.MovieID)
	}
	return out
}

// ReviewService coordinates batch sentiment analysis.
type ReviewService struct {
	DB         *gorm.DB
	Repo       MovieRepo
	Classifier Classifier

	// Timeout bounds each Classify call; zero means no per-record bound.
	Timeout time.Duration
	// Now is the clock used to stamp analysis time.
	Now func() time.Time
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB, r MovieRepo, c Classifier, timeout time.Duration) *ReviewService {
	return &ReviewService{DB: db, Repo: r, Classifier: c, Timeout: timeout, Now: time.Now}
}

// AnalyzeAll classifies every reviewed movie and stores the results.
//
// It returns ErrNotFound when no movie has a review and ErrModelUnavailable
// when the classifier is degraded; in both cases no record is touched.
// Otherwise the report lists analyzed and failed records.
func (s *ReviewService) AnalyzeAll(ctx context.Context) (*AnalysisReport, error) {
	ctx, span := otel.Tracer("services/ReviewService").Start(ctx, "AnalyzeAll")
	defer span.End()

	items, err := s.Repo.ListReviewedMovies(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no reviewed movies to analyze", ErrNotFound)
	}
	if s.Classifier == nil || !s.Classifier.Ready() {
		span.SetStatus(codes.Error, "model unavailable")
		return nil, ErrModelUnavailable
	}

	lg := loggerFrom(ctx)
	report := &AnalysisReport{Analyzed: make([]domain.Movie, 0, len(items))}
	for i := range items {
		m := &items[i]
		if err := s.analyzeOne(ctx, m); err != nil {
			lg.Warn().Int64("movie_id", m.ID).Err(err).Msg("review analysis failed")
			report.Failed = append(report.Failed, AnalysisFailure{MovieID: m.ID, Err: err})
			continue
		}
		report.Analyzed = append(report.Analyzed, *m)
	}

	span.SetAttributes(
		attribute.Int("reviews.analyzed", len(report.Analyzed)),
		attribute.Int("reviews.failed", len(report.Failed)),
	)
	return report, nil
}

// analyzeOne classifies m under the per-record timeout and persists only the
// sentiment. If the review changed or the movie was deleted while the model
// ran, nothing is written and the record counts as failed. On success m is
// refreshed from storage.
func (s *ReviewService) analyzeOne(ctx context.Context, m *domain.Movie) error {
	ctx, span := otel.Tracer("services/ReviewService").Start(ctx, "analyzeOne",
		trace.WithAttributes(attribute.Int64("movie.id", m.ID)),
	)
	defer span.End()

	cctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	review := *m.Review
	sent, err := s.Classifier.Classify(cctx, review)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("classify: %w", err)
	}

	m.SetSentiment(sent, s.now())
	if m.AnalyzedAt == nil {
		return errors.New("classify: empty distribution")
	}
	if err := s.Repo.SetMovieSentiment(ctx, s.DB, m.ID, review, m.SentimentRaw, *m.AnalyzedAt); err != nil {
		span.RecordError(err)
		if errors.Is(err, repo.ErrStale) {
			return fmt.Errorf("persist: review changed or movie deleted during analysis: %w", err)
		}
		return fmt.Errorf("persist: %w", err)
	}

	if fresh, err := s.Repo.GetMovie(ctx, s.DB, m.ID); err == nil {
		*m = *fresh
	}
	return nil
}

func (s *ReviewService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// loggerFrom returns the request-scoped logger if one was attached to ctx,
// otherwise the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

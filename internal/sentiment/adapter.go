package sentiment

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-movie-catalog/internal/domain"
)

// Adapter is safe for concurrent use. Its ready flag is written once by Load
// and read with atomic semantics by health checks and request handlers.
type Adapter struct {
	backend   Backend
	maxTokens int
	ready     atomic.Bool
}

// NewAdapter wraps b. The adapter starts degraded; Load (or MarkReady in
// tests) flips it to ready after a successful probe.
func NewAdapter(b Backend, maxTokens int) *Adapter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Adapter{backend: b, maxTokens: maxTokens}
}

// Ready reports whether the model loaded successfully.
func (a *Adapter) Ready() bool {
	return a != nil && a.ready.Load()
}

// MarkReady flags the adapter as usable.
func (a *Adapter) MarkReady() {
	a.ready.Store(true)
	modelReady.Set(1)
}

// BackendName returns the configured backend name, or "none".
func (a *Adapter) BackendName() string {
	if a == nil || a.backend == nil {
		return "none"
	}
	return a.backend.Name()
}

// MaxTokens returns the truncation bound applied to every input.
func (a *Adapter) MaxTokens() int { return a.maxTokens }

// Classify returns the sentiment distribution of text. Input longer than
// MaxTokens token-equivalents is truncated, never rejected. The deadline of
// ctx bounds the call.
func (a *Adapter) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	ctx, span := otel.Tracer("sentiment/Adapter").Start(ctx, "Classify",
		trace.WithAttributes(attribute.String("sentiment.backend", a.BackendName())),
	)
	defer span.End()

	if !a.Ready() {
		classifications.WithLabelValues(outcomeUnavailable).Inc()
		span.SetStatus(codes.Error, "model unavailable")
		return nil, ErrModelUnavailable
	}

	text, truncated := Truncate(text, a.maxTokens)
	span.SetAttributes(attribute.Bool("sentiment.truncated", truncated))

	start := time.Now()
	s, err := a.backend.Predict(ctx, text)
	classifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		classifications.WithLabelValues(outcomeOf(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	classifications.WithLabelValues(outcomeOK).Inc()
	return domain.NewSentiment(s.Positive(), s.Negative()), nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return outcomeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	default:
		return outcomeError
	}
}

var tokenRE = regexp.MustCompile(`\S+`)

// Truncate keeps the first maxTokens whitespace-delimited tokens of text,
// preserving the original spacing between them. It reports whether anything
// was cut.
func Truncate(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return text, false
	}
	locs := tokenRE.FindAllStringIndex(text, maxTokens+1)
	if len(locs) <= maxTokens {
		return text, false
	}
	return text[:locs[maxTokens-1][1]], true
}

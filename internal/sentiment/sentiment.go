// Package sentiment turns review text into a two-class probability
// distribution {positive, negative}.
//
// The Adapter is the only type the rest of the application talks to. It
// wraps a Backend (a remote inference server or the built-in lexicon model),
// bounds input length, records metrics, and carries the process-wide "model
// ready" flag. When the backend fails to load at startup the Adapter stays
// permanently degraded and every Classify call returns ErrModelUnavailable.
package sentiment

import (
	"context"
	"errors"

	"github.com/tbourn/go-movie-catalog/internal/domain"
)

// ErrModelUnavailable is returned by Classify when the model is not loaded or
// the remote backend is being short-circuited.
var ErrModelUnavailable = errors.New("sentiment model unavailable")

// DefaultMaxTokens is the model's maximum sequence length in token-equivalents.
const DefaultMaxTokens = 512

// Backend is a concrete classifier implementation.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Probe verifies the backend is usable. It runs once at startup.
	Probe(ctx context.Context) error
	// Predict classifies text, which has already been truncated.
	Predict(ctx context.Context, text string) (domain.Sentiment, error)
}

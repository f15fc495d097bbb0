package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config selects and tunes the backend.
type Config struct {
	// Backend is "http" or "lexicon".
	Backend     string
	Endpoint    string
	HealthPath  string
	Timeout     time.Duration
	MaxTokens   int
	LexiconPath string
}

// Load builds the configured backend and probes it once. Any failure is
// logged and yields a permanently degraded adapter; Load never fails startup.
func Load(ctx context.Context, cfg Config) *Adapter {
	b, err := newBackend(cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Backend).Msg("sentiment backend could not be built; analysis disabled")
		modelReady.Set(0)
		return NewAdapter(nil, cfg.MaxTokens)
	}

	a := NewAdapter(b, cfg.MaxTokens)
	pctx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := b.Probe(pctx); err != nil {
		log.Error().Err(err).Str("backend", b.Name()).Msg("sentiment model not ready; analysis disabled")
		modelReady.Set(0)
		return a
	}

	a.MarkReady()
	log.Info().Str("backend", b.Name()).Int("max_tokens", a.MaxTokens()).Msg("sentiment model ready")
	return a
}

func newBackend(cfg Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "http", "":
		return NewHTTPBackend(HTTPOptions{
			Endpoint:   cfg.Endpoint,
			HealthPath: cfg.HealthPath,
			Timeout:    cfg.Timeout,
		})
	case "lexicon":
		if cfg.LexiconPath == "" {
			return DefaultLexicon(), nil
		}
		return LoadLexiconFile(cfg.LexiconPath)
	default:
		return nil, fmt.Errorf("sentiment: unknown backend %q", cfg.Backend)
	}
}

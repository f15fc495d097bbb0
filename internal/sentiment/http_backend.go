package sentiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tbourn/go-movie-catalog/internal/domain"
)

// maxResponseBytes caps how much of a model response is read.
const maxResponseBytes = 1 << 20

// HTTPOptions configures an HTTPBackend.
type HTTPOptions struct {
	// Endpoint is the inference URL that accepts POSTed text.
	Endpoint string
	// HealthPath, when set, is appended to Endpoint for the startup probe.
	// When empty the probe classifies a short sample instead.
	HealthPath string
	// Timeout bounds each HTTP exchange. Zero keeps the client's default.
	Timeout time.Duration
	// Client overrides the HTTP client (tests).
	Client *http.Client
}

// HTTPBackend calls a remote text-classification server. Calls run through a
// circuit breaker; while it is open Predict fails fast with
// ErrModelUnavailable.
type HTTPBackend struct {
	endpoint   string
	healthPath string
	client     *http.Client
	cb         *gobreaker.CircuitBreaker[domain.Sentiment]
}

type predictRequest struct {
	Inputs  string         `json:"inputs"`
	Options predictOptions `json:"options"`
}

type predictOptions struct {
	Truncation bool `json:"truncation"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewHTTPBackend validates o and builds the backend.
func NewHTTPBackend(o HTTPOptions) (*HTTPBackend, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(o.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("sentiment: endpoint is required for the http backend")
	}
	client := o.Client
	if client == nil {
		client = &http.Client{}
	}
	if o.Timeout > 0 {
		c := *client
		c.Timeout = o.Timeout
		client = &c
	}

	name := "sentiment-http"
	breakerState.WithLabelValues(name).Set(0)
	cb := gobreaker.NewCircuitBreaker[domain.Sentiment](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("sentiment circuit breaker state change")
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// Caller cancellation says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &HTTPBackend{
		endpoint:   endpoint,
		healthPath: o.HealthPath,
		client:     client,
		cb:         cb,
	}, nil
}

// Name implements Backend.
func (b *HTTPBackend) Name() string { return "http" }

// Probe implements Backend.
func (b *HTTPBackend) Probe(ctx context.Context) error {
	if b.healthPath == "" {
		_, err := b.predict(ctx, "ok")
		return err
	}
	url := b.endpoint + "/" + strings.TrimLeft(b.healthPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("sentiment: probe %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sentiment: probe %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// Predict implements Backend.
func (b *HTTPBackend) Predict(ctx context.Context, text string) (domain.Sentiment, error) {
	s, err := b.cb.Execute(func() (domain.Sentiment, error) {
		return b.predict(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return s, err
}

func (b *HTTPBackend) predict(ctx context.Context, text string) (domain.Sentiment, error) {
	body, err := json.Marshal(predictRequest{Inputs: text, Options: predictOptions{Truncation: true}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("sentiment: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sentiment: backend status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return decodePrediction(raw)
}

// decodePrediction accepts [{label,score}], [[{label,score}]] or a plain
// {label: score} object and folds the labels onto the two classes.
func decodePrediction(raw []byte) (domain.Sentiment, error) {
	var scores []labelScore

	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		scores = nested[0]
	} else if err := json.Unmarshal(raw, &scores); err != nil {
		var obj map[string]float64
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("sentiment: unrecognized response: %w", err)
		}
		for k, v := range obj {
			scores = append(scores, labelScore{Label: k, Score: v})
		}
	}

	var pos, neg float64
	var seen bool
	for _, ls := range scores {
		switch strings.ToLower(strings.TrimSpace(ls.Label)) {
		case "positive", "pos", "label_1":
			pos, seen = ls.Score, true
		case "negative", "neg", "label_0":
			neg, seen = ls.Score, true
		}
	}
	if !seen {
		return nil, errors.New("sentiment: response carries no positive/negative labels")
	}
	return domain.NewSentiment(pos, neg), nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

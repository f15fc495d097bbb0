package domain

import (
	"math"

	json "github.com/goccy/go-json"
)

// Sentiment labels produced by the classifier.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// Sentiment maps a sentiment label to its probability in [0,1].
type Sentiment map[string]float64

// NewSentiment builds a two-class distribution from raw non-negative scores,
// renormalizing so the values sum to 1. When both scores are zero the result
// is an even split.
func NewSentiment(positive, negative float64) Sentiment {
	if positive < 0 || math.IsNaN(positive) {
		positive = 0
	}
	if negative < 0 || math.IsNaN(negative) {
		negative = 0
	}
	total := positive + negative
	if total == 0 {
		return Sentiment{LabelPositive: 0.5, LabelNegative: 0.5}
	}
	return Sentiment{
		LabelPositive: positive / total,
		LabelNegative: negative / total,
	}
}

// Positive returns the positive score (0 when absent).
func (s Sentiment) Positive() float64 { return s[LabelPositive] }

// Negative returns the negative score (0 when absent).
func (s Sentiment) Negative() float64 { return s[LabelNegative] }

// Sum returns the total probability mass.
func (s Sentiment) Sum() float64 {
	var t float64
	for _, v := range s {
		t += v
	}
	return t
}

// Encode serializes s for storage. Empty distributions encode to nil so the
// column stays NULL.
func (s Sentiment) Encode() *string {
	if len(s) == 0 {
		return nil
	}
	b, err := json.Marshal(map[string]float64(s))
	if err != nil {
		return nil
	}
	out := string(b)
	return &out
}

// ParseSentiment decodes stored text. Anything that is not a non-empty JSON
// object of finite scores in [0,1] is treated as absent and yields nil.
func ParseSentiment(raw string) Sentiment {
	if raw == "" {
		return nil
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil || len(m) == 0 {
		return nil
	}
	for _, v := range m {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil
		}
	}
	return Sentiment(m)
}

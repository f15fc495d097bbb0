package domain

import (
	"math"
	"testing"
)

func TestNewSentiment_Normalizes(t *testing.T) {
	cases := []struct {
		pos, neg     float64
		wantP, wantN float64
	}{
		{1, 1, 0.5, 0.5},
		{3, 1, 0.75, 0.25},
		{0, 0, 0.5, 0.5},
		{-2, 4, 0, 1},
		{math.NaN(), 1, 0, 1},
	}
	for _, tc := range cases {
		s := NewSentiment(tc.pos, tc.neg)
		if math.Abs(s.Positive()-tc.wantP) > 1e-9 || math.Abs(s.Negative()-tc.wantN) > 1e-9 {
			t.Errorf("NewSentiment(%v,%v) = %+v", tc.pos, tc.neg, s)
		}
		if math.Abs(s.Sum()-1) > 1e-9 {
			t.Errorf("sum = %v", s.Sum())
		}
	}
}

func TestEncode_EmptyIsNil(t *testing.T) {
	if (Sentiment{}).Encode() != nil {
		t.Fatalf("empty sentiment should encode to nil")
	}
	var s Sentiment
	if s.Encode() != nil {
		t.Fatalf("nil sentiment should encode to nil")
	}
}

func TestParseSentiment(t *testing.T) {
	valid := `{"positive":0.9,"negative":0.1}`
	if got := ParseSentiment(valid); got == nil || got.Positive() != 0.9 {
		t.Fatalf("valid parse = %+v", got)
	}

	for _, raw := range []string{
		"",
		"null",
		"{}",
		"[]",
		"{bad",
		`{"positive":"high"}`,
		`{"positive":1.5,"negative":-0.5}`,
	} {
		if got := ParseSentiment(raw); got != nil {
			t.Errorf("ParseSentiment(%q) = %+v; want nil", raw, got)
		}
	}
}

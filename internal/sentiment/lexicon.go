package sentiment

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-movie-catalog/internal/domain"
)

// LexiconBackend is a small local model: it counts positive and negative
// lexicon hits (flipping polarity after a nearby negator) and maps the net
// score through a logistic curve. It is immutable after construction and
// safe for concurrent use.
type LexiconBackend struct {
	positive map[string]struct{}
	negative map[string]struct{}
	negators map[string]struct{}
	cfg      lexiconConfig
}

// LexiconOption customizes a LexiconBackend.
type LexiconOption func(*lexiconConfig)

type lexiconConfig struct {
	negationWindow int
	steepness      float64
}

func defaultLexiconConfig() lexiconConfig {
	return lexiconConfig{negationWindow: 3, steepness: 1.0}
}

// WithNegationWindow sets how many tokens after a negator are flipped.
func WithNegationWindow(n int) LexiconOption {
	return func(c *lexiconConfig) {
		if n >= 0 {
			c.negationWindow = n
		}
	}
}

// WithSteepness scales the net score before the logistic mapping.
func WithSteepness(k float64) LexiconOption {
	return func(c *lexiconConfig) {
		if k > 0 {
			c.steepness = k
		}
	}
}

var (
	defaultPositive = []string{
		"amazing", "beautiful", "best", "brilliant", "captivating", "charming",
		"classic", "compelling", "delightful", "enjoy", "enjoyed", "enjoyable",
		"excellent", "fantastic", "fun", "funny", "gorgeous", "great", "gripping",
		"good", "hilarious", "impressive", "incredible", "love", "loved", "lovely",
		"masterpiece", "memorable", "moving", "outstanding", "perfect", "powerful",
		"recommend", "remarkable", "stunning", "superb", "terrific", "thrilling",
		"touching", "wonderful",
	}
	defaultNegative = []string{
		"awful", "bad", "boring", "clumsy", "confusing", "disappointing",
		"disappointment", "dull", "forgettable", "hate", "hated", "horrible",
		"lame", "lazy", "mediocre", "mess", "messy", "pointless", "poor",
		"predictable", "ridiculous", "shallow", "silly", "slow", "stupid",
		"tedious", "terrible", "tiresome", "ugly", "unbearable", "uninspired",
		"waste", "wasted", "weak", "worse", "worst",
	}
	defaultNegators = []string{
		"not", "no", "never", "nothing", "hardly", "barely", "without",
		"isn't", "wasn't", "aren't", "don't", "doesn't", "didn't", "can't", "won't",
	}
)

// DefaultLexicon returns the built-in English lexicon model.
func DefaultLexicon(opts ...LexiconOption) *LexiconBackend {
	return NewLexicon(defaultPositive, defaultNegative, opts...)
}

// NewLexicon builds a backend from explicit word lists. Words are lowercased
// and trimmed; blanks are dropped.
func NewLexicon(positive, negative []string, opts ...LexiconOption) *LexiconBackend {
	cfg := defaultLexiconConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &LexiconBackend{
		positive: wordSet(positive),
		negative: wordSet(negative),
		negators: wordSet(defaultNegators),
		cfg:      cfg,
	}
}

// LoadLexiconFile reads a lexicon from path; see ParseLexicon for the format.
func LoadLexiconFile(path string, opts ...LexiconOption) (*LexiconBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLexicon(f, opts...)
}

// ParseLexicon reads a lexicon. Blank lines and lines starting with '#' are
// ignored. A line "+word" or "-word" adds a single entry; a "positive:" or
// "negative:" header starts a section whose following lines list words
// separated by spaces or commas.
func ParseLexicon(r io.Reader, opts ...LexiconOption) (*LexiconBackend, error) {
	var pos, neg []string
	var section *[]string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.EqualFold(line, "positive:"):
			section = &pos
		case strings.EqualFold(line, "negative:"):
			section = &neg
		case strings.HasPrefix(line, "+"):
			pos = append(pos, line[1:])
		case strings.HasPrefix(line, "-"):
			neg = append(neg, line[1:])
		case section != nil:
			*section = append(*section, strings.FieldsFunc(line, func(r rune) bool {
				return r == ',' || r == ' ' || r == '\t'
			})...)
		default:
			return nil, fmt.Errorf("sentiment: lexicon line %d: %q outside a section", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewLexicon(pos, neg, opts...), nil
}

// Name implements Backend.
func (l *LexiconBackend) Name() string { return "lexicon" }

// Probe implements Backend.
func (l *LexiconBackend) Probe(ctx context.Context) error {
	if len(l.positive) == 0 || len(l.negative) == 0 {
		return errors.New("sentiment: lexicon needs both positive and negative words")
	}
	return ctx.Err()
}

// Predict implements Backend.
func (l *LexiconBackend) Predict(ctx context.Context, text string) (domain.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var pos, neg float64
	flip := 0
	for _, tok := range tokenize(text) {
		if _, ok := l.negators[tok]; ok {
			flip = l.cfg.negationWindow
			continue
		}
		_, isPos := l.positive[tok]
		_, isNeg := l.negative[tok]
		if flip > 0 {
			isPos, isNeg = isNeg, isPos
			flip--
		}
		if isPos {
			pos++
		}
		if isNeg {
			neg++
		}
	}
	p := 1 / (1 + math.Exp(-l.cfg.steepness*(pos-neg)))
	return domain.NewSentiment(p, 1-p), nil
}

var lexWordRE = regexp.MustCompile(`\p{L}+(?:'\p{L}+)?`)

// tokenize lowercases text and splits it into words, keeping contractions.
func tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(strings.ReplaceAll(text, "’", "'"))
	return lexWordRE.FindAllString(lower, -1)
}

func wordSet(words []string) map[string]struct{} {
	lower := cases.Lower(language.Und)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = lower.String(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return m
}

// Package lexicon holds the keyword lexicon that drives review categorization
// and sentiment scoring. A Lexicon is immutable once built and may be shared
// freely between goroutines.
package lexicon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/reviewlens/internal/model"
)

const (
	// DefaultThreshold is the positive-ratio cut-off for threshold scoring
	DefaultThreshold = 0.5

	// DefaultNegationWindow is how many tokens a negation word reaches
	DefaultNegationWindow = 3
)

var (
	ErrReservedCategory  = errors.New("category name is reserved")
	ErrDuplicateCategory = errors.New("duplicate category name")
	ErrEmptyCategoryName = errors.New("category name is empty")
	ErrInvalidThreshold  = errors.New("threshold must be within [0, 1]")
	ErrInvalidWindow     = errors.New("negation window must not be negative")
)

// Category is a topic label and the ordered keywords that trigger it
type Category struct {
	Name     string
	Keywords []string
}

// Lexicon is the ordered category list plus the sentiment word sets
type Lexicon struct {
	categories     []Category
	positive       map[string]struct{}
	negative       map[string]struct{}
	negation       map[string]struct{}
	threshold      float64
	negationWindow int
}

// Option adjusts lexicon scoring parameters
type Option func(*Lexicon)

// WithThreshold sets the positive-ratio threshold
func WithThreshold(t float64) Option {
	return func(l *Lexicon) { l.threshold = t }
}

// WithNegationWindow sets how many tokens a negation word affects
func WithNegationWindow(n int) Option {
	return func(l *Lexicon) { l.negationWindow = n }
}

// New builds a lexicon. Category order is preserved and decides ties.
// Keywords and words are trimmed and lowercased; blanks are dropped.
func New(categories []Category, positive, negative, negation []string, opts ...Option) (*Lexicon, error) {
	l := &Lexicon{
		categories:     make([]Category, 0, len(categories)),
		positive:       wordSet(positive),
		negative:       wordSet(negative),
		negation:       wordSet(negation),
		threshold:      DefaultThreshold,
		negationWindow: DefaultNegationWindow,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.threshold < 0 || l.threshold > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, l.threshold)
	}
	if l.negationWindow < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, l.negationWindow)
	}

	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, ErrEmptyCategoryName
		}
		if strings.EqualFold(name, model.CategoryOther) {
			return nil, fmt.Errorf("%w: %q", ErrReservedCategory, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
		}
		seen[name] = true

		l.categories = append(l.categories, Category{
			Name:     name,
			Keywords: normalizeWords(c.Keywords),
		})
	}

	return l, nil
}

// MustNew is New for built-in data; it panics on invalid input
func MustNew(categories []Category, positive, negative, negation []string, opts ...Option) *Lexicon {
	l, err := New(categories, positive, negative, negation, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Categories returns a copy of the ordered categories
func (l *Lexicon) Categories() []Category {
	out := make([]Category, len(l.categories))
	for i, c := range l.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// CategoryNames returns the ordered category names followed by Other
func (l *Lexicon) CategoryNames() []string {
	names := make([]string, 0, len(l.categories)+1)
	for _, c := range l.categories {
		names = append(names, c.Name)
	}
	return append(names, model.CategoryOther)
}

// IsPositive reports whether token is a positive word
func (l *Lexicon) IsPositive(token string) bool {
	_, ok := l.positive[token]
	return ok
}

// IsNegative reports whether token is a negative word
func (l *Lexicon) IsNegative(token string) bool {
	_, ok := l.negative[token]
	return ok
}

// IsNegation reports whether token is a negation word
func (l *Lexicon) IsNegation(token string) bool {
	_, ok := l.negation[token]
	return ok
}

// Threshold returns the positive-ratio threshold
func (l *Lexicon) Threshold() float64 {
	return l.threshold
}

// NegationWindow returns the negation reach in tokens
func (l *Lexicon) NegationWindow() int {
	return l.negationWindow
}

// Config renders the lexicon back into its configuration form
func (l *Lexicon) Config() model.LexiconConfig {
	threshold, window := l.threshold, l.negationWindow
	cfg := model.LexiconConfig{
		Categories:     make([]model.CategoryConfig, 0, len(l.categories)),
		PositiveWords:  sortedWords(l.positive),
		NegativeWords:  sortedWords(l.negative),
		NegationWords:  sortedWords(l.negation),
		Threshold:      &threshold,
		NegationWindow: &window,
	}
	for _, c := range l.categories {
		cfg.Categories = append(cfg.Categories, model.CategoryConfig{
			Name:     c.Name,
			Keywords: append([]string(nil), c.Keywords...),
		})
	}
	return cfg
}

// FromConfig builds a lexicon from configuration. A nil list falls back to
// its built-in default, as do an unset threshold and window. An empty but
// non-nil category list is kept, so every text categorizes as Other.
func FromConfig(cfg model.LexiconConfig) (*Lexicon, error) {
	categories := defaultCategories()
	if cfg.Categories != nil {
		categories = make([]Category, 0, len(cfg.Categories))
		for _, c := range cfg.Categories {
			categories = append(categories, Category{Name: c.Name, Keywords: c.Keywords})
		}
	}

	positive := orDefault(cfg.PositiveWords, defaultPositiveWords)
	negative := orDefault(cfg.NegativeWords, defaultNegativeWords)
	negation := orDefault(cfg.NegationWords, defaultNegationWords)

	var opts []Option
	if cfg.Threshold != nil {
		opts = append(opts, WithThreshold(*cfg.Threshold))
	}
	if cfg.NegationWindow != nil {
		opts = append(opts, WithNegationWindow(*cfg.NegationWindow))
	}

	l, err := New(categories, positive, negative, negation, opts...)
	if err != nil {
		return nil, fmt.Errorf("build lexicon: %w", err)
	}
	return l, nil
}

func orDefault(words []string, def []string) []string {
	if len(words) == 0 {
		return def
	}
	return words
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range normalizeWords(words) {
		set[w] = struct{}{}
	}
	return set
}

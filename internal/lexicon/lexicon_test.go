package lexicon

import (
	"errors"
	"testing"

	"github.com/ppiankov/reviewlens/internal/model"
)

func TestDefault_CategoryOrder(t *testing.T) {
	lex := Default()

	want := []string{
		"Food Quality", "Wait Times", "Pricing", "Service",
		"Environment/Atmosphere", "Product Availability", "Cleanliness", "Other",
	}
	got := lex.CategoryNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}

	if lex.Threshold() != DefaultThreshold {
		t.Errorf("expected threshold %v, got %v", DefaultThreshold, lex.Threshold())
	}
	if lex.NegationWindow() != DefaultNegationWindow {
		t.Errorf("expected window %d, got %d", DefaultNegationWindow, lex.NegationWindow())
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default().Categories()
	a[0].Keywords[0] = "mutated"

	b := Default().Categories()
	if b[0].Keywords[0] != "food" {
		t.Errorf("expected defaults untouched, got %q", b[0].Keywords[0])
	}
}

func TestDefault_WordSets(t *testing.T) {
	lex := Default()

	tests := []struct {
		word     string
		positive bool
		negative bool
		negation bool
	}{
		{"excellent", true, false, false},
		{"slow", false, true, false},
		{"didn't", false, false, true},
		{"never", false, true, true},
		{"table", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := lex.IsPositive(tt.word); got != tt.positive {
				t.Errorf("IsPositive = %v, want %v", got, tt.positive)
			}
			if got := lex.IsNegative(tt.word); got != tt.negative {
				t.Errorf("IsNegative = %v, want %v", got, tt.negative)
			}
			if got := lex.IsNegation(tt.word); got != tt.negation {
				t.Errorf("IsNegation = %v, want %v", got, tt.negation)
			}
		})
	}
}

func TestNew_NormalizesKeywords(t *testing.T) {
	lex, err := New([]Category{
		{Name: " Service ", Keywords: []string{" Staff", "", "WAITER "}},
	}, []string{"Good "}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cats := lex.Categories()
	if cats[0].Name != "Service" {
		t.Errorf("expected trimmed name, got %q", cats[0].Name)
	}
	if len(cats[0].Keywords) != 2 || cats[0].Keywords[0] != "staff" || cats[0].Keywords[1] != "waiter" {
		t.Errorf("unexpected keywords: %v", cats[0].Keywords)
	}
	if !lex.IsPositive("good") {
		t.Error("expected lowercased positive word")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
		opts       []Option
		want       error
	}{
		{"reserved other", []Category{{Name: "other"}}, nil, ErrReservedCategory},
		{"duplicate", []Category{{Name: "A"}, {Name: "A"}}, nil, ErrDuplicateCategory},
		{"empty name", []Category{{Name: "  "}}, nil, ErrEmptyCategoryName},
		{"threshold", nil, []Option{WithThreshold(1.5)}, ErrInvalidThreshold},
		{"window", nil, []Option{WithNegationWindow(-1)}, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.categories, nil, nil, nil, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNew_EmptyLexiconIsValid(t *testing.T) {
	lex, err := New(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := lex.CategoryNames(); len(names) != 1 || names[0] != model.CategoryOther {
		t.Errorf("expected only Other, got %v", names)
	}
}

func TestFromConfig_FallsBackToDefaults(t *testing.T) {
	lex, err := FromConfig(model.LexiconConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lex.Categories()) != 7 {
		t.Errorf("expected 7 default categories, got %d", len(lex.Categories()))
	}
	if !lex.IsNegation("can't") {
		t.Error("expected default negation words")
	}
}

func TestFromConfig_Overrides(t *testing.T) {
	lex, err := FromConfig(model.LexiconConfig{
		Categories: []model.CategoryConfig{
			{Name: "Drinks", Keywords: []string{"beer", "wine"}},
		},
		PositiveWords:  []string{"cheers"},
		Threshold:      ptr(0.6),
		NegationWindow: ptr(2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cats := lex.Categories()
	if len(cats) != 1 || cats[0].Name != "Drinks" {
		t.Errorf("unexpected categories: %+v", cats)
	}
	if !lex.IsPositive("cheers") || lex.IsPositive("good") {
		t.Error("expected positive words to be replaced")
	}
	if !lex.IsNegative("bad") {
		t.Error("expected default negative words to remain")
	}
	if lex.Threshold() != 0.6 || lex.NegationWindow() != 2 {
		t.Errorf("unexpected params: %v %d", lex.Threshold(), lex.NegationWindow())
	}
}

func ptr[T any](v T) *T { return &v }

func TestFromConfig_ZeroValuesAreKept(t *testing.T) {
	lex, err := FromConfig(model.LexiconConfig{
		Categories:     []model.CategoryConfig{},
		Threshold:      ptr(0.0),
		NegationWindow: ptr(0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lex.Threshold() != 0 || lex.NegationWindow() != 0 {
		t.Errorf("explicit zeros replaced by defaults: threshold %v window %d", lex.Threshold(), lex.NegationWindow())
	}
	if len(lex.Categories()) != 0 {
		t.Errorf("explicit empty category list replaced by defaults: %d categories", len(lex.Categories()))
	}
	if !lex.IsPositive("good") {
		t.Error("omitted word lists should still use the defaults")
	}

	again, err := FromConfig(lex.Config())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(again.Categories()) != 0 || again.NegationWindow() != 0 {
		t.Error("empty lexicon settings lost in a config round trip")
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	orig := Default()
	rebuilt, err := FromConfig(orig.Config())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := orig.CategoryNames(), rebuilt.CategoryNames()
	if len(a) != len(b) {
		t.Fatalf("category count mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("category %d: %q vs %q", i, a[i], b[i])
		}
	}
}

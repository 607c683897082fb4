package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// apostrophes folds typographic apostrophes so "didn’t" matches "didn't"
var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Tokenize lowercases text and splits it into word tokens. Anything that is
// not a letter, digit or apostrophe separates tokens; apostrophes at token
// edges are dropped.
func Tokenize(text string) []string {
	text = apostrophes.Replace(strings.ToLower(text))

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r) && r != '\''
	})

	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// isWordRune matches the regexp \w class over Unicode
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// countWholeWord counts non-overlapping occurrences of keyword in text where
// the match is not glued to neighbouring word runes. Boundaries are only
// enforced on sides where the keyword itself starts or ends with a word rune,
// so symbol keywords like "$" still match "$20". Both arguments must already
// be lowercased.
func countWholeWord(text, keyword string) int {
	if keyword == "" {
		return 0
	}

	first, firstSize := utf8.DecodeRuneInString(keyword)
	last, _ := utf8.DecodeLastRuneInString(keyword)
	checkStart := isWordRune(first)
	checkEnd := isWordRune(last)

	count := 0
	from := 0
	for from <= len(text)-len(keyword) {
		idx := strings.Index(text[from:], keyword)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(keyword)

		ok := true
		if checkStart && start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:start])
			ok = !isWordRune(prev)
		}
		if ok && checkEnd && end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			ok = !isWordRune(next)
		}

		if ok {
			count++
			from = end
		} else {
			from = start + firstSize
		}
	}
	return count
}

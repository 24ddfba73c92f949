package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and removes every run of whitespace,
// so "  Bob  Smith " and "bobsmith" compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Fold lowercases a string and collapses runs of whitespace to a single
// space. Unlike NormalizeName it keeps word boundaries, which matters
// for multi-word phrase matching.
func Fold(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// MatchName reports whether the normalized form of name contains any of
// the given matchers. Matchers are expected to already be normalized.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether the folded form of s contains any of the
// given phrases. Phrases are compared against their own folded form, so
// callers can pass them in natural casing.
func ContainsFold(s string, phrases []string) bool {
	s = Fold(s)
	for _, p := range phrases {
		if strings.Contains(s, Fold(p)) {
			return true
		}
	}
	return false
}

// MostlySymbols reports whether more than half of the runes in s are
// neither letters, digits nor whitespace.
func MostlySymbols(s string) bool {
	if s == "" {
		return false
	}
	total := 0
	symbols := 0
	for _, c := range s {
		total++
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && !unicode.IsSpace(c) {
			symbols++
		}
	}
	return symbols*2 > total
}

// AllDigits reports whether s consists entirely of ascii digits.
func AllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

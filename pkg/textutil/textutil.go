// Package textutil canonicalizes free text ahead of rewriting and fuzzy
// matching. Cleaning is total and idempotent.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// strips diacritic marks after canonical decomposition
	markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	wordToken  = regexp.MustCompile(`\b\w+\b`)
)

// Clean canonicalizes raw text: decompose and drop accents, replace anything
// that is not a word character or whitespace with a space, collapse runs of
// whitespace, trim, lowercase. Never fails; malformed input degrades to "".
func Clean(s string) string {
	out, _, err := transform.String(markStripper, s)
	if err != nil {
		out = s
	}
	out = nonWord.ReplaceAllString(out, " ")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.ToLower(strings.TrimSpace(out))
}

// CollapseSpaces collapses whitespace runs and trims.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Words returns the deduplicated lowercase word tokens of s, in first-seen
// order, keeping only tokens longer than one character.
func Words(s string) []string {
	seen := map[string]bool{}
	var words []string
	for _, tok := range wordToken.FindAllString(strings.ToLower(s), -1) {
		if len(tok) <= 1 || seen[tok] {
			continue
		}
		seen[tok] = true
		words = append(words, tok)
	}
	return words
}

// SearchKey derives the fuzzy comparison target for a catalog entry from its
// four descriptive attributes.
func SearchKey(categoria, variedad, color, grado string) string {
	var parts []string
	for _, p := range []string{categoria, variedad, color, grado} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return Clean(strings.Join(parts, " "))
}

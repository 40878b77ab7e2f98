// Package rewrite applies tenant rewrite rules to cleaned text, recording an
// audit trail of every substitution and removal.
package rewrite

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/textutil"
)

// Substitution records one synonym replacement.
type Substitution struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Audit is the ordered record of how a piece of text was rewritten.
type Audit struct {
	Synonyms []Substitution `json:"synonyms"`
	Removed  []string       `json:"removed"`
}

// RenderSynonyms formats the substitution list for display and persistence.
func (a Audit) RenderSynonyms() string {
	parts := make([]string, 0, len(a.Synonyms))
	for _, s := range a.Synonyms {
		parts = append(parts, s.Original+"→"+s.Replacement)
	}
	return strings.Join(parts, ", ")
}

// RenderRemoved formats the removed phrase list for display and persistence.
func (a Audit) RenderRemoved() string {
	return strings.Join(a.Removed, " ")
}

// Apply runs the synonym pass then the blacklist pass over text. Synonyms
// replace whole tokens only, matched case-insensitively. Blacklist phrases are
// removed longest first with word boundaries on both ends. The rule set is
// never mutated.
func Apply(text string, rs models.RuleSet) (string, Audit) {
	var audit Audit

	text, audit.Synonyms = applySynonyms(text, rs.Synonyms)
	text, audit.Removed = removeBlacklist(text, rs.Blacklist)

	return text, audit
}

func applySynonyms(text string, synonyms map[string]string) (string, []Substitution) {
	if len(synonyms) == 0 {
		return text, nil
	}

	lower := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		lower[strings.ToLower(k)] = v
	}

	words := strings.Fields(text)
	replaced := make([]string, 0, len(words))
	var subs []Substitution

	for _, word := range words {
		if replacement, ok := lower[strings.ToLower(word)]; ok {
			replaced = append(replaced, replacement)
			subs = append(subs, Substitution{Original: word, Replacement: replacement})
		} else {
			replaced = append(replaced, word)
		}
	}

	return strings.Join(replaced, " "), subs
}

func removeBlacklist(text string, blacklist []string) (string, []string) {
	if len(blacklist) == 0 {
		return text, nil
	}

	// longest first so multi-word phrases go before their sub-words
	sorted := append([]string{}, blacklist...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(strings.TrimSpace(sorted[i])) > len(strings.TrimSpace(sorted[j]))
	})

	var removed []string
	working := text

	for _, phrase := range sorted {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}

		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
		if err != nil {
			continue
		}
		if pattern.MatchString(working) {
			removed = append(removed, phrase)
			working = pattern.ReplaceAllString(working, "")
		}
	}

	return textutil.CollapseSpaces(working), removed
}

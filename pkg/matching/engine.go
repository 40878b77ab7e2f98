// Package matching implements the escalation cascade that pairs rewritten
// vendor text with its best catalog entry.
package matching

import (
	"sort"
	"strings"

	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/textutil"
)

// Escalation thresholds are fixed policy constants, not tenant-tunable.
const (
	partialEscalationThreshold  = 70
	tokenSetEscalationThreshold = 80
)

// Engine runs the similarity cascade over a catalog snapshot. Deterministic
// and total: it never fails, it returns the empty MatchResult instead.
type Engine struct {
	scorer *Scorer
}

// NewEngine creates a new Engine
func NewEngine() *Engine {
	return &Engine{scorer: NewScorer()}
}

// Match scores input against every entry's search key. Token-sort scoring
// picks the initial best; partial scoring is tried when the best is below 70
// and token-set scoring when it is still below 80, each adopted only when
// strictly better. Ties keep the first entry in index order.
func (e *Engine) Match(input string, entries []models.CatalogEntry) models.MatchResult {
	input = strings.TrimSpace(input)
	if input == "" || len(entries) == 0 {
		return models.MatchResult{}
	}

	bestIdx, bestScore := e.bestBy(input, entries, e.scorer.TokenSortRatio)

	if bestScore < partialEscalationThreshold {
		if idx, score := e.bestBy(input, entries, e.scorer.PartialRatio); score > bestScore {
			bestIdx, bestScore = idx, score
		}
	}

	if bestScore < tokenSetEscalationThreshold {
		if idx, score := e.bestBy(input, entries, e.scorer.TokenSetRatio); score > bestScore {
			bestIdx, bestScore = idx, score
		}
	}

	winner := entries[bestIdx]
	matched, missing := wordOverlap(input, winner.SearchKey)

	return models.MatchResult{
		BestMatch:    winner.SearchKey,
		Similarity:   bestScore,
		MatchedWords: matched,
		MissingWords: missing,
		CatalogID:    winner.CatalogID,
		Categoria:    winner.Categoria,
		Variedad:     winner.Variedad,
		Color:        winner.Color,
		Grado:        winner.Grado,
	}
}

func (e *Engine) bestBy(input string, entries []models.CatalogEntry, score func(a, b string) int) (int, int) {
	bestIdx, bestScore := 0, -1
	for i, entry := range entries {
		if s := score(input, entry.SearchKey); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	return bestIdx, bestScore
}

// wordOverlap splits both strings into deduplicated tokens and renders the
// intersection and the input-only remainder as sorted space-joined strings.
func wordOverlap(input, match string) (matched, missing string) {
	matchWords := map[string]bool{}
	for _, w := range textutil.Words(match) {
		matchWords[w] = true
	}

	var matchedList, missingList []string
	for _, w := range textutil.Words(input) {
		if matchWords[w] {
			matchedList = append(matchedList, w)
		} else {
			missingList = append(missingList, w)
		}
	}

	sort.Strings(matchedList)
	sort.Strings(missingList)
	return strings.Join(matchedList, " "), strings.Join(missingList, " ")
}

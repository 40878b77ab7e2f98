package matching

import (
	"sort"
	"strings"
)

// Scorer provides the fuzzy string comparison algorithms used by the matching
// cascade. All scores are integers on a 0-100 scale.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Ratio scores the overall similarity of two strings. It is derived from a
// weighted edit distance where substitutions cost two, which makes it
// equivalent to scoring on the longest matching character content.
func (s *Scorer) Ratio(a, b string) int {
	if a == b {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	dist := weightedDistance(ra, rb)
	return roundRatio(float64(total-dist) / float64(total))
}

// TokenSortRatio scores two strings after sorting their tokens, making the
// comparison insensitive to word order.
func (s *Scorer) TokenSortRatio(a, b string) int {
	return s.Ratio(sortTokens(a), sortTokens(b))
}

// PartialRatio scores the shorter string against every equal-length contiguous
// window of the longer, returning the best window score.
func (s *Scorer) PartialRatio(a, b string) int {
	shorter := []rune(a)
	longer := []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := s.Ratio(string(shorter), string(longer[i:i+len(shorter)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// TokenSetRatio scores two strings on their token sets, making the comparison
// insensitive to both word order and duplication. The intersection of the two
// sets anchors the comparison so shared words dominate the score.
func (s *Scorer) TokenSetRatio(a, b string) int {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, diffA, diffB []string
	for _, tok := range setA {
		if containsToken(setB, tok) {
			common = append(common, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for _, tok := range setB {
		if !containsToken(setA, tok) {
			diffB = append(diffB, tok)
		}
	}

	base := strings.Join(common, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	best := s.Ratio(base, combinedA)
	if score := s.Ratio(base, combinedB); score > best {
		best = score
	}
	if score := s.Ratio(combinedA, combinedB); score > best {
		best = score
	}
	return best
}

// weightedDistance is a two-row Levenshtein where substitutions cost two.
func weightedDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 2
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(min(curr[j-1]+1, prev[j]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func roundRatio(r float64) int {
	return int(r*100 + 0.5)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) []string {
	seen := map[string]bool{}
	var tokens []string
	for _, tok := range strings.Fields(s) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)
	return tokens
}

func containsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}

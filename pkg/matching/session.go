package matching

import "github.com/Jhojannt/mapping-repo/pkg/models"

// Session memoizes match results for the duration of one batch. Distinct rows
// that rewrite to the same string reuse the cached result. Sessions are never
// shared across batches or tenants.
type Session struct {
	engine      *Engine
	cache       map[string]models.MatchResult
	invocations int
}

// NewSession creates a fresh session around the engine.
func NewSession(engine *Engine) *Session {
	return &Session{
		engine: engine,
		cache:  map[string]models.MatchResult{},
	}
}

// Match returns the cached result for input when present, otherwise runs the
// engine and caches the outcome.
func (s *Session) Match(input string, entries []models.CatalogEntry) models.MatchResult {
	if result, ok := s.cache[input]; ok {
		return result
	}

	s.invocations++
	result := s.engine.Match(input, entries)
	s.cache[input] = result
	return result
}

// Invocations reports how many times the engine actually ran.
func (s *Session) Invocations() int {
	return s.invocations
}

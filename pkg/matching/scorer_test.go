package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorerRatio(t *testing.T) {
	s := NewScorer()

	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 100, s.Ratio("roses freedom", "roses freedom"))
	})

	t.Run("empty against non-empty", func(t *testing.T) {
		assert.Equal(t, 0, s.Ratio("", "roses"))
		assert.Equal(t, 100, s.Ratio("", ""))
	})

	t.Run("partial overlap scores between bounds", func(t *testing.T) {
		score := s.Ratio("roses freedom red", "roses freedom red 40cm")
		assert.Greater(t, score, 70)
		assert.Less(t, score, 100)
	})
}

func TestScorerTokenSortRatio(t *testing.T) {
	s := NewScorer()

	t.Run("word order is ignored", func(t *testing.T) {
		assert.Equal(t, 100, s.TokenSortRatio("red freedom roses", "roses freedom red"))
	})

	t.Run("order insensitive on both sides", func(t *testing.T) {
		a := s.TokenSortRatio("roses red 40cm", "40cm red roses extra")
		b := s.TokenSortRatio("40cm red roses", "extra roses red 40cm")
		assert.Equal(t, a, b)
	})
}

func TestScorerPartialRatio(t *testing.T) {
	s := NewScorer()

	t.Run("exact substring scores 100", func(t *testing.T) {
		assert.Equal(t, 100, s.PartialRatio("red", "roses freedom red 40cm"))
	})

	t.Run("argument order does not matter", func(t *testing.T) {
		assert.Equal(t, s.PartialRatio("red roses", "big red roses box"), s.PartialRatio("big red roses box", "red roses"))
	})

	t.Run("empty shorter side", func(t *testing.T) {
		assert.Equal(t, 0, s.PartialRatio("", "roses"))
	})
}

func TestScorerTokenSetRatio(t *testing.T) {
	s := NewScorer()

	t.Run("duplicate tokens are ignored", func(t *testing.T) {
		assert.Equal(t, 100, s.TokenSetRatio("roses roses freedom", "freedom roses"))
	})

	t.Run("subset scores 100", func(t *testing.T) {
		assert.Equal(t, 100, s.TokenSetRatio("premium roses freedom red 40cm fancy", "roses freedom red 40cm"))
	})

	t.Run("disjoint sets score low", func(t *testing.T) {
		assert.Less(t, s.TokenSetRatio("tulips yellow", "roses red"), 50)
	})

	t.Run("empty side scores zero", func(t *testing.T) {
		assert.Equal(t, 0, s.TokenSetRatio("roses", ""))
		assert.Equal(t, 0, s.TokenSetRatio("", "roses"))
		assert.Equal(t, 0, s.TokenSetRatio("", ""))
	})
}

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

func testCatalog() []models.CatalogEntry {
	return []models.CatalogEntry{
		{Categoria: "Roses", Variedad: "Freedom", Color: "Red", Grado: "40cm", CatalogID: "CAT-001", SearchKey: "roses freedom red 40cm"},
		{Categoria: "Roses", Variedad: "Explorer", Color: "Red", Grado: "50cm", CatalogID: "CAT-002", SearchKey: "roses explorer red 50cm"},
		{Categoria: "Tulips", Variedad: "Strong Gold", Color: "Yellow", Grado: "36cm", CatalogID: "CAT-003", SearchKey: "tulips strong gold yellow 36cm"},
	}
}

func TestEngineMatch(t *testing.T) {
	engine := NewEngine()

	t.Run("close input resolves without escalation", func(t *testing.T) {
		result := engine.Match("roses freedom red", testCatalog())

		assert.Equal(t, "roses freedom red 40cm", result.BestMatch)
		assert.Equal(t, "CAT-001", result.CatalogID)
		assert.GreaterOrEqual(t, result.Similarity, 80)
		assert.Equal(t, "freedom red roses", result.MatchedWords)
		assert.Equal(t, "", result.MissingWords)
	})

	t.Run("attributes copied from the winning entry", func(t *testing.T) {
		result := engine.Match("tulips strong gold yellow", testCatalog())

		assert.Equal(t, "CAT-003", result.CatalogID)
		assert.Equal(t, "Tulips", result.Categoria)
		assert.Equal(t, "Strong Gold", result.Variedad)
		assert.Equal(t, "Yellow", result.Color)
		assert.Equal(t, "36cm", result.Grado)
	})

	t.Run("partial scoring rescues short fragments", func(t *testing.T) {
		// token-sort scores a lone token poorly against a long key, the
		// windowed comparison finds it verbatim
		result := engine.Match("explorer", testCatalog())

		assert.Equal(t, "CAT-002", result.CatalogID)
		assert.Equal(t, 100, result.Similarity)
	})

	t.Run("token set scoring rescues noisy supersets", func(t *testing.T) {
		result := engine.Match("roses premium freedom fancy red grade 40cm extra", testCatalog())

		assert.Equal(t, "CAT-001", result.CatalogID)
		assert.Equal(t, 100, result.Similarity)
		assert.Equal(t, "40cm freedom red roses", result.MatchedWords)
		assert.Equal(t, "extra fancy grade premium", result.MissingWords)
	})

	t.Run("blank search key never wins escalation", func(t *testing.T) {
		entries := []models.CatalogEntry{
			{CatalogID: "CAT-001", SearchKey: "roses freedom red 40cm"},
			{CatalogID: "BLANK", SearchKey: ""},
		}
		// misspelled enough to force the full cascade
		result := engine.Match("frdm rozes rd", entries)

		assert.Equal(t, "CAT-001", result.CatalogID)
		assert.NotEmpty(t, result.BestMatch)
		assert.Less(t, result.Similarity, 100)
	})

	t.Run("ties keep the first entry in index order", func(t *testing.T) {
		entries := []models.CatalogEntry{
			{CatalogID: "FIRST", SearchKey: "roses freedom red"},
			{CatalogID: "SECOND", SearchKey: "roses freedom red"},
		}
		result := engine.Match("roses freedom red", entries)
		assert.Equal(t, "FIRST", result.CatalogID)
	})

	t.Run("deterministic across repeated runs", func(t *testing.T) {
		first := engine.Match("frdm rozes rd", testCatalog())
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, engine.Match("frdm rozes rd", testCatalog()))
		}
	})

	t.Run("empty input returns the empty result", func(t *testing.T) {
		assert.Equal(t, models.MatchResult{}, engine.Match("", testCatalog()))
		assert.Equal(t, models.MatchResult{}, engine.Match("   ", testCatalog()))
	})

	t.Run("empty catalog returns the empty result", func(t *testing.T) {
		assert.Equal(t, models.MatchResult{}, engine.Match("roses freedom red", nil))
	})
}

func TestSession(t *testing.T) {
	t.Run("identical rewritten text runs the engine once", func(t *testing.T) {
		session := NewSession(NewEngine())
		catalog := testCatalog()

		first := session.Match("roses freedom red", catalog)
		second := session.Match("roses freedom red", catalog)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, session.Invocations())
	})

	t.Run("distinct inputs each run the engine", func(t *testing.T) {
		session := NewSession(NewEngine())
		catalog := testCatalog()

		session.Match("roses freedom red", catalog)
		session.Match("tulips strong gold", catalog)

		assert.Equal(t, 2, session.Invocations())
	})

	t.Run("caches the empty result too", func(t *testing.T) {
		session := NewSession(NewEngine())

		result := session.Match("", nil)
		require.True(t, result.IsEmpty())
		session.Match("", nil)

		assert.Equal(t, 1, session.Invocations())
	})
}

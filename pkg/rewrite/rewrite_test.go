package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

func TestApply(t *testing.T) {
	t.Run("synonym replaces whole tokens only", func(t *testing.T) {
		rs := models.NewRuleSet()
		rs.Synonyms["rosas"] = "roses"

		out, audit := Apply("rosas premium", rs)
		assert.Equal(t, "roses premium", out)
		require.Len(t, audit.Synonyms, 1)
		assert.Equal(t, Substitution{Original: "rosas", Replacement: "roses"}, audit.Synonyms[0])

		out, audit = Apply("rosaspremium", rs)
		assert.Equal(t, "rosaspremium", out)
		assert.Empty(t, audit.Synonyms)
	})

	t.Run("synonym lookup is case insensitive", func(t *testing.T) {
		rs := models.NewRuleSet()
		rs.Synonyms["Rosas"] = "roses"

		out, audit := Apply("ROSAS rojas", rs)
		assert.Equal(t, "roses rojas", out)
		require.Len(t, audit.Synonyms, 1)
		assert.Equal(t, "ROSAS", audit.Synonyms[0].Original)
	})

	t.Run("longer blacklist phrases win", func(t *testing.T) {
		rs := models.NewRuleSet()
		rs.Blacklist = []string{"stems bunch", "bunch"}

		out, audit := Apply("24 stems bunch roses", rs)
		assert.Equal(t, "24 roses", out)
		assert.Equal(t, []string{"stems bunch"}, audit.Removed)
	})

	t.Run("blacklist removes all occurrences", func(t *testing.T) {
		rs := models.NewRuleSet()
		rs.Blacklist = []string{"box"}

		out, audit := Apply("box roses box red box", rs)
		assert.Equal(t, "roses red", out)
		assert.Equal(t, []string{"box"}, audit.Removed)
	})

	t.Run("blacklist respects word boundaries", func(t *testing.T) {
		rs := models.NewRuleSet()
		rs.Blacklist = []string{"stem"}

		out, _ := Apply("stems and stem", rs)
		assert.Equal(t, "stems and", out)
	})

	t.Run("synonyms apply before blacklist", func(t *testing.T) {
		rs := models.NewRuleSet()
		rs.Synonyms["bx"] = "box"
		rs.Blacklist = []string{"box"}

		out, audit := Apply("bx roses", rs)
		assert.Equal(t, "roses", out)
		require.Len(t, audit.Synonyms, 1)
		assert.Equal(t, []string{"box"}, audit.Removed)
	})

	t.Run("empty rule set passes text through", func(t *testing.T) {
		out, audit := Apply("roses freedom red", models.NewRuleSet())
		assert.Equal(t, "roses freedom red", out)
		assert.Empty(t, audit.Synonyms)
		assert.Empty(t, audit.Removed)
	})

	t.Run("audit renders display formats", func(t *testing.T) {
		audit := Audit{
			Synonyms: []Substitution{{Original: "rosas", Replacement: "roses"}, {Original: "rojo", Replacement: "red"}},
			Removed:  []string{"stems bunch", "box"},
		}
		assert.Equal(t, "rosas→roses, rojo→red", audit.RenderSynonyms())
		assert.Equal(t, "stems bunch box", audit.RenderRemoved())
	})
}

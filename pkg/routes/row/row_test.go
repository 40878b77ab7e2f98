package row

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

func TestReprocessRequest_ToEdit(t *testing.T) {
	t.Run("SynonymEdit", func(t *testing.T) {
		req := ReprocessRequest{EditType: "synonym", Original: "rosas", Replacement: "roses"}

		edit, err := req.toEdit()
		require.NoError(t, err)
		assert.Equal(t, models.SynonymEdit{Original: "rosas", Replacement: "roses"}, edit)
	})

	t.Run("BlacklistEdit", func(t *testing.T) {
		req := ReprocessRequest{EditType: "blacklist", Phrase: "stems bunch"}

		edit, err := req.toEdit()
		require.NoError(t, err)
		assert.Equal(t, models.BlacklistEdit{Phrase: "stems bunch"}, edit)
	})

	t.Run("NoEdit", func(t *testing.T) {
		edit, err := ReprocessRequest{}.toEdit()
		require.NoError(t, err)
		assert.Nil(t, edit)
	})

	t.Run("SynonymMissingReplacement", func(t *testing.T) {
		req := ReprocessRequest{EditType: "synonym", Original: "rosas"}

		_, err := req.toEdit()
		assert.Error(t, err)
	})

	t.Run("BlacklistMissingPhrase", func(t *testing.T) {
		req := ReprocessRequest{EditType: "blacklist"}

		_, err := req.toEdit()
		assert.Error(t, err)
	})
}

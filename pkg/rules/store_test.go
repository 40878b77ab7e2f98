package rules

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

type fakeRepo struct {
	mu        sync.Mutex
	sets      map[string]models.RuleSet
	getErr    error
	conflicts int
	replaces  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sets: map[string]models.RuleSet{}}
}

func (f *fakeRepo) Get(_ context.Context, tenantID string) (models.RuleSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return models.RuleSet{}, f.getErr
	}
	rs, ok := f.sets[tenantID]
	if !ok {
		return models.NewRuleSet(), nil
	}
	return rs, nil
}

func (f *fakeRepo) Replace(_ context.Context, tenantID string, rs models.RuleSet, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces++
	if f.conflicts > 0 {
		f.conflicts--
		return ErrVersionConflict
	}
	current := f.sets[tenantID]
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	rs.Version = expectedVersion + 1
	f.sets[tenantID] = rs
	return nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestStoreApplyEdit(t *testing.T) {
	t.Run("synonym edit lands in the stored set", func(t *testing.T) {
		repo := newFakeRepo()
		store := NewStore(repo, noopLogger(), DefaultStoreConfig())

		rs, err := store.ApplyEdit(context.Background(), "tenant-a", models.SynonymEdit{Original: "rosas", Replacement: "roses"})
		require.NoError(t, err)
		assert.Equal(t, "roses", rs.Synonyms["rosas"])

		stored, err := store.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, "roses", stored.Synonyms["rosas"])
	})

	t.Run("blacklist edit unions without duplicates", func(t *testing.T) {
		repo := newFakeRepo()
		store := NewStore(repo, noopLogger(), DefaultStoreConfig())

		_, err := store.ApplyEdit(context.Background(), "tenant-a", models.BlacklistEdit{Phrase: "stems bunch"})
		require.NoError(t, err)
		rs, err := store.ApplyEdit(context.Background(), "tenant-a", models.BlacklistEdit{Phrase: "Stems Bunch"})
		require.NoError(t, err)

		assert.Equal(t, []string{"stems bunch"}, rs.Blacklist)
	})

	t.Run("retries through version conflicts", func(t *testing.T) {
		repo := newFakeRepo()
		repo.conflicts = 2
		store := NewStore(repo, noopLogger(), DefaultStoreConfig())

		rs, err := store.ApplyEdit(context.Background(), "tenant-a", models.SynonymEdit{Original: "bx", Replacement: "box"})
		require.NoError(t, err)
		assert.Equal(t, "box", rs.Synonyms["bx"])
		assert.Equal(t, 3, repo.replaces)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		repo := newFakeRepo()
		repo.conflicts = 100
		store := NewStore(repo, noopLogger(), StoreConfig{MaxRetries: 2})

		_, err := store.ApplyEdit(context.Background(), "tenant-a", models.BlacklistEdit{Phrase: "box"})
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("repository read failure propagates", func(t *testing.T) {
		repo := newFakeRepo()
		repo.getErr = errors.New("connection refused")
		store := NewStore(repo, noopLogger(), DefaultStoreConfig())

		_, err := store.ApplyEdit(context.Background(), "tenant-a", models.BlacklistEdit{Phrase: "box"})
		assert.Error(t, err)
	})
}

func TestStoreReplace(t *testing.T) {
	t.Run("stale version is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		store := NewStore(repo, noopLogger(), DefaultStoreConfig())

		rs := models.NewRuleSet()
		rs.Synonyms["rosas"] = "roses"
		require.NoError(t, store.Replace(context.Background(), "tenant-a", rs, 0))

		stale := models.NewRuleSet()
		stale.Synonyms["bx"] = "box"
		err := store.Replace(context.Background(), "tenant-a", stale, 0)
		assert.ErrorIs(t, err, ErrVersionConflict)

		stored, err := store.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, "roses", stored.Synonyms["rosas"])
		assert.NotContains(t, stored.Synonyms, "bx")
	})
}

func TestRuleSetMerge(t *testing.T) {
	t.Run("override synonyms win", func(t *testing.T) {
		base := models.NewRuleSet()
		base.Synonyms["rosas"] = "roses"
		base.Synonyms["clavel"] = "carnation"

		override := models.NewRuleSet()
		override.Synonyms["rosas"] = "premium roses"

		merged := base.Merge(&override)
		assert.Equal(t, "premium roses", merged.Synonyms["rosas"])
		assert.Equal(t, "carnation", merged.Synonyms["clavel"])
	})

	t.Run("blacklists union", func(t *testing.T) {
		base := models.NewRuleSet()
		base.Blacklist = []string{"box"}

		override := models.NewRuleSet()
		override.Blacklist = []string{"box", "stems bunch"}

		merged := base.Merge(&override)
		assert.Equal(t, []string{"box", "stems bunch"}, merged.Blacklist)
	})

	t.Run("nil override is identity", func(t *testing.T) {
		base := models.NewRuleSet()
		base.Synonyms["rosas"] = "roses"

		merged := base.Merge(nil)
		assert.Equal(t, base.Synonyms, merged.Synonyms)
	})
}

package rowproc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhojannt/mapping-repo/pkg/catalog"
	"github.com/Jhojannt/mapping-repo/pkg/matching"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/rules"
)

type fakeRuleRepo struct {
	mu     sync.Mutex
	sets   map[string]models.RuleSet
	getErr error
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{sets: map[string]models.RuleSet{}}
}

func (f *fakeRuleRepo) Get(_ context.Context, tenantID string) (models.RuleSet, error) {
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

func (f *fakeRuleRepo) Replace(_ context.Context, tenantID string, rs models.RuleSet, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.sets[tenantID]
	if current.Version != expectedVersion {
		return rules.ErrVersionConflict
	}
	rs.Version = expectedVersion + 1
	f.sets[tenantID] = rs
	return nil
}

type fakeCatalogReader struct {
	mu      sync.Mutex
	entries []models.CatalogEntry
	calls   int
}

func (f *fakeCatalogReader) ListByTenant(_ context.Context, _ string) ([]models.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.entries, nil
}

type fakeStaging struct {
	inserted []models.CatalogAttributes
	err      error
}

func (f *fakeStaging) InsertStaging(_ context.Context, _ string, attrs models.CatalogAttributes, catalogID, _ string) error {
	if f.err != nil {
		return f.err
	}
	if catalogID != models.StagingCatalogID {
		return errors.New("unexpected catalog id")
	}
	f.inserted = append(f.inserted, attrs)
	return nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newReprocessor(ruleRepo rules.Repository, reader catalog.Reader, staging StagingWriter) (*Reprocessor, *catalog.Cache) {
	logger := noopLogger()
	cache := catalog.NewCache(reader, logger, catalog.DefaultCacheConfig())
	rp := NewReprocessor(
		rules.NewStore(ruleRepo, logger, rules.DefaultStoreConfig()),
		cache,
		matching.NewEngine(),
		staging,
		nil,
		nil,
		logger,
	)
	return rp, cache
}

func flowerCatalog() []models.CatalogEntry {
	return []models.CatalogEntry{
		{Categoria: "Roses", Variedad: "Freedom", Color: "Red", Grado: "40cm", CatalogID: "CAT-001"},
	}
}

func TestReprocess(t *testing.T) {
	t.Run("rematches with current rules", func(t *testing.T) {
		rp, _ := newReprocessor(newFakeRuleRepo(), &fakeCatalogReader{entries: flowerCatalog()}, nil)

		row := models.EnrichedRow{ID: "row-1", Description: "Roses Freedom Red"}
		ok, updated := rp.Reprocess(context.Background(), "tenant-a", row, nil)

		require.True(t, ok)
		assert.Equal(t, "roses freedom red", updated.CleanedInput)
		assert.Equal(t, "CAT-001", updated.CatalogID)
	})

	t.Run("synonym edit takes effect immediately", func(t *testing.T) {
		repo := newFakeRuleRepo()
		rp, _ := newReprocessor(repo, &fakeCatalogReader{entries: flowerCatalog()}, nil)

		row := models.EnrichedRow{ID: "row-1", Description: "Rosas Freedom Red"}
		ok, updated := rp.Reprocess(context.Background(), "tenant-a", row, models.SynonymEdit{Original: "rosas", Replacement: "roses"})

		require.True(t, ok)
		assert.Equal(t, "roses freedom red", updated.CleanedInput)
		assert.Equal(t, "rosas→roses", updated.AppliedSynonyms)

		stored, err := repo.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, "roses", stored.Synonyms["rosas"])
	})

	t.Run("blacklist edit takes effect immediately", func(t *testing.T) {
		rp, _ := newReprocessor(newFakeRuleRepo(), &fakeCatalogReader{entries: flowerCatalog()}, nil)

		row := models.EnrichedRow{ID: "row-1", Description: "Roses Freedom Red Box"}
		ok, updated := rp.Reprocess(context.Background(), "tenant-a", row, models.BlacklistEdit{Phrase: "box"})

		require.True(t, ok)
		assert.Equal(t, "roses freedom red", updated.CleanedInput)
		assert.Equal(t, "box", updated.RemovedBlacklistWords)
	})

	t.Run("rule failure returns the original row", func(t *testing.T) {
		repo := newFakeRuleRepo()
		repo.getErr = errors.New("connection refused")
		rp, _ := newReprocessor(repo, &fakeCatalogReader{entries: flowerCatalog()}, nil)

		row := models.EnrichedRow{ID: "row-1", Description: "Roses Freedom Red", CleanedInput: "stale"}
		ok, updated := rp.Reprocess(context.Background(), "tenant-a", row, nil)

		assert.False(t, ok)
		assert.Equal(t, row, updated)
	})
}

func TestSaveAsStaging(t *testing.T) {
	attrs := models.CatalogAttributes{Categoria: "Roses", Variedad: "Explorer", Color: "Red", Grado: "50cm"}

	t.Run("inserts sentinel entry and invalidates the index", func(t *testing.T) {
		staging := &fakeStaging{}
		reader := &fakeCatalogReader{entries: flowerCatalog()}
		rp, cache := newReprocessor(newFakeRuleRepo(), reader, staging)

		_, err := cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		require.Equal(t, 1, reader.calls)

		ok, msg := rp.SaveAsStaging(context.Background(), "tenant-a", attrs, "reviewer")
		require.True(t, ok, msg)
		require.Len(t, staging.inserted, 1)

		// next index read must rebuild
		_, err = cache.Get(context.Background(), "tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 2, reader.calls)
	})

	t.Run("insert failure is reported", func(t *testing.T) {
		staging := &fakeStaging{err: errors.New("disk full")}
		rp, _ := newReprocessor(newFakeRuleRepo(), &fakeCatalogReader{}, staging)

		ok, msg := rp.SaveAsStaging(context.Background(), "tenant-a", attrs, "reviewer")
		assert.False(t, ok)
		assert.Contains(t, msg, "disk full")
	})

	t.Run("unconfigured staging storage is reported", func(t *testing.T) {
		rp, _ := newReprocessor(newFakeRuleRepo(), &fakeCatalogReader{}, nil)

		ok, _ := rp.SaveAsStaging(context.Background(), "tenant-a", attrs, "reviewer")
		assert.False(t, ok)
	})
}

// Package catalog maintains per-tenant snapshots of the product catalog,
// reduced to normalized search keys for the matching engine.
package catalog

import (
	"time"

	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/textutil"
)

// Index is one tenant's catalog snapshot. Entries keep their storage order so
// tie-breaking stays stable across rebuilds.
type Index struct {
	Entries []models.CatalogEntry
	BuiltAt time.Time
}

// IsStale reports whether the snapshot has outlived ttl.
func (i *Index) IsStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(i.BuiltAt) > ttl
}

// Build assembles an index from catalog rows, computing the search key for any
// row that lacks one or whose attributes no longer match it.
func Build(entries []models.CatalogEntry, now time.Time) *Index {
	indexed := make([]models.CatalogEntry, len(entries))
	for i, entry := range entries {
		expected := textutil.SearchKey(entry.Categoria, entry.Variedad, entry.Color, entry.Grado)
		if entry.SearchKey != expected {
			entry.SearchKey = expected
		}
		indexed[i] = entry
	}
	return &Index{Entries: indexed, BuiltAt: now}
}

package models

import "time"

// StagingCatalogID is the sentinel catalog identifier for entries approved by a
// reviewer but not yet formally cataloged.
const StagingCatalogID = "111111"

// CatalogEntry is one tenant catalog row. SearchKey is the normalized join of
// the four descriptive attributes and is the fuzzy comparison target.
type CatalogEntry struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Categoria string    `json:"categoria" db:"categoria"`
	Variedad  string    `json:"variedad" db:"variedad"`
	Color     string    `json:"color" db:"color"`
	Grado     string    `json:"grado" db:"grado"`
	CatalogID string    `json:"catalog_id" db:"catalog_id"`
	SearchKey string    `json:"search_key" db:"search_key"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsStaging reports whether the entry carries the staging sentinel.
func (e CatalogEntry) IsStaging() bool {
	return e.CatalogID == StagingCatalogID
}

// CatalogAttributes are the reviewer-supplied fields for a staging insert.
type CatalogAttributes struct {
	Categoria string `json:"categoria" validate:"required"`
	Variedad  string `json:"variedad" validate:"required"`
	Color     string `json:"color"`
	Grado     string `json:"grado"`
}

package models

import (
	"strings"
	"time"
)

// DuplicateSentinel marks rows suppressed as in-batch duplicates.
const DuplicateSentinel = "NN"

// InputRow is one vendor-supplied row awaiting matching.
type InputRow struct {
	ID              string `json:"id"`
	Description     string `json:"vendor_product_description" validate:"required"`
	VendorName      string `json:"vendor_name"`
	CompanyLocation string `json:"company_location"`
}

// DuplicateKey identifies rows considered the same unit of work in one batch.
func (r InputRow) DuplicateKey() string {
	return strings.ToLower(r.Description) + "|" + strings.ToLower(r.VendorName)
}

// MatchResult is the outcome of matching one rewritten input against a tenant
// catalog. All fields are empty or zero when the input cleaned to nothing or
// the catalog had no entries.
type MatchResult struct {
	BestMatch    string `json:"best_match" db:"best_match"`
	Similarity   int    `json:"similarity_percentage" db:"similarity_percentage"`
	MatchedWords string `json:"matched_words" db:"matched_words"`
	MissingWords string `json:"missing_words" db:"missing_words"`
	CatalogID    string `json:"catalog_id" db:"catalog_id"`
	Categoria    string `json:"categoria" db:"categoria"`
	Variedad     string `json:"variedad" db:"variedad"`
	Color        string `json:"color" db:"color"`
	Grado        string `json:"grado" db:"grado"`
}

// IsEmpty reports whether the result carries no match.
func (m MatchResult) IsEmpty() bool {
	return m.BestMatch == "" && m.Similarity == 0
}

// EnrichedRow is an input row carrying its rewrite audit and match outcome.
// Duplicate rows carry the sentinel in CleanedInput and empty enrichment.
type EnrichedRow struct {
	ID                    string `json:"id" db:"id"`
	TenantID              string `json:"tenant_id" db:"client_id"`
	BatchID               string `json:"batch_id" db:"batch_id"`
	Description           string `json:"vendor_product_description" db:"vendor_product_description"`
	VendorName            string `json:"vendor_name" db:"vendor_name"`
	CompanyLocation       string `json:"company_location" db:"company_location"`
	CleanedInput          string `json:"cleaned_input" db:"cleaned_input"`
	AppliedSynonyms       string `json:"applied_synonyms" db:"applied_synonyms"`
	RemovedBlacklistWords string `json:"removed_blacklist_words" db:"removed_blacklist_words"`

	MatchResult

	// review workflow fields
	AcceptMap string `json:"accept_map" db:"accept_map"`
	DenyMap   string `json:"deny_map" db:"deny_map"`
	Action    string `json:"action" db:"action"`
	Word      string `json:"word" db:"word"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsDuplicate reports whether the row was suppressed as an in-batch duplicate.
func (r EnrichedRow) IsDuplicate() bool {
	return r.CleanedInput == DuplicateSentinel
}

// BatchSummary aggregates one processed batch for reporting.
type BatchSummary struct {
	BatchID       string  `json:"batch_id"`
	TotalRows     int     `json:"total_rows"`
	UniqueRows    int     `json:"unique_rows"`
	DuplicateRows int     `json:"duplicate_rows"`
	StagingRows   int     `json:"staging_rows"`
	MinSimilarity int     `json:"min_similarity"`
	MaxSimilarity int     `json:"max_similarity"`
	AvgSimilarity float64 `json:"avg_similarity"`
	Accepted      int     `json:"accepted"`
	Denied        int     `json:"denied"`
	Pending       int     `json:"pending"`
	PersistError  string  `json:"persist_error,omitempty"`
}

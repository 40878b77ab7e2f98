package processedmapping

import (
	"strconv"
	"time"

	"github.com/Jhojannt/mapping-repo/pkg/models"
)

// dbRow mirrors the processed_mappings table. Similarity is stored as text
// for compatibility with older exports.
type dbRow struct {
	ID                    string    `db:"id"`
	ClientID              string    `db:"client_id"`
	BatchID               string    `db:"batch_id"`
	Description           string    `db:"vendor_product_description"`
	VendorName            string    `db:"vendor_name"`
	CompanyLocation       string    `db:"company_location"`
	CleanedInput          string    `db:"cleaned_input"`
	AppliedSynonyms       string    `db:"applied_synonyms"`
	RemovedBlacklistWords string    `db:"removed_blacklist_words"`
	BestMatch             string    `db:"best_match"`
	Similarity            string    `db:"similarity_percentage"`
	MatchedWords          string    `db:"matched_words"`
	MissingWords          string    `db:"missing_words"`
	CatalogID             string    `db:"catalog_id"`
	Categoria             string    `db:"categoria"`
	Variedad              string    `db:"variedad"`
	Color                 string    `db:"color"`
	Grado                 string    `db:"grado"`
	AcceptMap             string    `db:"accept_map"`
	DenyMap               string    `db:"deny_map"`
	Action                string    `db:"action"`
	Word                  string    `db:"word"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (r dbRow) toModel() models.EnrichedRow {
	similarity, _ := strconv.Atoi(r.Similarity)

	return models.EnrichedRow{
		ID:                    r.ID,
		TenantID:              r.ClientID,
		BatchID:               r.BatchID,
		Description:           r.Description,
		VendorName:            r.VendorName,
		CompanyLocation:       r.CompanyLocation,
		CleanedInput:          r.CleanedInput,
		AppliedSynonyms:       r.AppliedSynonyms,
		RemovedBlacklistWords: r.RemovedBlacklistWords,
		MatchResult: models.MatchResult{
			BestMatch:    r.BestMatch,
			Similarity:   similarity,
			MatchedWords: r.MatchedWords,
			MissingWords: r.MissingWords,
			CatalogID:    r.CatalogID,
			Categoria:    r.Categoria,
			Variedad:     r.Variedad,
			Color:        r.Color,
			Grado:        r.Grado,
		},
		AcceptMap: r.AcceptMap,
		DenyMap:   r.DenyMap,
		Action:    r.Action,
		Word:      r.Word,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Package processedmapping persists enriched batch results.
package processedmapping

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Jhojannt/mapping-repo/pkg/database"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

// Repository handles processed mapping persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new processed mapping repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Append inserts the batch's primary rows.
func (r *Repository) Append(ctx context.Context, tenantID, batchID string, rows []models.EnrichedRow) error {
	ctx, span := tracing.StartSpan(ctx, "processedmapping.Repository.Append")
	defer span.End()

	if len(rows) == 0 {
		return nil
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Append",
		"tenant_id": tenantID,
		"batch_id":  batchID,
		"rows":      len(rows),
	})

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("processed_mappings")
	ib.Cols("id", "client_id", "batch_id", "vendor_product_description", "vendor_name", "company_location",
		"cleaned_input", "applied_synonyms", "removed_blacklist_words",
		"best_match", "similarity_percentage", "matched_words", "missing_words",
		"catalog_id", "categoria", "variedad", "color", "grado",
		"accept_map", "deny_map", "action", "word", "created_at", "updated_at")
	for _, row := range rows {
		ib.Values(row.ID, tenantID, batchID, row.Description, row.VendorName, row.CompanyLocation,
			row.CleanedInput, row.AppliedSynonyms, row.RemovedBlacklistWords,
			row.BestMatch, strconv.Itoa(row.Similarity), row.MatchedWords, row.MissingWords,
			row.CatalogID, row.Categoria, row.Variedad, row.Color, row.Grado,
			row.AcceptMap, row.DenyMap, row.Action, row.Word, row.CreatedAt, row.UpdatedAt)
	}

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to append processed mappings")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to append processed mappings")
	}

	log.Info("Appended processed mappings")
	return nil
}

// Update persists review edits and rematch results for one row.
func (r *Repository) Update(ctx context.Context, tenantID string, row models.EnrichedRow) error {
	ctx, span := tracing.StartSpan(ctx, "processedmapping.Repository.Update")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("processed_mappings")
	ub.Set(
		ub.Assign("cleaned_input", row.CleanedInput),
		ub.Assign("applied_synonyms", row.AppliedSynonyms),
		ub.Assign("removed_blacklist_words", row.RemovedBlacklistWords),
		ub.Assign("best_match", row.BestMatch),
		ub.Assign("similarity_percentage", strconv.Itoa(row.Similarity)),
		ub.Assign("matched_words", row.MatchedWords),
		ub.Assign("missing_words", row.MissingWords),
		ub.Assign("catalog_id", row.CatalogID),
		ub.Assign("categoria", row.Categoria),
		ub.Assign("variedad", row.Variedad),
		ub.Assign("color", row.Color),
		ub.Assign("grado", row.Grado),
		ub.Assign("accept_map", row.AcceptMap),
		ub.Assign("deny_map", row.DenyMap),
		ub.Assign("action", row.Action),
		ub.Assign("word", row.Word),
		ub.Assign("updated_at", row.UpdatedAt),
	)
	ub.Where(
		ub.Equal("id", row.ID),
		ub.Equal("client_id", tenantID),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update processed mapping")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update processed mapping")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("processed mapping %s not found", row.ID))
	}

	return nil
}

// ListByBatch returns a batch's rows in insertion order.
func (r *Repository) ListByBatch(ctx context.Context, tenantID, batchID string) ([]models.EnrichedRow, error) {
	ctx, span := tracing.StartSpan(ctx, "processedmapping.Repository.ListByBatch")
	defer span.End()

	sb := r.selectRows()
	sb.Where(
		sb.Equal("client_id", tenantID),
		sb.Equal("batch_id", batchID),
	)
	sb.OrderBy("created_at", "id")

	return r.queryRows(ctx, sb)
}

// ListByTenant returns the tenant's most recent rows, newest batch first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]models.EnrichedRow, error) {
	ctx, span := tracing.StartSpan(ctx, "processedmapping.Repository.ListByTenant")
	defer span.End()

	sb := r.selectRows()
	sb.Where(sb.Equal("client_id", tenantID))
	sb.OrderBy("created_at DESC", "id")
	if limit > 0 {
		sb.Limit(limit)
	}

	return r.queryRows(ctx, sb)
}

// Get returns one row by id.
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.EnrichedRow, error) {
	ctx, span := tracing.StartSpan(ctx, "processedmapping.Repository.Get")
	defer span.End()

	sb := r.selectRows()
	sb.Where(
		sb.Equal("client_id", tenantID),
		sb.Equal("id", id),
	)

	query, args := sb.Build()
	var row dbRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("processed mapping %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get processed mapping")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get processed mapping")
	}

	enriched := row.toModel()
	return &enriched, nil
}

func (r *Repository) selectRows() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "client_id", "batch_id", "vendor_product_description", "vendor_name", "company_location",
		"cleaned_input", "applied_synonyms", "removed_blacklist_words",
		"best_match", "similarity_percentage", "matched_words", "missing_words",
		"catalog_id", "categoria", "variedad", "color", "grado",
		"accept_map", "deny_map", "action", "word", "created_at", "updated_at")
	sb.From("processed_mappings")
	return sb
}

func (r *Repository) queryRows(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]models.EnrichedRow, error) {
	query, args := sb.Build()
	var rows []dbRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list processed mappings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list processed mappings")
	}

	enriched := make([]models.EnrichedRow, len(rows))
	for i, row := range rows {
		enriched[i] = row.toModel()
	}
	return enriched, nil
}

// Package productcatalog persists tenant catalog entries.
package productcatalog

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Jhojannt/mapping-repo/pkg/database"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/textutil"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

// Repository handles catalog persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListByTenant returns the tenant's catalog in insertion order.
func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]models.CatalogEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "productcatalog.Repository.ListByTenant")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "categoria", "variedad", "color", "grado", "catalog_id", "search_key", "created_by", "created_at", "updated_at")
	sb.From("product_catalog")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var entries []models.CatalogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list catalog entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list catalog entries")
	}

	return entries, nil
}

// InsertStaging adds an entry under the given sentinel catalog identifier.
// The search key is computed at insert so the entry matches immediately.
func (r *Repository) InsertStaging(ctx context.Context, tenantID string, attrs models.CatalogAttributes, catalogID, createdBy string) error {
	ctx, span := tracing.StartSpan(ctx, "productcatalog.Repository.InsertStaging")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "InsertStaging",
		"tenant_id":  tenantID,
		"catalog_id": catalogID,
	})

	now := time.Now().UTC()
	searchKey := textutil.SearchKey(attrs.Categoria, attrs.Variedad, attrs.Color, attrs.Grado)

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("product_catalog")
	ib.Cols("id", "tenant_id", "categoria", "variedad", "color", "grado", "catalog_id", "search_key", "created_by", "created_at", "updated_at")
	ib.Values(uuid.New().String(), tenantID, attrs.Categoria, attrs.Variedad, attrs.Color, attrs.Grado, catalogID, searchKey, createdBy, now, now)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to insert staging entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert staging entry")
	}

	log.Info("Inserted staging entry")
	return nil
}

// Package rowproc re-runs the matching pipeline for single previously
// processed rows, optionally teaching the tenant a new rule first.
package rowproc

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Jhojannt/mapping-repo/pkg/catalog"
	"github.com/Jhojannt/mapping-repo/pkg/matching"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/rewrite"
	"github.com/Jhojannt/mapping-repo/pkg/rules"
	"github.com/Jhojannt/mapping-repo/pkg/textutil"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

// StagingWriter inserts reviewer-approved entries into the catalog
type StagingWriter interface {
	InsertStaging(ctx context.Context, tenantID string, attrs models.CatalogAttributes, catalogID, createdBy string) error
}

// RowUpdater persists review edits to an already processed row
type RowUpdater interface {
	Update(ctx context.Context, tenantID string, row models.EnrichedRow) error
}

// StagingEmitter publishes staging lifecycle events
type StagingEmitter interface {
	StagingCreated(ctx context.Context, tenantID string, attrs models.CatalogAttributes) error
}

// Reprocessor reworks single rows against fresh rules and catalog state.
type Reprocessor struct {
	rules   *rules.Store
	catalog *catalog.Cache
	engine  *matching.Engine
	staging StagingWriter
	updater RowUpdater
	emitter StagingEmitter
	logger  ectologger.Logger
}

// NewReprocessor creates a new row reprocessor. staging, updater and emitter
// may be nil when those write paths are not wired.
func NewReprocessor(ruleStore *rules.Store, catalogCache *catalog.Cache, engine *matching.Engine, staging StagingWriter, updater RowUpdater, emitter StagingEmitter, logger ectologger.Logger) *Reprocessor {
	return &Reprocessor{
		rules:   ruleStore,
		catalog: catalogCache,
		engine:  engine,
		staging: staging,
		updater: updater,
		emitter: emitter,
		logger:  logger,
	}
}

// Reprocess re-runs clean, rewrite and match for one row. When edit is
// non-nil it is applied to the tenant's rules first so the new rule takes
// effect immediately. On any failure the original row is returned unchanged
// with ok false.
func (r *Reprocessor) Reprocess(ctx context.Context, tenantID string, row models.EnrichedRow, edit models.RuleEdit) (bool, models.EnrichedRow) {
	ctx, span := tracing.StartSpan(ctx, "rowproc.Reprocessor.Reprocess")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Reprocess",
		"tenant_id": tenantID,
		"row_id":    row.ID,
	})

	if edit != nil {
		if _, err := r.rules.ApplyEdit(ctx, tenantID, edit); err != nil {
			log.WithError(err).Error("Failed to apply rule edit")
			return false, row
		}
	}

	ruleSet, err := r.rules.Get(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("Failed to load tenant rules")
		return false, row
	}

	idx, err := r.catalog.Get(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("Catalog unavailable")
		return false, row
	}

	cleaned := textutil.Clean(row.Description)
	rewritten, audit := rewrite.Apply(cleaned, ruleSet)
	result := r.engine.Match(rewritten, idx.Entries)

	updated := row
	updated.CleanedInput = rewritten
	updated.AppliedSynonyms = audit.RenderSynonyms()
	updated.RemovedBlacklistWords = audit.RenderRemoved()
	updated.MatchResult = result
	updated.UpdatedAt = time.Now().UTC()

	log.WithFields(map[string]any{"similarity": result.Similarity}).Info("Reprocessed row")
	return true, updated
}

// SaveAsStaging inserts a reviewer-approved entry under the staging sentinel
// and invalidates the tenant's catalog index so the entry participates in
// subsequent matches.
func (r *Reprocessor) SaveAsStaging(ctx context.Context, tenantID string, attrs models.CatalogAttributes, createdBy string) (bool, string) {
	ctx, span := tracing.StartSpan(ctx, "rowproc.Reprocessor.SaveAsStaging")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "SaveAsStaging",
		"tenant_id": tenantID,
	})

	if r.staging == nil {
		return false, "staging storage is not configured"
	}

	if err := r.staging.InsertStaging(ctx, tenantID, attrs, models.StagingCatalogID, createdBy); err != nil {
		log.WithError(err).Error("Failed to insert staging entry")
		return false, err.Error()
	}

	r.catalog.Invalidate(tenantID)

	if r.emitter != nil {
		if err := r.emitter.StagingCreated(ctx, tenantID, attrs); err != nil {
			log.WithError(err).Warn("Failed to emit staging event")
		}
	}

	log.Info("Created staging entry")
	return true, "staging entry created"
}

// UpdateRow persists reviewer edits to a processed row.
func (r *Reprocessor) UpdateRow(ctx context.Context, tenantID string, row models.EnrichedRow) error {
	ctx, span := tracing.StartSpan(ctx, "rowproc.Reprocessor.UpdateRow")
	defer span.End()

	row.UpdatedAt = time.Now().UTC()
	return r.updater.Update(ctx, tenantID, row)
}

// Package processor drives whole batches through the clean, rewrite and match
// pipeline: duplicate suppression, rule resolution, progress reporting and
// result persistence.
package processor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Jhojannt/mapping-repo/pkg/catalog"
	"github.com/Jhojannt/mapping-repo/pkg/matching"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/rewrite"
	"github.com/Jhojannt/mapping-repo/pkg/rules"
	"github.com/Jhojannt/mapping-repo/pkg/textutil"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

// ProgressFunc receives fractional progress for UI responsiveness. Purely
// observational, never affects the result.
type ProgressFunc func(percent float64, message string)

// ResultWriter appends enriched primary rows to durable storage
type ResultWriter interface {
	Append(ctx context.Context, tenantID, batchID string, rows []models.EnrichedRow) error
}

// EventEmitter publishes batch lifecycle events
type EventEmitter interface {
	BatchCompleted(ctx context.Context, tenantID string, summary models.BatchSummary) error
}

// Orchestrator runs batches for a tenant. Each invocation gets its own match
// session; nothing is shared across concurrent batches.
type Orchestrator struct {
	rules   *rules.Store
	catalog *catalog.Cache
	engine  *matching.Engine
	writer  ResultWriter
	emitter EventEmitter
	logger  ectologger.Logger
}

// NewOrchestrator creates a new batch orchestrator. writer and emitter may be
// nil when persistence or eventing is not wired.
func NewOrchestrator(ruleStore *rules.Store, catalogCache *catalog.Cache, engine *matching.Engine, writer ResultWriter, emitter EventEmitter, logger ectologger.Logger) *Orchestrator {
	return &Orchestrator{
		rules:   ruleStore,
		catalog: catalogCache,
		engine:  engine,
		writer:  writer,
		emitter: emitter,
		logger:  logger,
	}
}

// NewBatchID derives a human-meaningful batch identifier from the clock.
func NewBatchID(now time.Time) string {
	return "batch_" + now.Format("20060102_150405")
}

// Process runs every row through the pipeline and returns one enriched row
// per input row, in original order. Duplicate rows carry the sentinel and
// empty enrichment. Persistence failure is reported in the summary, not as an
// error. Cancellation is honored between progress checkpoints.
func (o *Orchestrator) Process(ctx context.Context, tenantID string, inputRows []models.InputRow, override *models.RuleSet, progress ProgressFunc) ([]models.EnrichedRow, models.BatchSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Orchestrator.Process")
	defer span.End()

	if progress == nil {
		progress = func(float64, string) {}
	}

	log := o.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Process",
		"tenant_id": tenantID,
		"rows":      len(inputRows),
	})

	if err := validateBatch(inputRows); err != nil {
		log.WithError(err).Warn("Rejected malformed batch")
		return nil, models.BatchSummary{}, err
	}

	batchID := NewBatchID(time.Now())
	progress(1, "Initializing batch "+batchID)

	// first occurrence of a duplicate key is primary, the rest are duplicates
	seen := map[string]bool{}
	duplicate := make([]bool, len(inputRows))
	primaries := 0
	for i, row := range inputRows {
		key := row.DuplicateKey()
		if seen[key] {
			duplicate[i] = true
		} else {
			seen[key] = true
			primaries++
		}
	}
	progress(3, fmt.Sprintf("Processing %d unique records", primaries))

	ruleSet, err := o.rules.Get(ctx, tenantID)
	if err != nil {
		// best effort: the batch proceeds on the caller-supplied rules alone
		log.WithError(err).Warn("Failed to load tenant rules, using batch overrides only")
		ruleSet = models.NewRuleSet()
	}
	effective := ruleSet.Merge(override)
	progress(5, "Rules resolved")

	var entries []models.CatalogEntry
	idx, err := o.catalog.Get(ctx, tenantID)
	if err != nil {
		// best effort: matching proceeds against an empty catalog
		log.WithError(err).Warn("Catalog unavailable, matches will be empty")
	} else {
		entries = idx.Entries
	}
	progress(8, "Search keys ready")

	session := matching.NewSession(o.engine)
	now := time.Now().UTC()
	enriched := make([]models.EnrichedRow, len(inputRows))
	processed := 0

	for i, row := range inputRows {
		if err := ctx.Err(); err != nil {
			return nil, models.BatchSummary{}, err
		}

		if duplicate[i] {
			enriched[i] = duplicateRow(tenantID, batchID, row, now)
			continue
		}

		enriched[i] = o.enrichRow(tenantID, batchID, row, effective, entries, session, now)
		processed++
		progress(10+75*float64(processed)/float64(primaries), fmt.Sprintf("Matched %d of %d", processed, primaries))
	}

	progress(90, "Finalizing results")
	summary := Summarize(batchID, enriched)

	if o.writer != nil {
		persisted := ectolinq.Filter(enriched, func(row models.EnrichedRow) bool {
			return !row.IsDuplicate()
		})
		if err := o.writer.Append(ctx, tenantID, batchID, persisted); err != nil {
			log.WithError(err).Error("Failed to persist batch results")
			summary.PersistError = err.Error()
		}
	}
	progress(98, "Persistence complete")

	if o.emitter != nil {
		if err := o.emitter.BatchCompleted(ctx, tenantID, summary); err != nil {
			log.WithError(err).Warn("Failed to emit batch event")
		}
	}

	progress(100, "Batch complete")
	log.WithFields(map[string]any{"batch_id": batchID, "unique": primaries}).Info("Processed batch")
	return enriched, summary, nil
}

func (o *Orchestrator) enrichRow(tenantID, batchID string, row models.InputRow, rs models.RuleSet, entries []models.CatalogEntry, session *matching.Session, now time.Time) models.EnrichedRow {
	cleaned := textutil.Clean(row.Description)
	rewritten, audit := rewrite.Apply(cleaned, rs)
	result := session.Match(rewritten, entries)

	return models.EnrichedRow{
		ID:                    rowID(row),
		TenantID:              tenantID,
		BatchID:               batchID,
		Description:           row.Description,
		VendorName:            row.VendorName,
		CompanyLocation:       row.CompanyLocation,
		CleanedInput:          rewritten,
		AppliedSynonyms:       audit.RenderSynonyms(),
		RemovedBlacklistWords: audit.RenderRemoved(),
		MatchResult:           result,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func duplicateRow(tenantID, batchID string, row models.InputRow, now time.Time) models.EnrichedRow {
	return models.EnrichedRow{
		ID:              rowID(row),
		TenantID:        tenantID,
		BatchID:         batchID,
		Description:     row.Description,
		VendorName:      row.VendorName,
		CompanyLocation: row.CompanyLocation,
		CleanedInput:    models.DuplicateSentinel,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func rowID(row models.InputRow) string {
	if row.ID != "" {
		return row.ID
	}
	return uuid.New().String()
}

func validateBatch(rows []models.InputRow) error {
	if len(rows) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "batch contains no rows")
	}
	for i, row := range rows {
		if row.Description == "" {
			return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("row %d is missing a product description", i))
		}
	}
	return nil
}

// Summarize aggregates a processed batch for reporting.
func Summarize(batchID string, rows []models.EnrichedRow) models.BatchSummary {
	summary := models.BatchSummary{BatchID: batchID, TotalRows: len(rows)}

	total := 0
	for _, row := range rows {
		if row.IsDuplicate() {
			summary.DuplicateRows++
			continue
		}
		summary.UniqueRows++
		total += row.Similarity

		if summary.MinSimilarity == 0 || row.Similarity < summary.MinSimilarity {
			summary.MinSimilarity = row.Similarity
		}
		if row.Similarity > summary.MaxSimilarity {
			summary.MaxSimilarity = row.Similarity
		}
		if row.CatalogID == models.StagingCatalogID {
			summary.StagingRows++
		}

		switch {
		case row.AcceptMap != "":
			summary.Accepted++
		case row.DenyMap != "":
			summary.Denied++
		default:
			summary.Pending++
		}
	}

	if summary.UniqueRows > 0 {
		summary.AvgSimilarity = float64(total) / float64(summary.UniqueRows)
	}
	return summary
}

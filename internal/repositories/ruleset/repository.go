// Package ruleset persists tenant rewrite rules as typed rows with a
// per-tenant version guarding full-replace updates.
package ruleset

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	appcontext "github.com/Jhojannt/mapping-repo/pkg/context"
	"github.com/Jhojannt/mapping-repo/pkg/database"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/rules"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

func createdBy(ctx context.Context) string {
	if userID := appcontext.GetUserID(ctx); userID != "" {
		return userID
	}
	return "system"
}

// Repository handles rewrite rule persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new rule set repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get reads the tenant's active rules into a RuleSet. A tenant with no rows
// yields the empty set at version zero.
func (r *Repository) Get(ctx context.Context, tenantID string) (models.RuleSet, error) {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.Get")
	defer span.End()

	rs := models.NewRuleSet()

	version, err := r.currentVersion(ctx, tenantID)
	if err != nil {
		return rs, err
	}
	rs.Version = version

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "type", "original_word", "synonym_word", "blacklist_word", "status", "created_by", "created_at", "updated_at")
	sb.From("mapping_rules")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("status", string(models.RuleStatusActive)),
	)
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var rows []ruleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load rules")
		return rs, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load rules")
	}

	for _, row := range rows {
		switch models.RuleType(row.Type) {
		case models.RuleTypeSynonym:
			rs.Synonyms[row.OriginalWord] = row.SynonymWord
		case models.RuleTypeBlacklist:
			rs.Blacklist = append(rs.Blacklist, row.BlacklistWord)
		}
	}

	return rs, nil
}

// Replace swaps the tenant's full rule set inside one transaction. The
// per-tenant version row is advanced first; a mismatch with expectedVersion
// aborts with rules.ErrVersionConflict and leaves the stored rules untouched.
func (r *Repository) Replace(ctx context.Context, tenantID string, rs models.RuleSet, expectedVersion int64) error {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.Replace")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Replace",
		"tenant_id": tenantID,
		"version":   expectedVersion,
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin rule replace")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.advanceVersion(ctx, tx, tenantID, expectedVersion); err != nil {
		return err
	}

	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom("mapping_rules")
	del.Where(del.Equal("tenant_id", tenantID))
	query, args := del.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to clear rules")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace rules")
	}

	now := time.Now().UTC()
	userID := createdBy(ctx)

	if len(rs.Synonyms) > 0 || len(rs.Blacklist) > 0 {
		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto("mapping_rules")
		ib.Cols("id", "tenant_id", "type", "original_word", "synonym_word", "blacklist_word", "status", "created_by", "created_at", "updated_at")
		for original, replacement := range rs.Synonyms {
			ib.Values(uuid.New().String(), tenantID, string(models.RuleTypeSynonym), original, replacement, "", string(models.RuleStatusActive), userID, now, now)
		}
		for _, phrase := range rs.Blacklist {
			ib.Values(uuid.New().String(), tenantID, string(models.RuleTypeBlacklist), "", "", phrase, string(models.RuleStatusActive), userID, now, now)
		}

		query, args = ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to insert rules")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace rules")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit rule replace")
	}

	log.WithFields(map[string]any{
		"synonyms":  len(rs.Synonyms),
		"blacklist": len(rs.Blacklist),
	}).Info("Replaced rule set")
	return nil
}

func (r *Repository) currentVersion(ctx context.Context, tenantID string) (int64, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("version")
	sb.From("mapping_rule_versions")
	sb.Where(sb.Equal("tenant_id", tenantID))

	query, args := sb.Build()
	var version int64
	if err := r.db.GetContext(ctx, &version, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load rule version")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load rule version")
	}
	return version, nil
}

// advanceVersion performs the compare-and-swap. An update that matches zero
// rows means another writer advanced the version first.
func (r *Repository) advanceVersion(ctx context.Context, tx database.Tx, tenantID string, expectedVersion int64) error {
	if expectedVersion == 0 {
		ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ib.InsertInto("mapping_rule_versions")
		ib.Cols("tenant_id", "version")
		ib.Values(tenantID, 1)
		ib.SQL("ON CONFLICT (tenant_id) DO NOTHING")

		query, args := ib.Build()
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to advance rule version")
		}
		if affected, _ := result.RowsAffected(); affected == 1 {
			return nil
		}
		// a version row already exists, fall through to the guarded update
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("mapping_rule_versions")
	ub.Set(ub.Assign("version", expectedVersion+1))
	ub.Where(
		ub.Equal("tenant_id", tenantID),
		ub.Equal("version", expectedVersion),
	)

	query, args := ub.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to advance rule version")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return rules.ErrVersionConflict
	}
	return nil
}

type ruleRow struct {
	ID            string    `db:"id"`
	TenantID      string    `db:"tenant_id"`
	Type          string    `db:"type"`
	OriginalWord  string    `db:"original_word"`
	SynonymWord   string    `db:"synonym_word"`
	BlacklistWord string    `db:"blacklist_word"`
	Status        string    `db:"status"`
	CreatedBy     string    `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

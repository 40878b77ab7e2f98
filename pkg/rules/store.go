// Package rules manages tenant rewrite rule sets. Updates follow a
// read-merge-replace cycle guarded by a version check so concurrent editors
// cannot silently drop one another's additions.
package rules

import (
	"context"
	"errors"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

// ErrVersionConflict is returned by Replace when the stored rule set moved
// past the expected version. Callers re-read and retry.
var ErrVersionConflict = errors.New("rule set version conflict")

// Repository persists tenant rule sets
type Repository interface {
	Get(ctx context.Context, tenantID string) (models.RuleSet, error)
	Replace(ctx context.Context, tenantID string, rs models.RuleSet, expectedVersion int64) error
}

// StoreConfig configures the rule store
type StoreConfig struct {
	MaxRetries int
}

// DefaultStoreConfig returns sensible defaults
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{MaxRetries: 3}
}

// Store serializes rule mutation per tenant on top of the repository's
// compare-and-swap replace.
type Store struct {
	repo       Repository
	logger     ectologger.Logger
	maxRetries int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a new rule store
func NewStore(repo Repository, logger ectologger.Logger, config StoreConfig) *Store {
	return &Store{
		repo:       repo,
		logger:     logger,
		maxRetries: config.MaxRetries,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Get reads the tenant's active rule set.
func (s *Store) Get(ctx context.Context, tenantID string) (models.RuleSet, error) {
	ctx, span := tracing.StartSpan(ctx, "rules.Store.Get")
	defer span.End()

	return s.repo.Get(ctx, tenantID)
}

// Replace swaps the tenant's full rule set. expectedVersion must match the
// stored version or ErrVersionConflict is returned.
func (s *Store) Replace(ctx context.Context, tenantID string, rs models.RuleSet, expectedVersion int64) error {
	ctx, span := tracing.StartSpan(ctx, "rules.Store.Replace")
	defer span.End()

	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.Replace(ctx, tenantID, rs, expectedVersion)
}

// ApplyEdit folds a single edit into the tenant's rule set through the
// read-merge-replace cycle, retrying on version conflict. Returns the rule
// set that was stored.
func (s *Store) ApplyEdit(ctx context.Context, tenantID string, edit models.RuleEdit) (models.RuleSet, error) {
	ctx, span := tracing.StartSpan(ctx, "rules.Store.ApplyEdit")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "ApplyEdit",
		"tenant_id": tenantID,
	})

	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		current, err := s.repo.Get(ctx, tenantID)
		if err != nil {
			return models.RuleSet{}, err
		}

		merged := models.ApplyRuleEdit(current, edit)

		err = s.repo.Replace(ctx, tenantID, merged, current.Version)
		if err == nil {
			merged.Version = current.Version + 1
			return merged, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return models.RuleSet{}, err
		}

		lastErr = err
		log.WithFields(map[string]any{"attempt": attempt + 1}).Warn("Rule set version conflict, retrying")
	}

	return models.RuleSet{}, lastErr
}

func (s *Store) tenantLock(tenantID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[tenantID] = lock
	}
	return lock
}

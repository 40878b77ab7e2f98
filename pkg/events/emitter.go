// Package events handles event emission for mapping lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Jhojannt/mapping-repo/pkg/kafka"
	"github.com/Jhojannt/mapping-repo/pkg/models"
	"github.com/Jhojannt/mapping-repo/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes mapping lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// BatchCompleted emits a batch completion event carrying the batch summary.
func (e *Emitter) BatchCompleted(ctx context.Context, tenantID string, summary models.BatchSummary) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.BatchCompleted")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"summary":        summary,
	})

	event := &kafka.MappingEvent{
		EventType: "mapping.batch.completed",
		TenantID:  tenantID,
		Key:       summary.BatchID,
		Data:      data,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit mapping.batch.completed event")
		return err
	}

	return nil
}

// RulesUpdated emits a rule set change event.
func (e *Emitter) RulesUpdated(ctx context.Context, tenantID string, version int64) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.RulesUpdated")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"version":        version,
	})

	event := &kafka.MappingEvent{
		EventType: "mapping.rules.updated",
		TenantID:  tenantID,
		Key:       tenantID,
		Data:      data,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit mapping.rules.updated event")
		return err
	}

	return nil
}

// StagingCreated emits an event for a new staging catalog entry.
func (e *Emitter) StagingCreated(ctx context.Context, tenantID string, attrs models.CatalogAttributes) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.StagingCreated")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"catalog_id":     models.StagingCatalogID,
		"attributes":     attrs,
	})

	event := &kafka.MappingEvent{
		EventType: "mapping.staging.created",
		TenantID:  tenantID,
		Key:       tenantID,
		Data:      data,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit mapping.staging.created event")
		return err
	}

	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// AuditEventRepositoryImpl implements the audit.Recorder and audit.Reader
// interfaces
type AuditEventRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewAuditEventRepository creates a new audit event repository instance
func NewAuditEventRepository(db *gorm.DB, logger logger.Interface) *AuditEventRepositoryImpl {
	return &AuditEventRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Record appends one event to the audit trail
func (r *AuditEventRepositoryImpl) Record(ctx context.Context, event audit.Event) error {
	var details datatypes.JSON
	if len(event.Details) > 0 {
		raw, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		details = datatypes.JSON(raw)
	}

	model := &models.AuditEventModel{
		ActorID:      event.ActorID,
		Action:       event.Action,
		ResourceKind: event.ResourceKind,
		ResourceID:   event.ResourceID,
		Reason:       event.Reason,
		Details:      details,
		CreatedAt:    event.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to record audit event",
			"actor_id", event.ActorID,
			"action", event.Action,
			"error", err)
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// ListForResource returns the audit trail for one resource
func (r *AuditEventRepositoryImpl) ListForResource(ctx context.Context, resourceKind string, resourceID uint, author audit.AuthorFilter, idAfter uint, offset, limit int, sortAsc bool) ([]audit.Event, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditEventModel{}).
		Where("resource_kind = ? AND resource_id = ?", resourceKind, resourceID)

	switch author.Kind {
	case audit.AuthorFilterNone:
		query = query.Where("actor_id = 0")
	case audit.AuthorFilterAny:
		query = query.Where("actor_id <> 0")
	case audit.AuthorFilterID:
		query = query.Where("actor_id = ?", author.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count audit events", "error", err)
		return nil, 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	order := "id DESC"
	if sortAsc {
		order = "id ASC"
	}

	// Keyset pagination replaces the offset pair when a cursor is given.
	if idAfter > 0 {
		if sortAsc {
			query = query.Where("id > ?", idAfter)
		} else {
			query = query.Where("id < ?", idAfter)
		}
		offset = 0
	}

	var rows []models.AuditEventModel
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list audit events", "error", err)
		return nil, 0, fmt.Errorf("failed to list audit events: %w", err)
	}

	events := make([]audit.Event, len(rows))
	for i, row := range rows {
		var details map[string]any
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &details); err != nil {
				r.logger.Errorw("failed to unmarshal audit details", "id", row.ID, "error", err)
				return nil, 0, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		events[i] = audit.Event{
			ActorID:      row.ActorID,
			Action:       row.Action,
			ResourceKind: row.ResourceKind,
			ResourceID:   row.ResourceID,
			Reason:       row.Reason,
			Details:      details,
			CreatedAt:    row.CreatedAt,
		}
	}
	return events, total, nil
}

package persistence

import (
	"context"

	"github.com/farmadist/backend/internal/domain/audit"
	"gorm.io/gorm"
)

// GormAuditRepository appends audit events to the audit_events table and reads them back
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends one event
func (r *GormAuditRepository) Record(ctx context.Context, event audit.Event) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

// List returns events matching the filter
func (r *GormAuditRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&audit.Event{})
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []audit.Event
	if err := paginate(query, filter.Filter, AuditEventSortFields, "occurred_at").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

var (
	_ audit.Sink       = (*GormAuditRepository)(nil)
	_ audit.Repository = (*GormAuditRepository)(nil)
)

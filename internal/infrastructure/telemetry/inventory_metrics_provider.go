package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider against the products table.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// CountBelowStock returns how many products hold fewer than threshold units.
func (p *GormInventoryMetricsProvider) CountBelowStock(ctx context.Context, threshold int64) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("stock < ?", threshold).
		Count(&count).Error
	return count, err
}

// CountExpiringBefore returns how many in-stock products expire before the given time.
func (p *GormInventoryMetricsProvider) CountExpiringBefore(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("stock > 0 AND expiry_date < ?", before).
		Count(&count).Error
	return count, err
}

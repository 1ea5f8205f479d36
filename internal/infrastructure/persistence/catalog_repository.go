package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogRepository implements catalog.Catalog and catalog.ProductQuery using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// GetProduct finds a product by ID
func (r *GormCatalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateFindError(err, "product", id)
	}
	return &product, nil
}

// GetSupplier finds a supplier by ID
func (r *GormCatalogRepository) GetSupplier(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	var supplier catalog.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, translateFindError(err, "supplier", id)
	}
	return &supplier, nil
}

// GetClient finds a client by ID
func (r *GormCatalogRepository) GetClient(ctx context.Context, id uuid.UUID) (*catalog.Client, error) {
	var client catalog.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, translateFindError(err, "client", id)
	}
	return &client, nil
}

// FindBelowStock returns products whose stock is strictly under threshold
func (r *GormCatalogRepository) FindBelowStock(ctx context.Context, threshold int64, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("stock < ?", threshold)
	return r.findProducts(query, filter, "stock")
}

// FindExpiringBefore returns products expiring before the given date
func (r *GormCatalogRepository) FindExpiringBefore(ctx context.Context, before time.Time, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("expiry_date < ?", before)
	return r.findProducts(query, filter, "expiry_date")
}

func (r *GormCatalogRepository) findProducts(query *gorm.DB, filter shared.Filter, defaultSort string) ([]catalog.Product, int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	if err := paginate(query, filter, ProductSortFields, defaultSort).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// translateFindError turns a missing row into a typed NotFoundError
func translateFindError(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}

var (
	_ catalog.Catalog      = (*GormCatalogRepository)(nil)
	_ catalog.ProductQuery = (*GormCatalogRepository)(nil)
)

package persistence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements inventory.StockRepository.
//
// Every mutation is one conditional UPDATE. The WHERE clause carries the
// guard, so the database applies check and write atomically and a failed
// guard touches no row.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// Lock loads the product with SELECT ... FOR UPDATE.
// SQLite has no row locks; its single connection already serializes writers.
func (r *GormStockRepository) Lock(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	query := r.db.WithContext(ctx)
	if !isSQLite(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product catalog.Product
	if err := query.First(&product, "id = ?", productID).Error; err != nil {
		return nil, translateFindError(err, "product", productID)
	}
	return &product, nil
}

// Increase adds qty units while the result still fits in the stock column
func (r *GormStockRepository) Increase(ctx context.Context, productID uuid.UUID, qty int64) (*inventory.StockLevel, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND stock <= ?", productID, int64(math.MaxInt64)-qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		product, err := r.current(ctx, productID)
		if err != nil {
			return nil, err
		}
		return nil, shared.NewValidationError("quantity", fmt.Sprintf("adding %d units to %d would overflow stock", qty, product.Stock))
	}
	return r.levelAfter(ctx, productID, -qty)
}

// Decrease removes qty units only while stock >= qty
func (r *GormStockRepository) Decrease(ctx context.Context, productID uuid.UUID, qty int64) (*inventory.StockLevel, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// The guard failed: tell a missing product apart from a short one.
		product, err := r.current(ctx, productID)
		if err != nil {
			return nil, err
		}
		return nil, &shared.InsufficientStockError{
			ProductID:   productID.String(),
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   qty,
		}
	}
	return r.levelAfter(ctx, productID, qty)
}

// levelAfter reads the row the current transaction just wrote.
// delta is what has to be added back to reach the previous stock.
func (r *GormStockRepository) levelAfter(ctx context.Context, productID uuid.UUID, delta int64) (*inventory.StockLevel, error) {
	product, err := r.current(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &inventory.StockLevel{
		ProductID:   productID,
		ProductName: product.Name,
		Previous:    product.Stock + delta,
		Current:     product.Stock,
	}, nil
}

func (r *GormStockRepository) current(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Select("id", "name", "stock").
		First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, translateFindError(err, "product", productID)
	}
	return &product, nil
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)

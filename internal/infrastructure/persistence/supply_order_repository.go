package persistence

import (
	"context"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSupplyOrderRepository implements trade.SupplyOrderRepository using GORM.
// Lines live in their own table keyed by order id and are written and read explicitly.
type GormSupplyOrderRepository struct {
	db *gorm.DB
}

// NewGormSupplyOrderRepository creates a new GormSupplyOrderRepository
func NewGormSupplyOrderRepository(db *gorm.DB) *GormSupplyOrderRepository {
	return &GormSupplyOrderRepository{db: db}
}

// Create inserts the header and every line
func (r *GormSupplyOrderRepository) Create(ctx context.Context, order *trade.SupplyOrder) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(order).Error; err != nil {
		return err
	}
	if len(order.Lines) == 0 {
		return nil
	}
	return db.Create(&order.Lines).Error
}

// FindByID loads the header and its lines
func (r *GormSupplyOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SupplyOrder, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads the order holding a row lock on the header
func (r *GormSupplyOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SupplyOrder, error) {
	query := r.db.WithContext(ctx)
	if !isSQLite(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(ctx, query, id)
}

func (r *GormSupplyOrderRepository) find(ctx context.Context, query *gorm.DB, id uuid.UUID) (*trade.SupplyOrder, error) {
	var order trade.SupplyOrder
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		return nil, translateFindError(err, "supply order", id)
	}

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("line_no ASC").
		Find(&order.Lines).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus writes the new status only if the stored status still equals from
func (r *GormSupplyOrderRepository) UpdateStatus(ctx context.Context, order *trade.SupplyOrder, from trade.SupplyOrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&trade.SupplyOrder{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]any{
			"status":      order.Status,
			"shipped_at":  order.ShippedAt,
			"received_at": order.ReceivedAt,
			"version":     order.Version,
			"updated_at":  order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&trade.SupplyOrder{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.NewNotFoundError("supply order", order.ID)
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// List returns headers with their lines
func (r *GormSupplyOrderRepository) List(ctx context.Context, filter trade.SupplyOrderFilter) ([]trade.SupplyOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.SupplyOrder{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []trade.SupplyOrder
	if err := paginate(query, filter.Filter, SupplyOrderSortFields, "created_at").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return orders, total, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	var lines []trade.SupplyOrderLine
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", ids).
		Order("order_id, line_no ASC").
		Find(&lines).Error; err != nil {
		return nil, 0, err
	}

	byOrder := make(map[uuid.UUID][]trade.SupplyOrderLine, len(orders))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
	}
	return orders, total, nil
}

var _ trade.SupplyOrderRepository = (*GormSupplyOrderRepository)(nil)

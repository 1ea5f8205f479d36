package persistence

import (
	"context"

	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements trade.SaleRepository using GORM.
// Sales are insert-only; there is no update path.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts the sale header and its price-snapshot lines
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(sale).Error; err != nil {
		return err
	}
	if len(sale.Lines) == 0 {
		return nil
	}
	return db.Create(&sale.Lines).Error
}

// FindByID loads a sale and its lines
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, translateFindError(err, "sale", id)
	}
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", id).
		Order("line_no ASC").
		Find(&sale.Lines).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns sales with their lines
func (r *GormSaleRepository) List(ctx context.Context, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Sale{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.OperatorID != "" {
		query = query.Where("operator_id = ?", filter.OperatorID)
	}
	if filter.From != nil {
		query = query.Where("sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sold_at < ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []trade.Sale
	if err := paginate(query, filter.Filter, SaleSortFields, "sold_at").Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	if len(sales) == 0 {
		return sales, total, nil
	}

	ids := make([]uuid.UUID, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
	}
	var lines []trade.SaleLine
	if err := r.db.WithContext(ctx).
		Where("sale_id IN ?", ids).
		Order("sale_id, line_no ASC").
		Find(&lines).Error; err != nil {
		return nil, 0, err
	}

	bySale := make(map[uuid.UUID][]trade.SaleLine, len(sales))
	for _, l := range lines {
		bySale[l.SaleID] = append(bySale[l.SaleID], l)
	}
	for i := range sales {
		sales[i].Lines = bySale[sales[i].ID]
	}
	return sales, total, nil
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)

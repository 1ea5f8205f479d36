package catalog

import (
	"strings"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable pharmaceutical item.
// Stock is owned by the stock ledger and is never assigned directly by callers.
type Product struct {
	shared.BaseAggregateRoot
	Name         string          `gorm:"type:varchar(200);not null"`
	Presentation string          `gorm:"type:varchar(100)"`
	Description  string          `gorm:"type:text"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock        int64           `gorm:"not null;default:0;check:stock >= 0"`
	ExpiryDate   time.Time       `gorm:"type:date;not null;index"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product with an opening stock level
func NewProduct(name, presentation string, unitPrice decimal.Decimal, openingStock int64, expiry time.Time) (*Product, error) {
	v := &shared.ValidationError{}
	if strings.TrimSpace(name) == "" {
		v.Add("name", "is required")
	}
	if unitPrice.IsNegative() {
		v.Add("unit_price", "must not be negative")
	}
	if openingStock < 0 {
		v.Add("stock", "must not be negative")
	}
	if expiry.IsZero() {
		v.Add("expiry_date", "is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Presentation:      presentation,
		UnitPrice:         unitPrice.Round(valueobject.MoneyScale),
		Stock:             openingStock,
		ExpiryDate:        expiry,
	}, nil
}

// Price returns the current unit price as Money
func (p *Product) Price() valueobject.Money {
	return valueobject.NewMoneyPEN(p.UnitPrice)
}

// HasStock reports whether qty units can be taken right now
func (p *Product) HasStock(qty int64) bool {
	return p.Stock >= qty
}

// IsBelow reports whether stock is strictly under the threshold
func (p *Product) IsBelow(threshold int64) bool {
	return p.Stock < threshold
}

// ExpiresBefore reports whether the product expires before the given instant
func (p *Product) ExpiresBefore(t time.Time) bool {
	return p.ExpiryDate.Before(t)
}

// DisplayName joins name and presentation, e.g. "Amoxicilina 500mg x 12"
func (p *Product) DisplayName() string {
	if p.Presentation == "" {
		return p.Name
	}
	return p.Name + " " + p.Presentation
}

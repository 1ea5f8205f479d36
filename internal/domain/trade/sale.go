package trade

import (
	"fmt"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the sales tax applied when nothing is configured
var DefaultTaxRate = decimal.RequireFromString("0.18")

// SaleLine is an immutable line of a sale, carrying the price in force at sale time
type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_sale_line,priority:1"`
	LineNo      int             `gorm:"not null;uniqueIndex:idx_sale_line,priority:2"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null;check:quantity >= 1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// SaleLineInput is a requested line before pricing
type SaleLineInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// PricedLine is a requested line with the unit price snapshot taken from the catalog
type PricedLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// Totals is the money breakdown of a sale
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices a set of lines.
// subtotal = sum(unit price x quantity), tax = subtotal x rate,
// total = round_half_up(subtotal + tax, 2). Subtotal and tax are reported at
// scale 2 for display; the total is computed from the unrounded values.
func ComputeTotals(lines []PricedLine, taxRate decimal.Decimal) Totals {
	subtotal := valueobject.Zero(valueobject.DefaultCurrency)
	for _, l := range lines {
		// same currency on both sides, Add cannot fail
		subtotal, _ = subtotal.Add(valueobject.NewMoneyPEN(l.UnitPrice).MultiplyByInt(l.Quantity))
	}
	tax := subtotal.Multiply(taxRate)
	total, _ := subtotal.Add(tax)

	return Totals{
		Subtotal: subtotal.RoundHalfUp(valueobject.MoneyScale).Amount(),
		Tax:      tax.RoundHalfUp(valueobject.MoneyScale).Amount(),
		Total:    total.RoundHalfUp(valueobject.MoneyScale).Amount(),
	}
}

// ValidateSaleLines checks the request shape before any lookup happens
func ValidateSaleLines(clientID uuid.UUID, inputs []SaleLineInput) error {
	v := &shared.ValidationError{}
	if clientID == uuid.Nil {
		v.Add("client_id", "is required")
	}
	if len(inputs) == 0 {
		v.Add("lines", "must contain at least one line")
	}
	for i, in := range inputs {
		if in.ProductID == uuid.Nil {
			v.Add(fmt.Sprintf("lines[%d].product_id", i), "is required")
		}
		if in.Quantity < 1 {
			v.Add(fmt.Sprintf("lines[%d].quantity", i), "must be at least 1")
		}
	}
	return v.Err()
}

// Sale is a completed, immutable sale to a client
type Sale struct {
	shared.BaseAggregateRoot
	ClientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperatorID string          `gorm:"type:varchar(50);not null;index"`
	SoldAt     time.Time       `gorm:"not null;index"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	Tax        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Lines      []SaleLine      `gorm:"-"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale builds a priced sale. Lines must already carry their price snapshot.
func NewSale(clientID uuid.UUID, operatorID string, lines []PricedLine, taxRate decimal.Decimal) (*Sale, error) {
	inputs := make([]SaleLineInput, len(lines))
	for i, l := range lines {
		inputs[i] = SaleLineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if err := ValidateSaleLines(clientID, inputs); err != nil {
		return nil, err
	}
	if taxRate.IsNegative() {
		return nil, shared.NewValidationError("tax_rate", "must not be negative")
	}
	if err := shared.ValidateActorID(operatorID); err != nil {
		return nil, err
	}

	totals := ComputeTotals(lines, taxRate)
	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		OperatorID:        actorOrSystem(operatorID),
		Subtotal:          totals.Subtotal,
		TaxRate:           taxRate,
		Tax:               totals.Tax,
		Total:             totals.Total,
	}
	sale.SoldAt = sale.CreatedAt
	sale.Lines = make([]SaleLine, 0, len(lines))
	for i, l := range lines {
		sale.Lines = append(sale.Lines, SaleLine{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			LineNo:      i + 1,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).Round(valueobject.MoneyScale),
		})
	}

	sale.AddDomainEvent(NewSaleRegisteredEvent(sale))
	return sale, nil
}

// TotalUnits sums the quantities of all lines
func (s *Sale) TotalUnits() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.Quantity
	}
	return total
}

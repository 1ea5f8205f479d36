package trade

import (
	"time"

	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// ============================================================================
// Supply Order DTOs
// ============================================================================

// CreateSupplyOrderRequest is the input for creating a supply order
type CreateSupplyOrderRequest struct {
	SupplierID uuid.UUID
	Lines      []SupplyOrderLineRequest
	ActorID    string
}

// SupplyOrderLineRequest is one requested line
type SupplyOrderLineRequest struct {
	ProductID uuid.UUID
	Quantity  int64
}

// AdvanceSupplyOrderRequest asks for a status transition
type AdvanceSupplyOrderRequest struct {
	OrderID uuid.UUID
	Status  string
	ActorID string
}

// SupplyOrderListFilter filters supply order listings
type SupplyOrderListFilter struct {
	Status     string
	SupplierID *uuid.UUID
	Page       int
	PageSize   int
	OrderDir   string
}

// SupplyOrderResponse is the full view of a supply order
type SupplyOrderResponse struct {
	ID         uuid.UUID                 `json:"id"`
	SupplierID uuid.UUID                 `json:"supplier_id"`
	Status     string                    `json:"status"`
	CreatedBy  string                    `json:"created_by"`
	TotalUnits int64                     `json:"total_units"`
	Lines      []SupplyOrderLineResponse `json:"lines"`
	CreatedAt  time.Time                 `json:"created_at"`
	ShippedAt  *time.Time                `json:"shipped_at,omitempty"`
	ReceivedAt *time.Time                `json:"received_at,omitempty"`
	Version    int                       `json:"version"`
}

// SupplyOrderLineResponse is one line of a supply order
type SupplyOrderLineResponse struct {
	LineNo    int       `json:"line_no"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// ToSupplyOrderResponse converts a domain order to its response
func ToSupplyOrderResponse(o *trade.SupplyOrder) SupplyOrderResponse {
	lines := make([]SupplyOrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = SupplyOrderLineResponse{LineNo: l.LineNo, ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return SupplyOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Status:     o.Status.String(),
		CreatedBy:  o.CreatedBy,
		TotalUnits: o.TotalUnits(),
		Lines:      lines,
		CreatedAt:  o.CreatedAt,
		ShippedAt:  o.ShippedAt,
		ReceivedAt: o.ReceivedAt,
		Version:    o.Version,
	}
}

// ============================================================================
// Sale DTOs
// ============================================================================

// RegisterSaleRequest is the input for registering a sale
type RegisterSaleRequest struct {
	ClientID   uuid.UUID
	Lines      []SaleLineRequest
	OperatorID string
}

// SaleLineRequest is one requested sale line
type SaleLineRequest struct {
	ProductID uuid.UUID
	Quantity  int64
}

// SaleListFilter filters sale listings
type SaleListFilter struct {
	ClientID   *uuid.UUID
	OperatorID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
	OrderDir   string
}

// SaleResponse is the full view of a sale
type SaleResponse struct {
	ID         uuid.UUID          `json:"id"`
	ClientID   uuid.UUID          `json:"client_id"`
	OperatorID string             `json:"operator_id"`
	SoldAt     time.Time          `json:"sold_at"`
	Subtotal   string             `json:"subtotal"`
	TaxRate    string             `json:"tax_rate"`
	Tax        string             `json:"tax"`
	Total      string             `json:"total"`
	Lines      []SaleLineResponse `json:"lines"`
}

// SaleLineResponse is one line of a sale with its price snapshot
type SaleLineResponse struct {
	LineNo      int       `json:"line_no"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Amount      string    `json:"amount"`
}

// ToSaleResponse converts a domain sale to its response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	lines := make([]SaleLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = SaleLineResponse{
			LineNo:      l.LineNo,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Amount:      l.Amount.StringFixed(2),
		}
	}
	return SaleResponse{
		ID:         s.ID,
		ClientID:   s.ClientID,
		OperatorID: s.OperatorID,
		SoldAt:     s.SoldAt,
		Subtotal:   s.Subtotal.StringFixed(2),
		TaxRate:    s.TaxRate.String(),
		Tax:        s.Tax.StringFixed(2),
		Total:      s.Total.StringFixed(2),
		Lines:      lines,
	}
}

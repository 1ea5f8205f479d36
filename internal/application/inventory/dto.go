package inventory

import (
	"time"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// AdjustStockRequest is a manual correction of a product's stock
type AdjustStockRequest struct {
	ProductID uuid.UUID
	// Delta is signed: positive adds units, negative removes them
	Delta   int64
	Reason  string
	ActorID string
}

// StockChangeResponse is the result of a stock movement
type StockChangeResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Direction   string    `json:"direction"`
	Reason      string    `json:"reason"`
	Quantity    int64     `json:"quantity"`
	Previous    int64     `json:"previous_stock"`
	Current     int64     `json:"current_stock"`
	ActorID     string    `json:"actor_id"`
}

// ToStockChangeResponse converts a domain change to its response
func ToStockChangeResponse(c inventory.StockChange) StockChangeResponse {
	return StockChangeResponse{
		ProductID:   c.ProductID,
		ProductName: c.ProductName,
		Direction:   string(c.Direction),
		Reason:      string(c.Reason),
		Quantity:    c.Quantity,
		Previous:    c.Previous,
		Current:     c.Current,
		ActorID:     c.ActorID,
	}
}

// ProductAlertResponse is a product flagged by an inventory alert
type ProductAlertResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	Presentation string    `json:"presentation,omitempty"`
	Stock        int64     `json:"stock"`
	UnitPrice    string    `json:"unit_price"`
	ExpiryDate   string    `json:"expiry_date"`
	DaysToExpiry int       `json:"days_to_expiry"`
}

// ToProductAlertResponse converts a product to an alert row relative to now
func ToProductAlertResponse(p catalog.Product, now time.Time) ProductAlertResponse {
	return ProductAlertResponse{
		ProductID:    p.ID,
		Name:         p.Name,
		Presentation: p.Presentation,
		Stock:        p.Stock,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		ExpiryDate:   p.ExpiryDate.Format(time.DateOnly),
		DaysToExpiry: int(p.ExpiryDate.Sub(now).Hours() / 24),
	}
}

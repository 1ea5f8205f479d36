package inventory

import (
	"fmt"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Direction tells whether a stock movement adds or removes units
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// Reason is the business cause recorded with every stock movement
type Reason string

const (
	ReasonOrderReceived    Reason = "ORDER_RECEIVED"
	ReasonSale             Reason = "SALE"
	ReasonManualAdjustment Reason = "MANUAL_ADJUSTMENT"
)

// SystemActor is recorded when no operator is attached to a movement
const SystemActor = "SYSTEM"

// StockLevel is the before/after view of a single guarded mutation
type StockLevel struct {
	ProductID   uuid.UUID
	ProductName string
	Previous    int64
	Current     int64
}

// StockChange describes one applied movement
type StockChange struct {
	StockLevel
	Quantity  int64
	Direction Direction
	Reason    Reason
	ActorID   string
}

// Detail renders the audit detail line for this movement
func (c StockChange) Detail() string {
	return fmt.Sprintf("direction=%s reason=%s product=%s quantity=%d previous=%d current=%d",
		c.Direction, c.Reason, c.ProductName, c.Quantity, c.Previous, c.Current)
}

// ValidateQuantity rejects non-positive movement quantities
func ValidateQuantity(qty int64) error {
	if qty < 1 {
		return shared.NewValidationError("quantity", "must be at least 1")
	}
	return nil
}

// ValidateReason rejects an empty reason
func ValidateReason(reason Reason) error {
	if reason == "" {
		return shared.NewValidationError("reason", "is required")
	}
	return nil
}

// Actor normalizes an empty actor to SystemActor
func Actor(actorID string) string {
	if actorID == "" {
		return SystemActor
	}
	return actorID
}

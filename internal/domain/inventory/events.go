package inventory

import (
	"github.com/farmadist/backend/internal/domain/shared"
)

// Event types
const (
	EventTypeStockChanged        = "StockChanged"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// AggregateTypeProduct is the aggregate name used by stock events
const AggregateTypeProduct = "Product"

// StockChangedEvent is published after a movement commits
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	Direction   Direction `json:"direction"`
	Reason      Reason    `json:"reason"`
	Previous    int64     `json:"previous"`
	Current     int64     `json:"current"`
	ActorID     string    `json:"actor_id"`
}

// NewStockChangedEvent creates a StockChangedEvent
func NewStockChangedEvent(c StockChange) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeProduct, c.ProductID),
		ProductName:     c.ProductName,
		Quantity:        c.Quantity,
		Direction:       c.Direction,
		Reason:          c.Reason,
		Previous:        c.Previous,
		Current:         c.Current,
		ActorID:         c.ActorID,
	}
}

// StockBelowThresholdEvent is raised when an outbound movement crosses the low-stock threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductName string `json:"product_name"`
	Current     int64  `json:"current"`
	Threshold   int64  `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a StockBelowThresholdEvent
func NewStockBelowThresholdEvent(level StockLevel, threshold int64) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeProduct, level.ProductID),
		ProductName:     level.ProductName,
		Current:         level.Current,
		Threshold:       threshold,
	}
}

// CrossedBelow reports whether a movement took stock from >= threshold to < threshold
func (l StockLevel) CrossedBelow(threshold int64) bool {
	return l.Previous >= threshold && l.Current < threshold
}

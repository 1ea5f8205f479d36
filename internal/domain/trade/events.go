package trade

import (
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeSupplyOrderCreated       = "SupplyOrderCreated"
	EventTypeSupplyOrderStatusChanged = "SupplyOrderStatusChanged"
	EventTypeSaleRegistered           = "SaleRegistered"
)

// Aggregate types
const (
	AggregateTypeSupplyOrder = "SupplyOrder"
	AggregateTypeSale        = "Sale"
)

// SupplyOrderCreatedEvent is raised when an order is created
type SupplyOrderCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
	LineCount  int       `json:"line_count"`
	TotalUnits int64     `json:"total_units"`
	CreatedBy  string    `json:"created_by"`
}

// NewSupplyOrderCreatedEvent creates a SupplyOrderCreatedEvent
func NewSupplyOrderCreatedEvent(o *SupplyOrder) *SupplyOrderCreatedEvent {
	return &SupplyOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplyOrderCreated, AggregateTypeSupplyOrder, o.ID),
		SupplierID:      o.SupplierID,
		LineCount:       len(o.Lines),
		TotalUnits:      o.TotalUnits(),
		CreatedBy:       o.CreatedBy,
	}
}

// SupplyOrderStatusChangedEvent is raised on every accepted transition
type SupplyOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	From    SupplyOrderStatus `json:"from"`
	To      SupplyOrderStatus `json:"to"`
	ActorID string            `json:"actor_id"`
}

// NewSupplyOrderStatusChangedEvent creates a SupplyOrderStatusChangedEvent
func NewSupplyOrderStatusChangedEvent(o *SupplyOrder, from SupplyOrderStatus, actorID string) *SupplyOrderStatusChangedEvent {
	return &SupplyOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplyOrderStatusChanged, AggregateTypeSupplyOrder, o.ID),
		From:            from,
		To:              o.Status,
		ActorID:         actorID,
	}
}

// SaleRegisteredEvent is raised when a sale commits
type SaleRegisteredEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID       `json:"client_id"`
	OperatorID string          `json:"operator_id"`
	Total      decimal.Decimal `json:"total"`
	TotalUnits int64           `json:"total_units"`
}

// NewSaleRegisteredEvent creates a SaleRegisteredEvent
func NewSaleRegisteredEvent(s *Sale) *SaleRegisteredEvent {
	return &SaleRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRegistered, AggregateTypeSale, s.ID),
		ClientID:        s.ClientID,
		OperatorID:      s.OperatorID,
		Total:           s.Total,
		TotalUnits:      s.TotalUnits(),
	}
}

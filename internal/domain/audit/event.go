package audit

import (
	"context"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Operation names the kind of audited action
type Operation string

const (
	OperationStockMovement     Operation = "STOCK_MOVEMENT"
	OperationOrderCreated      Operation = "ORDER_CREATED"
	OperationOrderStatusChange Operation = "ORDER_STATUS_CHANGED"
	OperationSaleRegistered    Operation = "SALE_REGISTERED"
)

// Entity types that appear in the audit trail
const (
	EntityProduct     = "Product"
	EntitySupplyOrder = "SupplyOrder"
	EntitySale        = "Sale"
)

// Event is one append-only audit record
type Event struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Operation  Operation `gorm:"type:varchar(50);not null;index" json:"operation"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"type:uuid;index:idx_audit_entity,priority:2" json:"entity_id"`
	ActorID    string    `gorm:"type:varchar(50);not null;index" json:"actor_id"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	Detail     string    `gorm:"type:text" json:"detail"`
}

// TableName returns the table name for GORM
func (Event) TableName() string {
	return "audit_events"
}

// NewEvent stamps a new audit event. An empty actor is recorded as SYSTEM.
func NewEvent(op Operation, entityType string, entityID uuid.UUID, actorID, detail string) Event {
	if actorID == "" {
		actorID = "SYSTEM"
	}
	return Event{
		ID:         uuid.New(),
		Operation:  op,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}
}

// Sink receives audit events. Delivery is best effort: callers log and drop errors.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// Filter narrows audit queries
type Filter struct {
	shared.Filter
	EntityType string
	EntityID   *uuid.UUID
	ActorID    string
	From       *time.Time
	To         *time.Time
}

// Repository reads the persisted audit trail
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Event, int64, error)
}

package trade

import (
	"fmt"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplyOrderStatus represents the status of a replenishment order
type SupplyOrderStatus string

const (
	SupplyOrderStatusPending  SupplyOrderStatus = "PENDING"
	SupplyOrderStatusShipped  SupplyOrderStatus = "SHIPPED"
	SupplyOrderStatusReceived SupplyOrderStatus = "RECEIVED"
)

// IsValid checks if the status is a known value
func (s SupplyOrderStatus) IsValid() bool {
	switch s {
	case SupplyOrderStatusPending, SupplyOrderStatusShipped, SupplyOrderStatusReceived:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s SupplyOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s SupplyOrderStatus) IsTerminal() bool {
	return s == SupplyOrderStatusReceived
}

// CanTransitionTo allows exactly one forward step: PENDING -> SHIPPED -> RECEIVED
func (s SupplyOrderStatus) CanTransitionTo(target SupplyOrderStatus) bool {
	switch s {
	case SupplyOrderStatusPending:
		return target == SupplyOrderStatusShipped
	case SupplyOrderStatusShipped:
		return target == SupplyOrderStatusReceived
	}
	return false
}

// ParseSupplyOrderStatus converts user input into a status
func ParseSupplyOrderStatus(raw string) (SupplyOrderStatus, error) {
	s := SupplyOrderStatus(raw)
	if !s.IsValid() {
		return "", shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	return s, nil
}

// SupplyOrderLine is one product line of a supply order.
// Lines are stored keyed by order id and loaded explicitly by the repository.
type SupplyOrderLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_supply_order_line,priority:1"`
	LineNo    int       `gorm:"not null;uniqueIndex:idx_supply_order_line,priority:2"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int64     `gorm:"not null;check:quantity >= 1"`
}

// TableName returns the table name for GORM
func (SupplyOrderLine) TableName() string {
	return "supply_order_lines"
}

// SupplyOrderLineInput is a requested line before the order exists
type SupplyOrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// SupplyOrder is a replenishment request to a supplier
type SupplyOrder struct {
	shared.BaseAggregateRoot
	SupplierID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status     SupplyOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedBy  string            `gorm:"type:varchar(50);not null"`
	ShippedAt  *time.Time
	ReceivedAt *time.Time
	Lines      []SupplyOrderLine `gorm:"-"`
}

// TableName returns the table name for GORM
func (SupplyOrder) TableName() string {
	return "supply_orders"
}

// NewSupplyOrder creates a PENDING order. Every line needs a product and a quantity of at least 1.
func NewSupplyOrder(supplierID uuid.UUID, inputs []SupplyOrderLineInput, actorID string) (*SupplyOrder, error) {
	v := &shared.ValidationError{}
	if supplierID == uuid.Nil {
		v.Add("supplier_id", "is required")
	}
	if len(inputs) == 0 {
		v.Add("lines", "must contain at least one line")
	}
	if len(actorID) > shared.MaxActorIDLength {
		v.Add("actor_id", fmt.Sprintf("must be at most %d characters", shared.MaxActorIDLength))
	}
	for i, in := range inputs {
		if in.ProductID == uuid.Nil {
			v.Add(fmt.Sprintf("lines[%d].product_id", i), "is required")
		}
		if in.Quantity < 1 {
			v.Add(fmt.Sprintf("lines[%d].quantity", i), "must be at least 1")
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	order := &SupplyOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Status:            SupplyOrderStatusPending,
		CreatedBy:         actorOrSystem(actorID),
	}
	order.Lines = make([]SupplyOrderLine, 0, len(inputs))
	for i, in := range inputs {
		order.Lines = append(order.Lines, SupplyOrderLine{
			ID:        uuid.New(),
			OrderID:   order.ID,
			LineNo:    i + 1,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
		})
	}

	order.AddDomainEvent(NewSupplyOrderCreatedEvent(order))
	return order, nil
}

// AdvanceTo moves the order one step forward. Any other move returns
// *shared.InvalidTransitionError and leaves the order unchanged.
func (o *SupplyOrder) AdvanceTo(target SupplyOrderStatus, actorID string) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", fmt.Sprintf("unknown status %q", target))
	}
	if err := shared.ValidateActorID(actorID); err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(target) {
		return &shared.InvalidTransitionError{From: o.Status.String(), To: target.String()}
	}

	from := o.Status
	now := time.Now().UTC()
	o.Status = target
	switch target {
	case SupplyOrderStatusShipped:
		o.ShippedAt = &now
	case SupplyOrderStatusReceived:
		o.ReceivedAt = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewSupplyOrderStatusChangedEvent(o, from, actorOrSystem(actorID)))
	return nil
}

// TotalUnits sums the quantities of all lines
func (o *SupplyOrder) TotalUnits() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.Quantity
	}
	return total
}

func actorOrSystem(actorID string) string {
	if actorID == "" {
		return "SYSTEM"
	}
	return actorID
}

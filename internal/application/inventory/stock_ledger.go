package inventory

import (
	"context"
	"errors"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	"github.com/farmadist/backend/internal/application/uow"
	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLowStockThreshold is used when no threshold is configured
const DefaultLowStockThreshold int64 = 10

// StockLedger is the single owner of product stock.
//
// Increase and Decrease run in their own transaction. IncreaseIn and DecreaseIn
// join a transaction opened by another service; that caller must pass the
// returned changes to Committed once its transaction has committed, so only
// durable movements are audited and published.
type StockLedger struct {
	scope             uow.TransactionScope
	recorder          *auditapp.Recorder
	eventPublisher    shared.EventPublisher
	businessMetrics   *telemetry.BusinessMetrics
	lowStockThreshold int64
	logger            *zap.Logger
}

// NewStockLedger creates a StockLedger
func NewStockLedger(scope uow.TransactionScope, recorder *auditapp.Recorder, logger *zap.Logger) *StockLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLedger{
		scope:             scope,
		recorder:          recorder,
		lowStockThreshold: DefaultLowStockThreshold,
		logger:            logger,
	}
}

// SetEventPublisher sets the event publisher for stock events
func (l *StockLedger) SetEventPublisher(publisher shared.EventPublisher) {
	l.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (l *StockLedger) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	l.businessMetrics = bm
}

// SetLowStockThreshold sets the level under which a StockBelowThreshold event is raised
func (l *StockLedger) SetLowStockThreshold(threshold int64) {
	if threshold > 0 {
		l.lowStockThreshold = threshold
	}
}

// LowStockThreshold returns the configured threshold
func (l *StockLedger) LowStockThreshold() int64 {
	return l.lowStockThreshold
}

// Increase adds qty units to a product in its own transaction
func (l *StockLedger) Increase(ctx context.Context, productID uuid.UUID, qty int64, reason inventory.Reason, actorID string) (*inventory.StockChange, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "increase")
	defer span.End()
	telemetry.SetAttributes(span, "product_id", productID.String(), "quantity", qty, "reason", string(reason))

	var change *inventory.StockChange
	err := l.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		change, err = l.IncreaseIn(ctx, repos, productID, qty, reason, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	l.Committed(ctx, *change)
	return change, nil
}

// Decrease removes qty units from a product in its own transaction
func (l *StockLedger) Decrease(ctx context.Context, productID uuid.UUID, qty int64, reason inventory.Reason, actorID string) (*inventory.StockChange, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "decrease")
	defer span.End()
	telemetry.SetAttributes(span, "product_id", productID.String(), "quantity", qty, "reason", string(reason))

	var change *inventory.StockChange
	err := l.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		change, err = l.DecreaseIn(ctx, repos, productID, qty, reason, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	l.Committed(ctx, *change)
	return change, nil
}

// AdjustStock applies a signed manual correction through Increase or Decrease
func (l *StockLedger) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockChangeResponse, error) {
	if req.ProductID == uuid.Nil {
		return nil, shared.NewValidationError("product_id", "is required")
	}
	if req.Delta == 0 {
		return nil, shared.NewValidationError("delta", "must not be zero")
	}
	if err := shared.ValidateActorID(req.ActorID); err != nil {
		return nil, err
	}
	reason := inventory.Reason(req.Reason)
	if reason == "" {
		reason = inventory.ReasonManualAdjustment
	}

	var (
		change *inventory.StockChange
		err    error
	)
	if req.Delta > 0 {
		change, err = l.Increase(ctx, req.ProductID, req.Delta, reason, req.ActorID)
	} else {
		change, err = l.Decrease(ctx, req.ProductID, -req.Delta, reason, req.ActorID)
	}
	if err != nil {
		return nil, err
	}

	resp := ToStockChangeResponse(*change)
	return &resp, nil
}

// IncreaseIn adds qty units inside the caller's transaction
func (l *StockLedger) IncreaseIn(ctx context.Context, repos uow.Repositories, productID uuid.UUID, qty int64, reason inventory.Reason, actorID string) (*inventory.StockChange, error) {
	if err := validateMovement(qty, reason); err != nil {
		return nil, err
	}

	level, err := repos.Stock().Increase(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	return &inventory.StockChange{
		StockLevel: *level,
		Quantity:   qty,
		Direction:  inventory.DirectionInbound,
		Reason:     reason,
		ActorID:    inventory.Actor(actorID),
	}, nil
}

// DecreaseIn removes qty units inside the caller's transaction.
// Returns *shared.InsufficientStockError, leaving stock unchanged, when fewer than qty units are on hand.
func (l *StockLedger) DecreaseIn(ctx context.Context, repos uow.Repositories, productID uuid.UUID, qty int64, reason inventory.Reason, actorID string) (*inventory.StockChange, error) {
	if err := validateMovement(qty, reason); err != nil {
		return nil, err
	}

	level, err := repos.Stock().Decrease(ctx, productID, qty)
	if err != nil {
		var stockErr *shared.InsufficientStockError
		if errors.As(err, &stockErr) && l.businessMetrics != nil {
			l.businessMetrics.RecordStockRejection(ctx, string(reason))
		}
		return nil, err
	}

	return &inventory.StockChange{
		StockLevel: *level,
		Quantity:   qty,
		Direction:  inventory.DirectionOutbound,
		Reason:     reason,
		ActorID:    inventory.Actor(actorID),
	}, nil
}

// Committed audits, publishes and measures movements that are now durable
func (l *StockLedger) Committed(ctx context.Context, changes ...inventory.StockChange) {
	events := make([]shared.DomainEvent, 0, len(changes))
	for _, c := range changes {
		l.logger.Info("stock updated",
			zap.String("product_id", c.ProductID.String()),
			zap.String("product_name", c.ProductName),
			zap.String("direction", string(c.Direction)),
			zap.String("reason", string(c.Reason)),
			zap.Int64("quantity", c.Quantity),
			zap.Int64("previous", c.Previous),
			zap.Int64("current", c.Current),
			zap.String("actor_id", c.ActorID),
		)

		l.recorder.Record(ctx, audit.NewEvent(audit.OperationStockMovement, audit.EntityProduct, c.ProductID, c.ActorID, c.Detail()))

		if l.businessMetrics != nil {
			l.businessMetrics.RecordStockMovement(ctx, string(c.Direction), string(c.Reason), c.Quantity)
		}

		events = append(events, inventory.NewStockChangedEvent(c))
		if c.Direction == inventory.DirectionOutbound && c.CrossedBelow(l.lowStockThreshold) {
			events = append(events, inventory.NewStockBelowThresholdEvent(c.StockLevel, l.lowStockThreshold))
		}
	}

	if l.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := l.eventPublisher.Publish(ctx, events...); err != nil {
		l.logger.Warn("failed to publish stock events", zap.Error(err))
	}
}

func validateMovement(qty int64, reason inventory.Reason) error {
	if err := inventory.ValidateQuantity(qty); err != nil {
		return err
	}
	return inventory.ValidateReason(reason)
}

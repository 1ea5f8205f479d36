package trade

import (
	"context"
	"fmt"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	"github.com/farmadist/backend/internal/application/uow"
	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/farmadist/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplyOrderService runs the supply order lifecycle.
// Receiving an order credits stock for every line in the same transaction as the status change.
type SupplyOrderService struct {
	scope           uow.TransactionScope
	ledger          *inventoryapp.StockLedger
	recorder        *auditapp.Recorder
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewSupplyOrderService creates a new SupplyOrderService
func NewSupplyOrderService(
	scope uow.TransactionScope,
	ledger *inventoryapp.StockLedger,
	recorder *auditapp.Recorder,
	logger *zap.Logger,
) *SupplyOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplyOrderService{
		scope:    scope,
		ledger:   ledger,
		recorder: recorder,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SupplyOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SupplyOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create validates the supplier and every product, then stores a PENDING order
func (s *SupplyOrderService) Create(ctx context.Context, req CreateSupplyOrderRequest) (*SupplyOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supply_order", "create")
	defer span.End()
	telemetry.SetAttributes(span, "supplier_id", req.SupplierID.String(), "lines_count", len(req.Lines))

	inputs := make([]trade.SupplyOrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		inputs[i] = trade.SupplyOrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	order, err := trade.NewSupplyOrder(req.SupplierID, inputs, req.ActorID)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Catalog().GetSupplier(ctx, req.SupplierID); err != nil {
			return err
		}
		for _, l := range order.Lines {
			if _, err := repos.Catalog().GetProduct(ctx, l.ProductID); err != nil {
				return err
			}
		}
		return repos.SupplyOrders().Create(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("supply order created",
		zap.String("order_id", order.ID.String()),
		zap.String("supplier_id", order.SupplierID.String()),
		zap.Int("lines", len(order.Lines)),
	)
	s.recorder.Record(ctx, audit.NewEvent(audit.OperationOrderCreated, audit.EntitySupplyOrder, order.ID, order.CreatedBy,
		fmt.Sprintf("supplier=%s lines=%d units=%d", order.SupplierID, len(order.Lines), order.TotalUnits())))
	s.publishDomainEvents(ctx, order)

	response := ToSupplyOrderResponse(order)
	return &response, nil
}

// AdvanceState moves an order one step forward.
// SHIPPED -> RECEIVED increases stock by every line quantity with reason ORDER_RECEIVED.
// A rejected transition returns *shared.InvalidTransitionError and changes nothing.
func (s *SupplyOrderService) AdvanceState(ctx context.Context, req AdvanceSupplyOrderRequest) (*SupplyOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supply_order", "advance_state")
	defer span.End()
	telemetry.SetAttributes(span, "order_id", req.OrderID.String(), "target_status", req.Status)

	target, err := trade.ParseSupplyOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var (
		order   *trade.SupplyOrder
		from    trade.SupplyOrderStatus
		changes []inventory.StockChange
	)
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		changes = nil

		var err error
		order, err = repos.SupplyOrders().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.AdvanceTo(target, req.ActorID); err != nil {
			return err
		}
		if err := repos.SupplyOrders().UpdateStatus(ctx, order, from); err != nil {
			return err
		}

		if target != trade.SupplyOrderStatusReceived {
			return nil
		}
		for _, line := range order.Lines {
			change, err := s.ledger.IncreaseIn(ctx, repos, line.ProductID, line.Quantity, inventory.ReasonOrderReceived, req.ActorID)
			if err != nil {
				return fmt.Errorf("receive line %d: %w", line.LineNo, err)
			}
			changes = append(changes, *change)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("supply order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", order.Status.String()),
	)
	s.ledger.Committed(ctx, changes...)
	s.recorder.Record(ctx, audit.NewEvent(audit.OperationOrderStatusChange, audit.EntitySupplyOrder, order.ID, req.ActorID,
		fmt.Sprintf("from=%s to=%s", from, order.Status)))
	s.publishDomainEvents(ctx, order)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderTransition(ctx, order.Status.String(), order.TotalUnits())
	}

	response := ToSupplyOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a supply order with its lines
func (s *SupplyOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*SupplyOrderResponse, error) {
	var order *trade.SupplyOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.SupplyOrders().FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSupplyOrderResponse(order)
	return &response, nil
}

// List retrieves supply orders with filtering and pagination
func (s *SupplyOrderService) List(ctx context.Context, filter SupplyOrderListFilter) ([]SupplyOrderResponse, int64, error) {
	domainFilter := trade.SupplyOrderFilter{
		Filter:     shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at", OrderDir: filter.OrderDir}.Normalize(),
		SupplierID: filter.SupplierID,
	}
	if filter.Status != "" {
		status, err := trade.ParseSupplyOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = status
	}

	var (
		orders []trade.SupplyOrder
		total  int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		orders, total, err = repos.SupplyOrders().List(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SupplyOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToSupplyOrderResponse(&orders[i])
	}
	return responses, total, nil
}

func (s *SupplyOrderService) publishDomainEvents(ctx context.Context, order *trade.SupplyOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish supply order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

package trade

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	"github.com/farmadist/backend/internal/application/uow"
	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/farmadist/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService registers sales as one unit of work: availability check,
// price snapshot, totals, persistence and stock decrements all commit or all
// roll back together.
type SaleService struct {
	scope           uow.TransactionScope
	ledger          *inventoryapp.StockLedger
	recorder        *auditapp.Recorder
	taxRate         decimal.Decimal
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewSaleService creates a new SaleService charging the given tax rate
func NewSaleService(
	scope uow.TransactionScope,
	ledger *inventoryapp.StockLedger,
	recorder *auditapp.Recorder,
	taxRate decimal.Decimal,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		scope:    scope,
		ledger:   ledger,
		recorder: recorder,
		taxRate:  taxRate,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// TaxRate returns the configured tax rate
func (s *SaleService) TaxRate() decimal.Decimal {
	return s.taxRate
}

// Register records a sale.
//
// Order of checks: client exists, every product exists, every product has
// enough stock for the summed quantity of its lines. A failed check returns
// before anything is written. Products are row-locked in id order so
// concurrent sales touching the same products cannot deadlock.
func (s *SaleService) Register(ctx context.Context, req RegisterSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "register")
	defer span.End()
	telemetry.SetAttributes(span, "client_id", req.ClientID.String(), "lines_count", len(req.Lines))

	inputs := make([]trade.SaleLineInput, len(req.Lines))
	for i, l := range req.Lines {
		inputs[i] = trade.SaleLineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if err := trade.ValidateSaleLines(req.ClientID, inputs); err != nil {
		return nil, err
	}

	var (
		sale    *trade.Sale
		changes []inventory.StockChange
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		changes = nil

		if _, err := repos.Catalog().GetClient(ctx, req.ClientID); err != nil {
			return err
		}

		products, err := lockProducts(ctx, repos, inputs)
		if err != nil {
			return err
		}

		requested := sumQuantities(inputs)
		for _, in := range inputs {
			p := products[in.ProductID]
			if !p.HasStock(requested[in.ProductID]) {
				return &shared.InsufficientStockError{
					ProductID:   p.ID.String(),
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   requested[in.ProductID],
				}
			}
		}

		priced := make([]trade.PricedLine, len(inputs))
		for i, in := range inputs {
			p := products[in.ProductID]
			priced[i] = trade.PricedLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    in.Quantity,
				UnitPrice:   p.UnitPrice,
			}
		}

		sale, err = trade.NewSale(req.ClientID, req.OperatorID, priced, s.taxRate)
		if err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}

		for _, line := range sale.Lines {
			change, err := s.ledger.DecreaseIn(ctx, repos, line.ProductID, line.Quantity, inventory.ReasonSale, sale.OperatorID)
			if err != nil {
				return err
			}
			changes = append(changes, *change)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Info("sale rejected",
			zap.String("client_id", req.ClientID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("sale registered",
		zap.String("sale_id", sale.ID.String()),
		zap.String("client_id", sale.ClientID.String()),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.Int("lines", len(sale.Lines)),
	)
	s.ledger.Committed(ctx, changes...)
	s.recorder.Record(ctx, audit.NewEvent(audit.OperationSaleRegistered, audit.EntitySale, sale.ID, sale.OperatorID,
		fmt.Sprintf("client=%s lines=%d subtotal=%s tax=%s total=%s",
			sale.ClientID, len(sale.Lines), sale.Subtotal.StringFixed(2), sale.Tax.StringFixed(2), sale.Total.StringFixed(2))))
	s.publishDomainEvents(ctx, sale)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSale(ctx, sale.Total, sale.TotalUnits())
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, shared.NewValidationError("to", "must not be before from")
	}
	domainFilter := trade.SaleFilter{
		Filter:     shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "sold_at", OrderDir: filter.OrderDir}.Normalize(),
		ClientID:   filter.ClientID,
		OperatorID: filter.OperatorID,
		From:       filter.From,
		To:         filter.To,
	}

	var (
		sales []trade.Sale
		total int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		sales, total, err = repos.Sales().List(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses, total, nil
}

func (s *SaleService) publishDomainEvents(ctx context.Context, sale *trade.Sale) {
	events := sale.GetDomainEvents()
	sale.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish sale events",
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err),
		)
	}
}

// lockProducts row-locks every distinct product in ascending id order
func lockProducts(ctx context.Context, repos uow.Repositories, inputs []trade.SaleLineInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if !seen[in.ProductID] {
			seen[in.ProductID] = true
			ids = append(ids, in.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	for _, id := range ids {
		p, err := repos.Stock().Lock(ctx, id)
		if err != nil {
			return nil, err
		}
		products[id] = p
	}
	return products, nil
}

// sumQuantities totals requested units per product so repeated lines are checked together
func sumQuantities(inputs []trade.SaleLineInput) map[uuid.UUID]int64 {
	totals := make(map[uuid.UUID]int64, len(inputs))
	for _, in := range inputs {
		totals[in.ProductID] += in.Quantity
	}
	return totals
}

package trade

import (
	"testing"
	"time"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	"github.com/farmadist/backend/internal/application/uow"
	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tradeFixture struct {
	catalog   *MockCatalog
	stock     *MockStockRepository
	orders    *MockSupplyOrderRepository
	sales     *MockSaleRepository
	sink      *MockAuditSink
	publisher *MockEventPublisher

	orderService *SupplyOrderService
	saleService  *SaleService
}

func newTradeFixture() *tradeFixture {
	f := &tradeFixture{
		catalog:   new(MockCatalog),
		stock:     new(MockStockRepository),
		orders:    new(MockSupplyOrderRepository),
		sales:     new(MockSaleRepository),
		sink:      new(MockAuditSink),
		publisher: new(MockEventPublisher),
	}
	scope := uow.NewNoOpTransactionScope(f.catalog, f.stock, f.orders, f.sales)
	recorder := auditapp.NewRecorder(f.sink, zap.NewNop())

	ledger := inventoryapp.NewStockLedger(scope, recorder, zap.NewNop())
	ledger.SetEventPublisher(f.publisher)

	f.orderService = NewSupplyOrderService(scope, ledger, recorder, zap.NewNop())
	f.orderService.SetEventPublisher(f.publisher)
	f.saleService = NewSaleService(scope, ledger, recorder, trade.DefaultTaxRate, zap.NewNop())
	f.saleService.SetEventPublisher(f.publisher)
	return f
}

// allowSideEffects accepts any audit record and event publication
func (f *tradeFixture) allowSideEffects() {
	f.sink.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
}

func newProduct(t *testing.T, name, price string, stock int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", decimal.RequireFromString(price), stock, time.Now().AddDate(1, 0, 0))
	require.NoError(t, err)
	return p
}

func uowFrom(f *tradeFixture) *uow.NoOpTransactionScope {
	return uow.NewNoOpTransactionScope(f.catalog, f.stock, f.orders, f.sales)
}

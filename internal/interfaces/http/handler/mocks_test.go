package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	tradeapp "github.com/farmadist/backend/internal/application/trade"
	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/infrastructure/persistence"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/farmadist/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testActor = "op-7"

// newTestRouter mounts the actor middleware with the header fallback
func newTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Actor(middleware.ActorConfig{AllowHeaderFallback: true}))
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, testActor)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		RequestID string          `json:"request_id"`
		Details   json.RawMessage `json:"details"`
	} `json:"error"`
	Meta *dto.Meta `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// MockSupplyOrderService implements SupplyOrderService for testing
type MockSupplyOrderService struct {
	mock.Mock
}

func (m *MockSupplyOrderService) Create(ctx context.Context, req tradeapp.CreateSupplyOrderRequest) (*tradeapp.SupplyOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SupplyOrderResponse), args.Error(1)
}

func (m *MockSupplyOrderService) AdvanceState(ctx context.Context, req tradeapp.AdvanceSupplyOrderRequest) (*tradeapp.SupplyOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SupplyOrderResponse), args.Error(1)
}

func (m *MockSupplyOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*tradeapp.SupplyOrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SupplyOrderResponse), args.Error(1)
}

func (m *MockSupplyOrderService) List(ctx context.Context, filter tradeapp.SupplyOrderListFilter) ([]tradeapp.SupplyOrderResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]tradeapp.SupplyOrderResponse), args.Get(1).(int64), args.Error(2)
}

// MockSaleService implements SaleService for testing
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) Register(ctx context.Context, req tradeapp.RegisterSaleRequest) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *MockSaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *MockSaleService) List(ctx context.Context, filter tradeapp.SaleListFilter) ([]tradeapp.SaleResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]tradeapp.SaleResponse), args.Get(1).(int64), args.Error(2)
}

// MockStockAdjuster implements StockAdjuster for testing
type MockStockAdjuster struct {
	mock.Mock
}

func (m *MockStockAdjuster) AdjustStock(ctx context.Context, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockChangeResponse), args.Error(1)
}

// MockAlertQuery implements AlertQuery for testing
type MockAlertQuery struct {
	mock.Mock
}

func (m *MockAlertQuery) ListLowStock(ctx context.Context, threshold int64, filter shared.Filter) (shared.Paginated[inventoryapp.ProductAlertResponse], error) {
	args := m.Called(ctx, threshold, filter)
	return args.Get(0).(shared.Paginated[inventoryapp.ProductAlertResponse]), args.Error(1)
}

func (m *MockAlertQuery) ListExpiringSoon(ctx context.Context, days int, filter shared.Filter) (shared.Paginated[inventoryapp.ProductAlertResponse], error) {
	args := m.Called(ctx, days, filter)
	return args.Get(0).(shared.Paginated[inventoryapp.ProductAlertResponse]), args.Error(1)
}

// MockAuditQuery implements AuditQuery for testing
type MockAuditQuery struct {
	mock.Mock
}

func (m *MockAuditQuery) List(ctx context.Context, q auditapp.ListEventsQuery) (shared.Paginated[audit.Event], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(shared.Paginated[audit.Event]), args.Error(1)
}

// MockDatabaseProbe implements DatabaseProbe for testing
type MockDatabaseProbe struct {
	mock.Mock
}

func (m *MockDatabaseProbe) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabaseProbe) Stats() (persistence.ConnectionStats, error) {
	args := m.Called()
	return args.Get(0).(persistence.ConnectionStats), args.Error(1)
}

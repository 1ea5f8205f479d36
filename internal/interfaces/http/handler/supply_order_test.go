package handler

import (
	"net/http"
	"testing"

	tradeapp "github.com/farmadist/backend/internal/application/trade"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSupplyOrderRouter(svc SupplyOrderService) *gin.Engine {
	h := NewSupplyOrderHandler(svc)
	router := newTestRouter()
	router.POST("/supply-orders", h.Create)
	router.GET("/supply-orders", h.List)
	router.GET("/supply-orders/:id", h.GetByID)
	router.PUT("/supply-orders/:id/status", h.AdvanceStatus)
	return router
}

func TestSupplyOrderHandler_Create(t *testing.T) {
	supplierID := uuid.New()
	productID := uuid.New()

	svc := new(MockSupplyOrderService)
	svc.On("Create", mock.Anything, tradeapp.CreateSupplyOrderRequest{
		SupplierID: supplierID,
		Lines:      []tradeapp.SupplyOrderLineRequest{{ProductID: productID, Quantity: 20}},
		ActorID:    testActor,
	}).Return(&tradeapp.SupplyOrderResponse{ID: uuid.New(), Status: "PENDING", TotalUnits: 20}, nil)

	w := doJSON(newSupplyOrderRouter(svc), http.MethodPost, "/supply-orders", map[string]any{
		"supplier_id": supplierID.String(),
		"lines":       []map[string]any{{"product_id": productID.String(), "quantity": 20}},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), `"status":"PENDING"`)
	svc.AssertExpectations(t)
}

func TestSupplyOrderHandler_AdvanceStatus(t *testing.T) {
	orderID := uuid.New()

	t.Run("received", func(t *testing.T) {
		svc := new(MockSupplyOrderService)
		svc.On("AdvanceState", mock.Anything, tradeapp.AdvanceSupplyOrderRequest{
			OrderID: orderID, Status: "RECEIVED", ActorID: testActor,
		}).Return(&tradeapp.SupplyOrderResponse{ID: orderID, Status: "RECEIVED"}, nil)

		w := doJSON(newSupplyOrderRouter(svc), http.MethodPut, "/supply-orders/"+orderID.String()+"/status", map[string]string{"status": "RECEIVED"})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("skipping a step is 422", func(t *testing.T) {
		svc := new(MockSupplyOrderService)
		svc.On("AdvanceState", mock.Anything, mock.Anything).Return(nil, &shared.InvalidTransitionError{From: "PENDING", To: "RECEIVED"})

		w := doJSON(newSupplyOrderRouter(svc), http.MethodPut, "/supply-orders/"+orderID.String()+"/status", map[string]string{"status": "RECEIVED"})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeInvalidTransition, env.Error.Code)
		assert.JSONEq(t, `{"from":"PENDING","to":"RECEIVED"}`, string(env.Error.Details))
	})

	t.Run("concurrent update is 409", func(t *testing.T) {
		svc := new(MockSupplyOrderService)
		svc.On("AdvanceState", mock.Anything, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		w := doJSON(newSupplyOrderRouter(svc), http.MethodPut, "/supply-orders/"+orderID.String()+"/status", map[string]string{"status": "SHIPPED"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing status", func(t *testing.T) {
		svc := new(MockSupplyOrderService)
		w := doJSON(newSupplyOrderRouter(svc), http.MethodPut, "/supply-orders/"+orderID.String()+"/status", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "AdvanceState", mock.Anything, mock.Anything)
	})
}

func TestSupplyOrderHandler_GetByID_NotFound(t *testing.T) {
	orderID := uuid.New()
	svc := new(MockSupplyOrderService)
	svc.On("GetByID", mock.Anything, orderID).Return(nil, &shared.NotFoundError{Entity: "SupplyOrder", ID: orderID.String()})

	w := doJSON(newSupplyOrderRouter(svc), http.MethodGet, "/supply-orders/"+orderID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSupplyOrderHandler_List(t *testing.T) {
	supplierID := uuid.New()

	svc := new(MockSupplyOrderService)
	svc.On("List", mock.Anything, tradeapp.SupplyOrderListFilter{
		Status: "SHIPPED", SupplierID: &supplierID, Page: 1, PageSize: 20, OrderDir: "desc",
	}).Return([]tradeapp.SupplyOrderResponse{}, int64(0), nil)
	router := newSupplyOrderRouter(svc)

	w := doJSON(router, http.MethodGet, "/supply-orders?status=SHIPPED&supplier_id="+supplierID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "[]", string(decode(t, w).Data))
	svc.AssertExpectations(t)

	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/supply-orders?status=LOST", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/supply-orders?supplier_id=nope", nil).Code)
}

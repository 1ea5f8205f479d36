package handler

import (
	"net/http"
	"testing"

	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInventoryRouter(ledger StockAdjuster, alerts AlertQuery) *gin.Engine {
	h := NewInventoryHandler(ledger, alerts)
	router := newTestRouter()
	router.POST("/inventory/products/:id/adjust", h.Adjust)
	router.GET("/inventory/alerts/low-stock", h.LowStock)
	router.GET("/inventory/alerts/expiring", h.Expiring)
	return router
}

func TestInventoryHandler_Adjust(t *testing.T) {
	productID := uuid.New()
	path := "/inventory/products/" + productID.String() + "/adjust"

	t.Run("negative delta", func(t *testing.T) {
		ledger := new(MockStockAdjuster)
		ledger.On("AdjustStock", mock.Anything, inventoryapp.AdjustStockRequest{
			ProductID: productID, Delta: -3, Reason: "DAMAGED", ActorID: testActor,
		}).Return(&inventoryapp.StockChangeResponse{ProductID: productID, Previous: 10, Current: 7}, nil)

		w := doJSON(newInventoryRouter(ledger, nil), http.MethodPost, path, map[string]any{"delta": -3, "reason": "DAMAGED"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, string(decode(t, w).Data), `"current_stock":7`)
		ledger.AssertExpectations(t)
	})

	t.Run("would go negative", func(t *testing.T) {
		ledger := new(MockStockAdjuster)
		ledger.On("AdjustStock", mock.Anything, mock.Anything).Return(nil, &shared.InsufficientStockError{
			ProductID: productID.String(), Available: 2, Requested: 5,
		})

		w := doJSON(newInventoryRouter(ledger, nil), http.MethodPost, path, map[string]any{"delta": -5})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("zero delta is rejected before the ledger", func(t *testing.T) {
		ledger := new(MockStockAdjuster)
		w := doJSON(newInventoryRouter(ledger, nil), http.MethodPost, path, map[string]any{"delta": 0})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		ledger.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything)
	})
}

func TestInventoryHandler_Alerts(t *testing.T) {
	result := shared.NewPaginated([]inventoryapp.ProductAlertResponse{
		{ProductID: uuid.New(), Name: "Ibuprofeno 400mg", Stock: 3},
	}, 1, 1, 20)

	alerts := new(MockAlertQuery)
	alerts.On("ListLowStock", mock.Anything, int64(5), mock.AnythingOfType("shared.Filter")).Return(result, nil)
	alerts.On("ListExpiringSoon", mock.Anything, 0, mock.AnythingOfType("shared.Filter")).Return(result, nil)
	router := newInventoryRouter(nil, alerts)

	w := doJSON(router, http.MethodGet, "/inventory/alerts/low-stock?threshold=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Contains(t, string(env.Data), "Ibuprofeno 400mg")
	assert.Equal(t, &dto.Meta{Total: 1, Page: 1, PageSize: 20, TotalPages: 1}, env.Meta)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/inventory/alerts/expiring", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/inventory/alerts/expiring?days=-1", nil).Code)
	alerts.AssertExpectations(t)
}

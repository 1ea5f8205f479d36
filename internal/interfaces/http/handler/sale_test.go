package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	tradeapp "github.com/farmadist/backend/internal/application/trade"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSaleRouter(svc SaleService) *gin.Engine {
	h := NewSaleHandler(svc)
	router := newTestRouter()
	router.POST("/sales", h.Register)
	router.GET("/sales", h.List)
	router.GET("/sales/:id", h.GetByID)
	return router
}

func TestSaleHandler_Register(t *testing.T) {
	clientID := uuid.New()
	productID := uuid.New()
	body := map[string]any{
		"client_id": clientID.String(),
		"lines":     []map[string]any{{"product_id": productID.String(), "quantity": 6}},
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockSaleService)
		svc.On("Register", mock.Anything, tradeapp.RegisterSaleRequest{
			ClientID:   clientID,
			Lines:      []tradeapp.SaleLineRequest{{ProductID: productID, Quantity: 6}},
			OperatorID: testActor,
		}).Return(&tradeapp.SaleResponse{
			ID: uuid.New(), ClientID: clientID, OperatorID: testActor,
			Subtotal: "55.00", TaxRate: "0.18", Tax: "9.90", Total: "64.90",
		}, nil)

		w := doJSON(newSaleRouter(svc), http.MethodPost, "/sales", body)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var sale tradeapp.SaleResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &sale))
		assert.Equal(t, "64.90", sale.Total)
		svc.AssertExpectations(t)
	})

	t.Run("insufficient stock is 422 with quantities", func(t *testing.T) {
		svc := new(MockSaleService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("decrease: %w", &shared.InsufficientStockError{
			ProductID: productID.String(), ProductName: "Amoxicilina", Available: 4, Requested: 6,
		}))

		w := doJSON(newSaleRouter(svc), http.MethodPost, "/sales", body)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)
		assert.NotEmpty(t, env.Error.RequestID)
		assert.JSONEq(t, fmt.Sprintf(`{"product_id":%q,"available":4,"requested":6}`, productID), string(env.Error.Details))
	})

	t.Run("unknown client is 404", func(t *testing.T) {
		svc := new(MockSaleService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, &shared.NotFoundError{Entity: "Client", ID: clientID.String()})

		w := doJSON(newSaleRouter(svc), http.MethodPost, "/sales", body)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
	})

	t.Run("unexpected failure is an opaque 500", func(t *testing.T) {
		svc := new(MockSaleService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("pq: deadlock detected"))

		w := doJSON(newSaleRouter(svc), http.MethodPost, "/sales", body)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeInternal, env.Error.Code)
		assert.NotContains(t, env.Error.Message, "deadlock")
	})

	t.Run("invalid bodies never reach the service", func(t *testing.T) {
		svc := new(MockSaleService)
		router := newSaleRouter(svc)

		for name, bad := range map[string]any{
			"empty lines":   map[string]any{"client_id": clientID.String(), "lines": []any{}},
			"zero quantity": map[string]any{"client_id": clientID.String(), "lines": []map[string]any{{"product_id": productID.String(), "quantity": 0}}},
			"bad client":    map[string]any{"client_id": "x", "lines": []map[string]any{{"product_id": productID.String(), "quantity": 1}}},
			"malformed":     `{"client_id":`,
		} {
			w := doJSON(router, http.MethodPost, "/sales", bad)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestSaleHandler_GetByID(t *testing.T) {
	saleID := uuid.New()

	svc := new(MockSaleService)
	svc.On("GetByID", mock.Anything, saleID).Return(&tradeapp.SaleResponse{ID: saleID}, nil)
	router := newSaleRouter(svc)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/sales/"+saleID.String(), nil).Code)

	w := doJSON(router, http.MethodGet, "/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
}

func TestSaleHandler_List(t *testing.T) {
	clientID := uuid.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	svc := new(MockSaleService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f tradeapp.SaleListFilter) bool {
		return f.ClientID != nil && *f.ClientID == clientID &&
			f.From != nil && f.From.Equal(from) && f.To == nil &&
			f.Page == 2 && f.PageSize == 10 && f.OperatorID == "op-1"
	})).Return([]tradeapp.SaleResponse{{ID: uuid.New()}}, int64(11), nil)

	path := fmt.Sprintf("/sales?client_id=%s&operator_id=op-1&from=2026-01-01T00:00:00Z&page=2&page_size=10", clientID)
	w := doJSON(newSaleRouter(svc), http.MethodGet, path, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, &dto.Meta{Total: 11, Page: 2, PageSize: 10, TotalPages: 2}, decode(t, w).Meta)
	svc.AssertExpectations(t)
}

func TestSaleHandler_List_InvalidRange(t *testing.T) {
	svc := new(MockSaleService)
	svc.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), shared.NewValidationError("to", "must not be before from"))

	w := doJSON(newSaleRouter(svc), http.MethodGet, "/sales?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `[{"field":"to","message":"must not be before from"}]`, string(decode(t, w).Error.Details))
}

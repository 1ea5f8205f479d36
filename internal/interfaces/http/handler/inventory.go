package handler

import (
	"context"
	"net/http"

	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// StockAdjuster applies manual stock corrections
type StockAdjuster interface {
	AdjustStock(ctx context.Context, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockChangeResponse, error)
}

// AlertQuery answers the inventory alert listings
type AlertQuery interface {
	ListLowStock(ctx context.Context, threshold int64, filter shared.Filter) (shared.Paginated[inventoryapp.ProductAlertResponse], error)
	ListExpiringSoon(ctx context.Context, days int, filter shared.Filter) (shared.Paginated[inventoryapp.ProductAlertResponse], error)
}

// InventoryHandler handles stock adjustment and alert endpoints
type InventoryHandler struct {
	BaseHandler
	ledger StockAdjuster
	alerts AlertQuery
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger StockAdjuster, alerts AlertQuery) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, alerts: alerts}
}

// AdjustStockBody is the request body of POST /inventory/products/:id/adjust
type AdjustStockBody struct {
	// Delta is signed: positive adds units, negative removes them
	Delta  int64  `json:"delta" binding:"required,ne=0"`
	Reason string `json:"reason" binding:"omitempty,max=64"`
}

// LowStockQuery holds the filters of GET /inventory/alerts/low-stock
type LowStockQuery struct {
	dto.ListRequest
	Threshold int64 `form:"threshold" binding:"omitempty,gt=0"`
}

// ExpiringQuery holds the filters of GET /inventory/alerts/expiring
type ExpiringQuery struct {
	dto.ListRequest
	Days int `form:"days" binding:"omitempty,gt=0,lte=3650"`
}

// Adjust godoc
// @Summary      Adjust stock
// @Description  Applies a signed correction; stock never goes below zero
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body AdjustStockBody true "Adjustment"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response "ERR_INSUFFICIENT_STOCK"
// @Router       /inventory/products/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var body AdjustStockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	change, err := h.ledger.AdjustStock(c.Request.Context(), inventoryapp.AdjustStockRequest{
		ProductID: productID,
		Delta:     body.Delta,
		Reason:    body.Reason,
		ActorID:   actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, change)
}

// LowStock godoc
// @Summary      Products below a stock threshold
// @Tags         inventory
// @Produce      json
// @Param        threshold query int false "Strict upper bound, defaults to the configured threshold"
// @Success      200 {object} dto.Response
// @Router       /inventory/alerts/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var query LowStockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	result, err := h.alerts.ListLowStock(c.Request.Context(), query.Threshold, page(query.ListRequest))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(result))
}

// Expiring godoc
// @Summary      Products expiring soon
// @Tags         inventory
// @Produce      json
// @Param        days query int false "Look-ahead window, defaults to the configured warning days"
// @Success      200 {object} dto.Response
// @Router       /inventory/alerts/expiring [get]
func (h *InventoryHandler) Expiring(c *gin.Context) {
	var query ExpiringQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	result, err := h.alerts.ListExpiringSoon(c.Request.Context(), query.Days, page(query.ListRequest))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(result))
}

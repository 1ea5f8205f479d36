package handler

import (
	"context"

	tradeapp "github.com/farmadist/backend/internal/application/trade"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SupplyOrderService is what SupplyOrderHandler needs from the application layer
type SupplyOrderService interface {
	Create(ctx context.Context, req tradeapp.CreateSupplyOrderRequest) (*tradeapp.SupplyOrderResponse, error)
	AdvanceState(ctx context.Context, req tradeapp.AdvanceSupplyOrderRequest) (*tradeapp.SupplyOrderResponse, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*tradeapp.SupplyOrderResponse, error)
	List(ctx context.Context, filter tradeapp.SupplyOrderListFilter) ([]tradeapp.SupplyOrderResponse, int64, error)
}

// SupplyOrderHandler handles supply order endpoints
type SupplyOrderHandler struct {
	BaseHandler
	service SupplyOrderService
}

// NewSupplyOrderHandler creates a new SupplyOrderHandler
func NewSupplyOrderHandler(service SupplyOrderService) *SupplyOrderHandler {
	return &SupplyOrderHandler{service: service}
}

// CreateSupplyOrderBody is the request body of POST /supply-orders
type CreateSupplyOrderBody struct {
	SupplierID string                `json:"supplier_id" binding:"required,uuid"`
	Lines      []SupplyOrderLineBody `json:"lines" binding:"required,min=1,dive"`
}

// SupplyOrderLineBody is one requested product and quantity
type SupplyOrderLineBody struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// AdvanceStatusBody is the request body of PUT /supply-orders/:id/status
type AdvanceStatusBody struct {
	Status string `json:"status" binding:"required,max=32"`
}

// ListSupplyOrdersQuery holds the filters of GET /supply-orders
type ListSupplyOrdersQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING SHIPPED RECEIVED"`
}

// Create godoc
// @Summary      Create a supply order
// @Description  Creates a PENDING order; stock is untouched until it is received
// @Tags         supply-orders
// @Accept       json
// @Produce      json
// @Param        request body CreateSupplyOrderBody true "Supply order"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /supply-orders [post]
func (h *SupplyOrderHandler) Create(c *gin.Context) {
	var body CreateSupplyOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]tradeapp.SupplyOrderLineRequest, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = tradeapp.SupplyOrderLineRequest{ProductID: uuid.MustParse(l.ProductID), Quantity: l.Quantity}
	}

	order, err := h.service.Create(c.Request.Context(), tradeapp.CreateSupplyOrderRequest{
		SupplierID: uuid.MustParse(body.SupplierID),
		Lines:      lines,
		ActorID:    actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// AdvanceStatus godoc
// @Summary      Advance a supply order
// @Description  PENDING to SHIPPED, or SHIPPED to RECEIVED which credits stock
// @Tags         supply-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body AdvanceStatusBody true "Target status"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response "ERR_INVALID_TRANSITION"
// @Router       /supply-orders/{id}/status [put]
func (h *SupplyOrderHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var body AdvanceStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	order, err := h.service.AdvanceState(c.Request.Context(), tradeapp.AdvanceSupplyOrderRequest{
		OrderID: orderID,
		Status:  body.Status,
		ActorID: actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByID godoc
// @Summary      Get a supply order
// @Tags         supply-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /supply-orders/{id} [get]
func (h *SupplyOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List supply orders
// @Tags         supply-orders
// @Produce      json
// @Param        status query string false "PENDING, SHIPPED or RECEIVED"
// @Param        supplier_id query string false "Supplier" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Router       /supply-orders [get]
func (h *SupplyOrderHandler) List(c *gin.Context) {
	var query ListSupplyOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	supplierID, ok := h.queryUUID(c, "supplier_id")
	if !ok {
		return
	}

	filter := page(query.ListRequest)
	orders, total, err := h.service.List(c.Request.Context(), tradeapp.SupplyOrderListFilter{
		Status:     query.Status,
		SupplierID: supplierID,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		OrderDir:   filter.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

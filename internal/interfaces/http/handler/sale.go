package handler

import (
	"context"

	tradeapp "github.com/farmadist/backend/internal/application/trade"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleService is what SaleHandler needs from the application layer
type SaleService interface {
	Register(ctx context.Context, req tradeapp.RegisterSaleRequest) (*tradeapp.SaleResponse, error)
	GetByID(ctx context.Context, saleID uuid.UUID) (*tradeapp.SaleResponse, error)
	List(ctx context.Context, filter tradeapp.SaleListFilter) ([]tradeapp.SaleResponse, int64, error)
}

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	service SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// RegisterSaleBody is the request body of POST /sales
type RegisterSaleBody struct {
	ClientID string         `json:"client_id" binding:"required,uuid"`
	Lines    []SaleLineBody `json:"lines" binding:"required,min=1,dive"`
}

// SaleLineBody is one requested product and quantity
type SaleLineBody struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// ListSalesQuery holds the filters of GET /sales
type ListSalesQuery struct {
	dto.ListRequest
	dto.DateRange
	OperatorID string `form:"operator_id" binding:"omitempty,max=64"`
}

// Register godoc
// @Summary      Register a sale
// @Description  Prices are snapshotted, 18% tax is added and stock is decreased atomically
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Retry key"
// @Param        request body RegisterSaleBody true "Sale"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response "ERR_DUPLICATE_REQUEST"
// @Failure      422 {object} dto.Response "ERR_INSUFFICIENT_STOCK"
// @Router       /sales [post]
func (h *SaleHandler) Register(c *gin.Context) {
	var body RegisterSaleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	lines := make([]tradeapp.SaleLineRequest, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = tradeapp.SaleLineRequest{ProductID: uuid.MustParse(l.ProductID), Quantity: l.Quantity}
	}

	sale, err := h.service.Register(c.Request.Context(), tradeapp.RegisterSaleRequest{
		ClientID:   uuid.MustParse(body.ClientID),
		Lines:      lines,
		OperatorID: actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	sale, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        client_id query string false "Client" format(uuid)
// @Param        operator_id query string false "Operator"
// @Param        from query string false "Sold at or after (RFC 3339)"
// @Param        to query string false "Sold before (RFC 3339)"
// @Success      200 {object} dto.Response
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	clientID, ok := h.queryUUID(c, "client_id")
	if !ok {
		return
	}

	filter := page(query.ListRequest)
	sales, total, err := h.service.List(c.Request.Context(), tradeapp.SaleListFilter{
		ClientID:   clientID,
		OperatorID: query.OperatorID,
		From:       query.From,
		To:         query.To,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		OrderDir:   filter.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

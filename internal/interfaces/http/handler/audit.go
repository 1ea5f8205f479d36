package handler

import (
	"context"
	"net/http"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AuditQuery reads the persisted audit trail
type AuditQuery interface {
	List(ctx context.Context, q auditapp.ListEventsQuery) (shared.Paginated[audit.Event], error)
}

// AuditHandler serves the audit trail
type AuditHandler struct {
	BaseHandler
	query AuditQuery
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(query AuditQuery) *AuditHandler {
	return &AuditHandler{query: query}
}

// ListAuditEventsQuery holds the filters of GET /audit-events
type ListAuditEventsQuery struct {
	dto.ListRequest
	dto.DateRange
	EntityType string `form:"entity_type" binding:"omitempty,oneof=Product SupplyOrder Sale"`
	ActorID    string `form:"actor_id" binding:"omitempty,max=64"`
}

// List godoc
// @Summary      List audit events
// @Description  Newest first. Only available when the database audit store is enabled.
// @Tags         audit
// @Produce      json
// @Param        entity_type query string false "Product, SupplyOrder or Sale"
// @Param        entity_id query string false "Entity" format(uuid)
// @Param        actor_id query string false "Actor"
// @Success      200 {object} dto.Response
// @Router       /audit-events [get]
func (h *AuditHandler) List(c *gin.Context) {
	var query ListAuditEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	entityID, ok := h.queryUUID(c, "entity_id")
	if !ok {
		return
	}

	result, err := h.query.List(c.Request.Context(), auditapp.ListEventsQuery{
		EntityType: query.EntityType,
		EntityID:   entityID,
		ActorID:    query.ActorID,
		From:       query.From,
		To:         query.To,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(result))
}

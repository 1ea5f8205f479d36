// Package handler holds the gin handlers of the public API.
package handler

import (
	"net/http"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/infrastructure/logger"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/farmadist/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string, details any) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c), details))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message, nil)
}

// HandleError maps an application error to its HTTP response.
// Typed domain errors keep their structured details; anything else is a 500
// whose cause is logged but never returned to the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code, message, details := dto.MapError(err)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	}
	_ = c.Error(err)
	h.Error(c, status, code, message, details)
}

// HandleBindingError sends a 400 for a request that failed binding
func (h *BaseHandler) HandleBindingError(c *gin.Context, err error) {
	c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
	middleware.HandleBindingError(c, err)
}

// actorID returns the operator resolved by the actor middleware
func actorID(c *gin.Context) string {
	return middleware.GetActorID(c)
}

// pathUUID parses a uuid path parameter, answering 400 when it is malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.HandleError(c, shared.NewValidationError(name, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional uuid query parameter
func (h *BaseHandler) queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.HandleError(c, shared.NewValidationError(name, "must be a valid UUID"))
		return nil, false
	}
	return &id, true
}

// page normalizes the paging query so list meta matches what the query used
func page(req dto.ListRequest) shared.Filter {
	return shared.Filter{Page: req.Page, PageSize: req.PageSize, OrderDir: req.OrderDir}.Normalize()
}

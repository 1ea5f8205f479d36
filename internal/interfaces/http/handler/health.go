package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/farmadist/backend/internal/infrastructure/persistence"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DatabaseProbe is the part of persistence.Database the health check uses
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler answers liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db        DatabaseProbe
	version   string
	startTime time.Time
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseProbe, version string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		db:        db,
		version:   version,
		startTime: time.Now(),
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string                       `json:"status"`
	Version   string                       `json:"version"`
	GoVersion string                       `json:"go_version"`
	Uptime    string                       `json:"uptime"`
	Database  string                       `json:"database"`
	Pool      *persistence.ConnectionStats `json:"pool,omitempty"`
}

// Health godoc
// @Summary      Liveness and database ping
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  "up",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &stats
	}
	h.Success(c, resp)
}

package inventory

import (
	"context"
	"fmt"

	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockBelowThresholdHandler logs and counts low-stock crossings
type StockBelowThresholdHandler struct {
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewStockBelowThresholdHandler creates a new handler for stock below threshold events
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{logger: logger}
}

// WithBusinessMetrics sets the metrics collector
func (h *StockBelowThresholdHandler) WithBusinessMetrics(bm *telemetry.BusinessMetrics) *StockBelowThresholdHandler {
	h.businessMetrics = bm
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowThreshold),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	alertType := "low_stock"
	if thresholdEvent.Current == 0 {
		alertType = "out_of_stock"
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("product_id", thresholdEvent.AggregateID().String()),
		zap.String("product_name", thresholdEvent.ProductName),
		zap.Int64("current", thresholdEvent.Current),
		zap.Int64("threshold", thresholdEvent.Threshold),
		zap.String("alert_type", alertType),
	)

	if h.businessMetrics != nil {
		h.businessMetrics.RecordLowStockAlert(ctx, alertType)
	}
	return nil
}

var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)

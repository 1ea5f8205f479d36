package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks sales, stock movements, supply orders and inventory health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counters
	saleTotal            *Counter
	saleAmountCents      *Counter
	saleUnits            *Counter
	stockMovementUnits   *Counter
	stockRejectionTotal  *Counter
	lowStockAlertTotal   *Counter
	orderTransitionTotal *Counter
	orderReceivedUnits   *Counter

	// Gauges
	lowStockProducts *Gauge
	expiringProducts *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider supplies inventory health figures for periodic collection
// without tying the telemetry layer to the domain.
type InventoryMetricsProvider interface {
	// CountBelowStock returns how many products hold fewer than threshold units
	CountBelowStock(ctx context.Context, threshold int64) (int64, error)
	// CountExpiringBefore returns how many in-stock products expire before the given time
	CountExpiringBefore(ctx context.Context, before time.Time) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	InventoryProvider InventoryMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&bm.saleTotal, "pharma_sale_total", "Total number of registered sales", "{sales}"},
		{&bm.saleAmountCents, "pharma_sale_amount_total", "Total sale amount including tax, in cents", "{cents}"},
		{&bm.saleUnits, "pharma_sale_units_total", "Total units sold", "{units}"},
		{&bm.stockMovementUnits, "pharma_stock_movement_units_total", "Units moved in or out of stock", "{units}"},
		{&bm.stockRejectionTotal, "pharma_stock_rejection_total", "Decrements refused for insufficient stock", "{rejections}"},
		{&bm.lowStockAlertTotal, "pharma_low_stock_alert_total", "Products that crossed below the low stock threshold", "{alerts}"},
		{&bm.orderTransitionTotal, "pharma_supply_order_transition_total", "Supply order status transitions", "{transitions}"},
		{&bm.orderReceivedUnits, "pharma_supply_order_received_units_total", "Units credited by received supply orders", "{units}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	if bm.lowStockProducts, err = NewGauge(cfg.Meter, "pharma_inventory_low_stock_products",
		"Number of products below the low stock threshold", "{products}"); err != nil {
		return nil, err
	}
	if bm.expiringProducts, err = NewGauge(cfg.Meter, "pharma_inventory_expiring_products",
		"Number of in-stock products expiring within the warning window", "{products}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordSale records a committed sale.
func (bm *BusinessMetrics) RecordSale(ctx context.Context, total decimal.Decimal, units int64) {
	bm.saleTotal.Inc(ctx)
	bm.saleAmountCents.Add(ctx, total.Shift(2).Round(0).IntPart())
	bm.saleUnits.Add(ctx, units)
}

// RecordStockMovement records units moved by a committed stock change.
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, direction, reason string, qty int64) {
	bm.stockMovementUnits.Add(ctx, qty,
		AttrStockDirection.String(direction),
		AttrStockReason.String(reason),
	)
}

// RecordStockRejection records a decrement refused for insufficient stock.
func (bm *BusinessMetrics) RecordStockRejection(ctx context.Context, reason string) {
	bm.stockRejectionTotal.Inc(ctx, AttrStockReason.String(reason))
}

// RecordLowStockAlert records a low_stock or out_of_stock alert.
func (bm *BusinessMetrics) RecordLowStockAlert(ctx context.Context, alertType string) {
	bm.lowStockAlertTotal.Inc(ctx, AttrAlertType.String(alertType))
}

// RecordOrderTransition records a supply order reaching status. Units are counted on receipt only.
func (bm *BusinessMetrics) RecordOrderTransition(ctx context.Context, status string, units int64) {
	bm.orderTransitionTotal.Inc(ctx, AttrOrderStatus.String(status))
	if status == "RECEIVED" && units > 0 {
		bm.orderReceivedUnits.Add(ctx, units)
	}
}

// StartPeriodicCollection refreshes the inventory gauges every interval until Stop.
// lowStockThreshold and expiryWindow are the same policy values the alert endpoints use.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration, lowStockThreshold int64, expiryWindow time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval, lowStockThreshold, expiryWindow)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration, threshold int64, window time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectInventoryMetrics(ctx, threshold, window)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx, threshold, window)
		}
	}
}

func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context, threshold int64, window time.Duration) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	if count, err := bm.inventoryProvider.CountBelowStock(ctx, threshold); err != nil {
		bm.logger.Warn("Failed to count low stock products", zap.Error(err))
	} else {
		bm.lowStockProducts.Record(ctx, count)
	}

	if count, err := bm.inventoryProvider.CountExpiringBefore(ctx, time.Now().Add(window)); err != nil {
		bm.logger.Warn("Failed to count expiring products", zap.Error(err))
	} else {
		bm.expiringProducts.Record(ctx, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

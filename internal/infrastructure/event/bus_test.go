package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingHandler implements EventHandler for tests
type recordingHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func stockChanged() *inventory.StockChangedEvent {
	return inventory.NewStockChangedEvent(inventory.StockChange{
		StockLevel: inventory.StockLevel{ProductID: uuid.New(), ProductName: "Paracetamol", Previous: 10, Current: 4},
		Quantity:   6,
		Direction:  inventory.DirectionOutbound,
		Reason:     inventory.ReasonSale,
		ActorID:    "op-1",
	})
}

func belowThreshold() *inventory.StockBelowThresholdEvent {
	return inventory.NewStockBelowThresholdEvent(inventory.StockLevel{ProductID: uuid.New(), Previous: 12, Current: 4}, 10)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler(inventory.EventTypeStockChanged)
	bus.Subscribe(handler)

	event := stockChanged()
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Equal(t, 1, handler.count())
	assert.Equal(t, event, handler.handled[0])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	stock := newRecordingHandler(inventory.EventTypeStockChanged)
	alerts := newRecordingHandler(inventory.EventTypeStockBelowThreshold)
	all := newRecordingHandler()
	bus.Subscribe(stock)
	bus.Subscribe(alerts)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), stockChanged(), belowThreshold(), stockChanged()))

	assert.Equal(t, 2, stock.count())
	assert.Equal(t, 1, alerts.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler(inventory.EventTypeStockChanged)
	bus.Subscribe(handler, trade.EventTypeSaleRegistered)

	require.NoError(t, bus.Publish(context.Background(), stockChanged()))
	assert.Equal(t, 0, handler.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newRecordingHandler(inventory.EventTypeStockChanged)
	failing.err = errors.New("metrics backend unavailable")
	panicking := newRecordingHandler(inventory.EventTypeStockChanged)
	panicking.panicWith = "nil map"
	healthy := newRecordingHandler(inventory.EventTypeStockChanged)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), stockChanged()))

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.Failures())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler(inventory.EventTypeStockChanged)
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), stockChanged())

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), stockChanged())

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.IsRunning())

	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}

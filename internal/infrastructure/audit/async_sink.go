package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the pool has no room for another delivery
var ErrQueueFull = errors.New("audit queue is full")

// AsyncConfig sizes the delivery pool
type AsyncConfig struct {
	Workers         int
	QueueSize       int
	DeliveryTimeout time.Duration
}

// AsyncSink hands events to a worker pool so callers never wait on the
// downstream sink. Delivery errors are logged by the worker.
type AsyncSink struct {
	next    audit.Sink
	pool    *ants.Pool
	timeout time.Duration
	logger  *zap.Logger

	// mu orders wg.Add in Record before wg.Wait in Close
	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewAsyncSink creates an AsyncSink in front of next
func NewAsyncSink(next audit.Sink, cfg AsyncConfig, logger *zap.Logger) (*AsyncSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DeliveryTimeout == 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}

	s := &AsyncSink{next: next, timeout: cfg.DeliveryTimeout, logger: logger}

	opts := []ants.Option{ants.WithNonblocking(cfg.QueueSize <= 0)}
	if cfg.QueueSize > 0 {
		opts = append(opts, ants.WithMaxBlockingTasks(cfg.QueueSize))
	}

	pool, err := ants.NewPool(cfg.Workers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit worker pool: %w", err)
	}
	s.pool = pool
	return s, nil
}

// Record schedules delivery without waiting for the downstream sink. With a
// queue configured it waits for a free worker while fewer than QueueSize
// callers are waiting; without one it fails fast with ErrQueueFull.
// The caller's cancellation is not inherited, its values are.
func (s *AsyncSink) Record(ctx context.Context, e audit.Event) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		s.dropped.Add(1)
		return ErrQueueFull
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	deliveryCtx := context.WithoutCancel(ctx)
	err := s.pool.Submit(func() {
		defer s.wg.Done()
		s.deliver(deliveryCtx, e)
	})
	if err != nil {
		s.wg.Done()
		s.dropped.Add(1)
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			return ErrQueueFull
		}
		return fmt.Errorf("failed to schedule audit event: %w", err)
	}
	return nil
}

func (s *AsyncSink) deliver(ctx context.Context, e audit.Event) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			s.failed.Add(1)
			s.logger.Error("audit delivery panicked",
				zap.String("operation", string(e.Operation)),
				zap.Any("panic", p),
			)
		}
	}()

	if err := s.next.Record(ctx, e); err != nil {
		s.failed.Add(1)
		s.logger.Warn("failed to deliver audit event",
			zap.String("operation", string(e.Operation)),
			zap.String("entity_id", e.EntityID.String()),
			zap.Error(err),
		)
		return
	}
	s.delivered.Add(1)
}

// Close waits for scheduled deliveries until ctx is done, then releases the pool
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.pool.Release()
		return nil
	case <-ctx.Done():
		s.pool.Release()
		return fmt.Errorf("audit sink closed with deliveries pending: %w", ctx.Err())
	}
}

// AsyncStats is a snapshot of delivery counters
type AsyncStats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Running   int   `json:"running"`
}

// Stats returns the current counters
func (s *AsyncSink) Stats() AsyncStats {
	return AsyncStats{
		Delivered: s.delivered.Load(),
		Failed:    s.failed.Load(),
		Dropped:   s.dropped.Load(),
		Running:   s.pool.Running(),
	}
}

var _ audit.Sink = (*AsyncSink)(nil)

// Package audit delivers audit events on a best-effort basis.
package audit

import (
	"context"

	"github.com/farmadist/backend/internal/domain/audit"
	"go.uber.org/zap"
)

// Recorder forwards events to a sink and swallows failures.
// A broken audit trail must never block or undo a business operation.
type Recorder struct {
	sink   audit.Sink
	logger *zap.Logger
}

// NewRecorder creates a Recorder. A nil sink turns recording into a no-op.
func NewRecorder(sink audit.Sink, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{sink: sink, logger: logger}
}

// Record delivers each event, logging and discarding any error or panic.
func (r *Recorder) Record(ctx context.Context, events ...audit.Event) {
	if r == nil || r.sink == nil {
		return
	}
	for _, e := range events {
		r.deliver(ctx, e)
	}
}

func (r *Recorder) deliver(ctx context.Context, e audit.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("audit sink panicked",
				zap.Any("panic", rec),
				zap.String("operation", string(e.Operation)),
				zap.String("entity_id", e.EntityID.String()),
			)
		}
	}()

	if err := r.sink.Record(ctx, e); err != nil {
		r.logger.Warn("failed to record audit event",
			zap.String("operation", string(e.Operation)),
			zap.String("entity_type", e.EntityType),
			zap.String("entity_id", e.EntityID.String()),
			zap.String("actor_id", e.ActorID),
			zap.Error(err),
		)
	}
}

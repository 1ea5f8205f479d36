// Package audit provides the delivery channels for audit events: structured
// log lines, a Kafka topic, fan-out and an asynchronous worker pool.
package audit

import (
	"context"

	"github.com/farmadist/backend/internal/domain/audit"
	"go.uber.org/zap"
)

// LogSink writes every audit event as one structured log line
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink on a logger named "audit"
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("audit")}
}

// Record logs the event at info level
func (s *LogSink) Record(_ context.Context, e audit.Event) error {
	s.logger.Info("audit event",
		zap.String("audit_id", e.ID.String()),
		zap.String("operation", string(e.Operation)),
		zap.String("entity_type", e.EntityType),
		zap.String("entity_id", e.EntityID.String()),
		zap.String("actor_id", e.ActorID),
		zap.Time("occurred_at", e.OccurredAt),
		zap.String("detail", e.Detail),
	)
	return nil
}

var _ audit.Sink = (*LogSink)(nil)

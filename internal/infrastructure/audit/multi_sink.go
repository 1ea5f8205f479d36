package audit

import (
	"context"
	"errors"

	"github.com/farmadist/backend/internal/domain/audit"
)

// MultiSink delivers every event to each of its sinks.
// A failing sink does not stop delivery to the others.
type MultiSink struct {
	sinks []audit.Sink
}

// NewMultiSink creates a MultiSink, skipping nil sinks
func NewMultiSink(sinks ...audit.Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Record forwards to every sink and joins their errors
func (m *MultiSink) Record(ctx context.Context, e audit.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of sinks
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

var _ audit.Sink = (*MultiSink)(nil)

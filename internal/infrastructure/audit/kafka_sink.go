package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the sink needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the audit topic writer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// NewKafkaWriter builds a writer for the audit topic.
// Events of one entity share a partition, so they stay ordered.
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		BatchSize:              100,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// kafkaPayload is the wire form of an audit event
type kafkaPayload struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     string    `json:"detail"`
}

// KafkaSink publishes audit events as JSON messages keyed by entity id
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaSink creates a KafkaSink
func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// Record publishes one event
func (s *KafkaSink) Record(ctx context.Context, e audit.Event) error {
	payload, err := json.Marshal(kafkaPayload{
		ID:         e.ID.String(),
		Operation:  string(e.Operation),
		EntityType: e.EntityType,
		EntityID:   e.EntityID.String(),
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt,
		Detail:     e.Detail,
	})
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.EntityID.String()),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(e.Operation)},
			{Key: "entity_type", Value: []byte(e.EntityType)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish audit event %s: %w", e.ID, err)
	}
	return nil
}

// Close flushes and closes the writer
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

var _ audit.Sink = (*KafkaSink)(nil)

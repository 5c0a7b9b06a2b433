package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes snapshots to a topic keyed by session id so one
// session's updates stay on one partition in order.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.SnapshotPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{writer: w, logger: logger, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, s domain.ImpactSnapshot) (err error) {
	defer obs.Time(ctx, "publisher.kafka.Publish")(&err)

	evt, err := NewEvent(s, p.now())
	if err != nil {
		return err
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(s.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s snapshot: %w", s.Kind, err)
	}

	p.logger.Debug("snapshot published",
		zap.String("type", evt.Type),
		zap.String("session_id", s.SessionID),
		zap.Uint64("epoch", s.Epoch),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

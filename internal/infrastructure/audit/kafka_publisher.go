// Package audit publishes token lifecycle audit events to Kafka.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/pkg/logger"
)

// KafkaConfig holds the audit producer settings.
type KafkaConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Brokers      []string      `json:"brokers" yaml:"brokers" mapstructure:"brokers"`
	Topic        string        `json:"topic" yaml:"topic" mapstructure:"topic"`
	BatchSize    int           `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
	BatchTimeout time.Duration `json:"batch_timeout" yaml:"batch_timeout" mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	RequiredAcks int           `json:"required_acks" yaml:"required_acks" mapstructure:"required_acks"`
}

var _ service.AuditService = (*KafkaPublisher)(nil)

// KafkaPublisher writes audit events to one Kafka topic, keyed by tenant so
// a tenant's events preserve order within a partition. Publishing is
// best-effort: failures are logged, never propagated.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    logger.Logger
}

// NewKafkaPublisher builds a producer from the config.
func NewKafkaPublisher(cfg KafkaConfig, log logger.Logger) *KafkaPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = "tokengate.audit"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Async:        true,
	}
	return &KafkaPublisher{
		writer: writer,
		log:    log.WithComponent("audit_kafka"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *models.AuditEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error(ctx, "failed to encode audit event", err,
			logger.String("event_type", string(event.EventType)),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TenantID),
		Value: payload,
	})
	if err != nil {
		p.log.Error(ctx, "failed to publish audit event", err,
			logger.String("event_type", string(event.EventType)),
			logger.String("tenant_id", event.TenantID),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

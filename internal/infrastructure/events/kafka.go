// Package events delivers fire-and-forget notifications to downstream
// automation. Publish failures are logged, never propagated: the
// payment operation already committed.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/clearbill/payments/internal/config"
	"github.com/clearbill/payments/internal/domain"
)

// KafkaPublisher writes events to a single Kafka topic, keyed by event
// type so per-type ordering is preserved within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaPublisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    cfg.Topic,
		logger:   logger,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "type", event.Type, "error", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Type),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to publish event", "type", event.Type, "error", err)
		return
	}

	p.logger.Debug("event published",
		"type", event.Type, "partition", partition, "offset", offset)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

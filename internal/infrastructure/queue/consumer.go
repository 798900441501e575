package queue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/config"
)

// Consumer reads the command topic through a consumer group and feeds
// each message to the dispatcher. Retry is queue redelivery: a message
// that fails with a retryable error is not marked, so the group picks
// it up again; everything else is marked and logged.
type Consumer struct {
	group      sarama.ConsumerGroup
	topic      string
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewConsumer(cfg config.KafkaConfig, dispatcher *Dispatcher, logger *slog.Logger) (*Consumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Return.Errors = true
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:      group,
		topic:      cfg.CommandTopic,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Start consumes until ctx is cancelled. Consume returns on rebalance;
// the loop re-joins until shutdown.
func (c *Consumer) Start(ctx context.Context) {
	handler := &groupHandler{dispatcher: c.dispatcher, logger: c.logger}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.logger.Error("consumer group session failed", "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		err := h.dispatcher.Dispatch(session.Context(), msg.Value)
		if err == nil {
			session.MarkMessage(msg, "")
			continue
		}

		category := application.CategorizeError(err)
		if application.IsRetryable(err) {
			h.logger.Warn("command failed, leaving for redelivery",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset,
				"category", category, "error", err)
			return err
		}

		h.logger.Error("command rejected",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset,
			"category", category, "error", err)
		session.MarkMessage(msg, "")
	}
	return nil
}

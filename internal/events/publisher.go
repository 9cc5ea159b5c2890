package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fruitbox-be/internal/config"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// OrderStatusEvent is published whenever an order reaches a settled state.
type OrderStatusEvent struct {
	EventID           string    `json:"event_id"`
	ProviderOrderID   string    `json:"provider_order_id"`
	Status            string    `json:"status"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty"`
	AmountMinor       int64     `json:"amount_minor"`
	Currency          string    `json:"currency"`
	OccurredAt        time.Time `json:"occurred_at"`
}

func NewOrderStatusEvent(providerOrderID, status, providerPaymentID string, amountMinor int64, currency string) OrderStatusEvent {
	return OrderStatusEvent{
		EventID:           uuid.New().String(),
		ProviderOrderID:   providerOrderID,
		Status:            status,
		ProviderPaymentID: providerPaymentID,
		AmountMinor:       amountMinor,
		Currency:          currency,
		OccurredAt:        time.Now().UTC(),
	}
}

type Publisher interface {
	PublishOrderStatus(ctx context.Context, evt OrderStatusEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers
// are configured.
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled() {
		logger.Info("Kafka brokers not configured, order events disabled")
		return NewNoopPublisher()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrderTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return newKafkaPublisher(writer, cfg.OrderTopic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *zap.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: w, topic: topic, logger: logger}
}

// PublishOrderStatus keys messages by provider order id so every status
// change of one order lands on the same partition, in order.
func (p *kafkaPublisher) PublishOrderStatus(ctx context.Context, evt OrderStatusEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(evt.ProviderOrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.status")},
		},
	})
	if err != nil {
		p.logger.Error("Failed to publish order event",
			zap.String("topic", p.topic),
			zap.String("provider_order_id", evt.ProviderOrderID),
			zap.Error(err),
		)
		return fmt.Errorf("publish order event: %w", err)
	}

	p.logger.Debug("Order event published",
		zap.String("topic", p.topic),
		zap.String("provider_order_id", evt.ProviderOrderID),
		zap.String("status", evt.Status),
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderStatus(context.Context, OrderStatusEvent) error { return nil }

func (noopPublisher) Close() error { return nil }

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
	"github.com/doma-shop/doma-checkout-service/internal/config"
)

// Ensure KafkaPublisher implements checkout.EventPublisher
var _ checkout.EventPublisher = (*KafkaPublisher)(nil)

// EventType represents the type of checkout event.
type EventType string

const (
	EventTypeCheckoutCompleted      EventType = "checkout.completed"
	EventTypeCheckoutPaymentPending EventType = "checkout.payment_pending"
	EventTypeCheckoutFailed         EventType = "checkout.failed"
)

// CheckoutEvent represents a checkout lifecycle event.
type CheckoutEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	AttemptID string          `json:"attempt_id"`
	OrderID   int64           `json:"order_id,omitempty"`
	BuyerID   int64           `json:"buyer_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes checkout events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.CheckoutTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// PublishCheckoutCompleted publishes a checkout completed event.
func (p *KafkaPublisher) PublishCheckoutCompleted(ctx context.Context, attemptID string, orderID, buyerID int64) error {
	event := newEvent(EventTypeCheckoutCompleted, attemptID, orderID, buyerID, nil)
	return p.publish(ctx, event)
}

// PublishCheckoutPaymentPending publishes an event for an order that was
// created but whose payment is still unverified.
func (p *KafkaPublisher) PublishCheckoutPaymentPending(ctx context.Context, attemptID string, orderID, buyerID int64) error {
	event := newEvent(EventTypeCheckoutPaymentPending, attemptID, orderID, buyerID, nil)
	return p.publish(ctx, event)
}

// PublishCheckoutFailed publishes a checkout failed event.
func (p *KafkaPublisher) PublishCheckoutFailed(ctx context.Context, attemptID string, buyerID int64, reason string) error {
	data, err := json.Marshal(struct {
		Reason string `json:"reason"`
	}{Reason: reason})
	if err != nil {
		return err
	}

	event := newEvent(EventTypeCheckoutFailed, attemptID, 0, buyerID, data)
	return p.publish(ctx, event)
}

func newEvent(eventType EventType, attemptID string, orderID, buyerID int64, data json.RawMessage) *CheckoutEvent {
	return &CheckoutEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		AttemptID: attemptID,
		OrderID:   orderID,
		BuyerID:   buyerID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *CheckoutEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.AttemptID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("attempt_id", event.AttemptID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("attempt_id", event.AttemptID),
	)
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

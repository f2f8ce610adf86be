package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
	"github.com/doma-shop/doma-checkout-service/internal/config"
)

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "payment.completed"
	PaymentEventFailed    PaymentEventType = "payment.failed"
	PaymentEventRefunded  PaymentEventType = "payment.refunded"
)

// PaymentEvent represents a payment-related event from the Payment Service.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	PaymentID int64            `json:"payment_id"`
	OrderID   int64            `json:"order_id"`
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// KafkaConsumer consumes payment events and settles awaiting-payment
// checkout attempts in the journal.
type KafkaConsumer struct {
	reader  *kafka.Reader
	journal checkout.Journal
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based payment event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, journal checkout.Journal, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:  reader,
		journal: journal,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start begins consuming events.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", zap.Error(err))
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.Type {
	case PaymentEventCompleted:
		c.settle(ctx, &event, checkout.StateCompleted)
	case PaymentEventFailed:
		// The attempt stays awaiting payment; the buyer retries via the API.
		c.logger.Info("Payment failed for order",
			zap.Int64("order_id", event.OrderID),
			zap.String("event_id", event.ID),
		)
	case PaymentEventRefunded:
		c.logger.Info("Payment refunded for order",
			zap.Int64("order_id", event.OrderID),
			zap.String("event_id", event.ID),
		)
	default:
		c.logger.Debug("Ignoring unknown event type", zap.String("type", string(event.Type)))
	}
}

func (c *KafkaConsumer) settle(ctx context.Context, event *PaymentEvent, state checkout.State) {
	if err := c.journal.SettleOrder(ctx, event.OrderID, state); err != nil {
		c.logger.Error("Failed to settle checkout attempt",
			zap.Int64("order_id", event.OrderID),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("Handled payment event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("order_id", event.OrderID),
	)
}

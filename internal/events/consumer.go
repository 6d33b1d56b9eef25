package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "payment.completed"
	PaymentEventFailed    PaymentEventType = "payment.failed"
	PaymentEventRefunded  PaymentEventType = "payment.refunded"
)

// PaymentEvent is emitted by the card terminal integration.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	PaymentID string           `json:"payment_id"`
	OrderID   string           `json:"order_id"`
	Status    string           `json:"status"`
	Amount    decimal.Decimal  `json:"amount"`
	Reason    string           `json:"reason,omitempty"`
	Data      json.RawMessage  `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// PaymentHandler applies payment outcomes to orders.
type PaymentHandler interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error)
	RefundOrder(ctx context.Context, id string, amount decimal.Decimal, reason string) (*models.Order, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer consumes payment events from Kafka.
type KafkaConsumer struct {
	reader   messageReader
	handler  PaymentHandler
	logger   *logging.LoggerV2
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewKafkaConsumer creates a new Kafka-based event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, handler PaymentHandler, logger *logging.LoggerV2) *KafkaConsumer {
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
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start blocks consuming events until ctx is done or Stop is called.
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
				select {
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer. It is safe to call more than once.
func (c *KafkaConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.reader.Close()
	})
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	switch event.Type {
	case PaymentEventCompleted:
		c.handlePaymentStatus(ctx, &event, models.PaymentStatusPaid)
	case PaymentEventFailed:
		c.handlePaymentStatus(ctx, &event, models.PaymentStatusUnpaid)
	case PaymentEventRefunded:
		c.handlePaymentRefunded(ctx, &event)
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
	}
}

func (c *KafkaConsumer) handlePaymentStatus(ctx context.Context, event *PaymentEvent, status models.PaymentStatus) {
	c.logger.Info("Handling payment event", logging.Fields{
		"type":       event.Type,
		"payment_id": event.PaymentID,
		"order_id":   event.OrderID,
	})

	if _, err := c.handler.UpdatePaymentStatus(ctx, event.OrderID, status); err != nil {
		c.logger.Error("Failed to update payment status", logging.Fields{
			"order_id": event.OrderID,
			"error":    err.Error(),
		})
	}
}

func (c *KafkaConsumer) handlePaymentRefunded(ctx context.Context, event *PaymentEvent) {
	c.logger.Info("Handling payment refunded event", logging.Fields{
		"payment_id": event.PaymentID,
		"order_id":   event.OrderID,
	})

	amount := event.Amount
	if !amount.IsPositive() {
		order, err := c.handler.GetOrder(ctx, event.OrderID)
		if err != nil {
			c.logger.Error("Failed to load order for refund", logging.Fields{
				"order_id": event.OrderID,
				"error":    err.Error(),
			})
			return
		}
		amount = order.TotalAmount
	}

	reason := event.Reason
	if reason == "" {
		reason = "Refunded by payment terminal"
	}

	if _, err := c.handler.RefundOrder(ctx, event.OrderID, amount, reason); err != nil {
		c.logger.Error("Failed to refund order", logging.Fields{
			"order_id": event.OrderID,
			"error":    err.Error(),
		})
	}
}

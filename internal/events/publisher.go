package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderVoided        EventType = "order.voided"
	EventTypeOrderRefunded      EventType = "order.refunded"
	EventTypeZReport            EventType = "register.z_report"
)

// OrderEvent is the envelope for everything published on the orders topic.
// Register events reuse it with OrderID holding the register id.
type OrderEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	OrderID       string            `json:"order_id"`
	CustomerID    string            `json:"customer_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	storeID string
	logger  *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, storeID string, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.OrdersTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{
		writer:  writer,
		topic:   cfg.OrdersTopic,
		storeID: storeID,
		logger:  logger,
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.logger.Debug("Publishing order created event", logging.Fields{
		"order_id": order.ID,
	})

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderCreated, order.ID, order.CustomerID, data))
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	p.logger.Debug("Publishing order status changed event", logging.Fields{
		"order_id":        order.ID,
		"previous_status": previousStatus,
		"new_status":      order.Status,
	})

	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderStatusChanged, order.ID, order.CustomerID, data))
}

func (p *KafkaPublisher) PublishOrderVoided(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderVoided, order.ID, order.CustomerID, data))
}

// PublishOrderRefunded carries the refunded amount separately since an
// order can be refunded in part.
func (p *KafkaPublisher) PublishOrderRefunded(ctx context.Context, order *models.Order, amount decimal.Decimal, reason string) error {
	p.logger.Debug("Publishing order refunded event", logging.Fields{
		"order_id": order.ID,
		"amount":   amount.String(),
	})

	payload := struct {
		Order  *models.Order   `json:"order"`
		Amount decimal.Decimal `json:"amount"`
		Reason string          `json:"reason"`
	}{
		Order:  order,
		Amount: amount,
		Reason: reason,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderRefunded, order.ID, order.CustomerID, data))
}

func (p *KafkaPublisher) PublishZReport(ctx context.Context, report *models.ZReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.createEvent(ctx, EventTypeZReport, report.RegisterID, "", data))
}

func (p *KafkaPublisher) createEvent(ctx context.Context, eventType EventType, orderID, customerID string, data []byte) *OrderEvent {
	event := &OrderEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Data:       data,
		Metadata:   make(map[string]string),
		Timestamp:  time.Now().UTC(),
	}
	if p.storeID != "" {
		event.Metadata["store_id"] = p.storeID
	}

	event.CorrelationID = middleware.RequestIDFromContext(ctx)

	return event
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*OrderEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*OrderEvent, 0),
	}
}

func (m *MockEventPublisher) record(t EventType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, &OrderEvent{Type: t, OrderID: id})
	return nil
}

// Types returns the recorded event types in order.
func (m *MockEventPublisher) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return m.record(EventTypeOrderCreated, order.ID)
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	return m.record(EventTypeOrderStatusChanged, order.ID)
}

func (m *MockEventPublisher) PublishOrderVoided(ctx context.Context, order *models.Order) error {
	return m.record(EventTypeOrderVoided, order.ID)
}

func (m *MockEventPublisher) PublishOrderRefunded(ctx context.Context, order *models.Order, amount decimal.Decimal, reason string) error {
	return m.record(EventTypeOrderRefunded, order.ID)
}

func (m *MockEventPublisher) PublishZReport(ctx context.Context, report *models.ZReport) error {
	return m.record(EventTypeZReport, report.RegisterID)
}

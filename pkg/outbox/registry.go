package outbox

import (
	"fmt"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// EventRegistry routes event types to Pub/Sub topics.
type EventRegistry struct {
	topicsByEvent map[enums.OutboxEventType]string
}

// NewEventRegistry builds the routing table from the Pub/Sub configuration.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	topics := map[enums.OutboxEventType]string{
		enums.EventOrderCreated:       cfg.OrderEventsTopic,
		enums.EventOrderPriced:        cfg.OrderEventsTopic,
		enums.EventOrderStatusChanged: cfg.OrderEventsTopic,
		enums.EventOrderCancelled:     cfg.OrderEventsTopic,
		enums.EventOrderCompleted:     cfg.OrderEventsTopic,
		enums.EventPaymentReported:    cfg.PaymentEventsTopic,
		enums.EventPaymentConfirmed:   cfg.PaymentEventsTopic,
		enums.EventPaymentRejected:    cfg.PaymentEventsTopic,
		enums.EventBalanceChanged:     cfg.BalanceEventsTopic,
		enums.EventPromoApplied:       cfg.OrderEventsTopic,
		enums.EventPromoReleased:      cfg.OrderEventsTopic,
	}
	for eventType, topic := range topics {
		if topic == "" {
			return nil, fmt.Errorf("no topic configured for event type %q", eventType)
		}
	}
	return &EventRegistry{topicsByEvent: topics}, nil
}

// TopicFor resolves the topic an event type publishes to.
func (r *EventRegistry) TopicFor(eventType enums.OutboxEventType) (string, error) {
	topic, ok := r.topicsByEvent[eventType]
	if !ok {
		return "", fmt.Errorf("unroutable event type %q", eventType)
	}
	return topic, nil
}

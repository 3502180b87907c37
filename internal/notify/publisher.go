// Package notify broadcasts new orders to connected admin dashboards.
//
// Checkout publishes an order event on a watermill topic; the Hub subscribes
// to that topic and fans every event out to its websocket clients.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"coffee-shop/internal/domain"
)

const (
	// OrdersTopic carries one message per placed order.
	OrdersTopic = "orders.new"

	EventNewOrder = "NEW_ORDER"
)

// Event is the JSON frame sent to websocket clients.
type Event struct {
	Type      string       `json:"type"`
	Order     domain.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// Publisher turns placed orders into watermill messages.
type Publisher struct {
	pub message.Publisher
	now func() time.Time
}

func NewPublisher(pub message.Publisher) (*Publisher, error) {
	if pub == nil {
		return nil, errors.New("notify: publisher must not be nil")
	}
	return &Publisher{pub: pub, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (p *Publisher) PublishOrder(ctx context.Context, o domain.Order) error {
	payload, err := json.Marshal(Event{Type: EventNewOrder, Order: o, Timestamp: p.now()})
	if err != nil {
		return fmt.Errorf("notify: encode order event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	if err := p.pub.Publish(OrdersTopic, msg); err != nil {
		return fmt.Errorf("notify: publish order event: %w", err)
	}
	return nil
}

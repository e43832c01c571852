// Package events publishes cart and checkout activity for the brand
// team's analytics. Publishing is strictly best-effort: the shop works
// the same with no brokers configured.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const topic = "storefront-activity"

type Activity struct {
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	LineItems int       `json:"line_items,omitempty"`
	URL       string    `json:"url,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a disabled (no-op) publisher when no brokers are
// configured.
func NewPublisher(brokers ...string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) ItemAdded(ctx context.Context, sessionID, productID string, quantity int) {
	p.publish(ctx, Activity{
		Kind:      "item_added",
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		At:        time.Now(),
	})
}

func (p *Publisher) CheckoutCreated(ctx context.Context, sessionID, url string, lineItems int) {
	p.publish(ctx, Activity{
		Kind:      "checkout_created",
		SessionID: sessionID,
		URL:       url,
		LineItems: lineItems,
		At:        time.Now(),
	})
}

func (p *Publisher) publish(ctx context.Context, activity Activity) {
	if p == nil || p.writer == nil {
		return
	}

	value, err := json.Marshal(activity)
	if err != nil {
		log.Printf("failed to marshal activity event: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(activity.SessionID),
		Value: value,
	})
	if err != nil {
		log.Printf("failed to publish %s event: %v", activity.Kind, err)
	}
}

func (p *Publisher) Close() {
	if p == nil || p.writer == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing activity writer: %v", err)
	}
}

package events

import (
	"context"
	"testing"
)

func TestDisabledPublisherIsNoOp(t *testing.T) {
	p := NewPublisher()

	// Must not panic or block with no brokers configured.
	p.ItemAdded(context.Background(), "s1", "tee-01", 2)
	p.CheckoutCreated(context.Background(), "s1", "https://shop.example/cart/1:2", 1)
	p.Close()
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var p *Publisher

	p.ItemAdded(context.Background(), "s1", "tee-01", 2)
	p.Close()
}

package outbound

import (
	"context"

	"github.com/google/uuid"
)

// EventType represents the type of change event being broadcasted
type EventType string

const (
	EventTypeProductCreated EventType = "product.created"
	EventTypeProductUpdated EventType = "product.updated"
	EventTypeBidPlaced      EventType = "bid.placed"
	EventTypeAuctionEnded   EventType = "auction.ended"
	EventTypePaymentUpdated EventType = "payment.updated"
	EventTypeError          EventType = "error"
)

// Event represents a row-level change pushed to subscribed clients
type Event struct {
	Type      EventType              `json:"type"`
	ProductID uuid.UUID              `json:"product_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for the realtime change feed
type Broadcaster interface {
	// Subscribe subscribes a client to change events for a specific product.
	// When a client subscribes to multiple products, all events are delivered
	// to the same channel.
	Subscribe(ctx context.Context, productID uuid.UUID, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from events for a specific product
	Unsubscribe(ctx context.Context, productID uuid.UUID, clientID string) error

	// Publish publishes an event to all subscribers of a product
	Publish(ctx context.Context, productID uuid.UUID, event Event) error

	// GetSubscribers returns the list of client IDs subscribed to a product
	GetSubscribers(ctx context.Context, productID uuid.UUID) ([]string, error)

	// IsSubscribed checks if a client is subscribed to a product
	IsSubscribed(ctx context.Context, productID uuid.UUID, clientID string) bool
}

package memory

import (
	"context"
	"sync"
	"time"

	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
)

// Broadcaster is an in-process implementation of the change feed, used by
// tests and the storage-free development mode. Delivery semantics match the
// Redis broadcaster: per-product channels, one event channel per client,
// events dropped when a client's channel is full.
type Broadcaster struct {
	mu                sync.RWMutex
	subscribers       map[string]chan outbound.Event // clientID -> channel
	clientsToProducts map[string]map[string]bool     // clientID -> productID -> subscribed
}

// NewBroadcaster creates a new in-process broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers:       make(map[string]chan outbound.Event),
		clientsToProducts: make(map[string]map[string]bool),
	}
}

// Subscribe subscribes a client to change events for a product
func (b *Broadcaster) Subscribe(ctx context.Context, productID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[clientID] == nil {
		b.subscribers[clientID] = eventChan
	}
	if b.clientsToProducts[clientID] == nil {
		b.clientsToProducts[clientID] = make(map[string]bool)
	}
	b.clientsToProducts[clientID][productID.String()] = true
	return nil
}

// Unsubscribe unsubscribes a client from events for a product
func (b *Broadcaster) Unsubscribe(ctx context.Context, productID uuid.UUID, clientID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if products, ok := b.clientsToProducts[clientID]; ok {
		delete(products, productID.String())
		if len(products) == 0 {
			delete(b.clientsToProducts, clientID)
			delete(b.subscribers, clientID)
		}
	}
	return nil
}

// Publish delivers an event to every client subscribed to the product
func (b *Broadcaster) Publish(ctx context.Context, productID uuid.UUID, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for clientID, products := range b.clientsToProducts {
		if !products[productID.String()] {
			continue
		}
		if eventChan, ok := b.subscribers[clientID]; ok {
			select {
			case eventChan <- event:
			default:
				// slow client, drop the event
			}
		}
	}
	return nil
}

// GetSubscribers returns the client IDs subscribed to a product
func (b *Broadcaster) GetSubscribers(ctx context.Context, productID uuid.UUID) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var subscribers []string
	for clientID, products := range b.clientsToProducts {
		if products[productID.String()] {
			subscribers = append(subscribers, clientID)
		}
	}
	return subscribers, nil
}

// IsSubscribed checks if a client is subscribed to a product
func (b *Broadcaster) IsSubscribed(ctx context.Context, productID uuid.UUID, clientID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	products, ok := b.clientsToProducts[clientID]
	if !ok {
		return false
	}
	return products[productID.String()]
}

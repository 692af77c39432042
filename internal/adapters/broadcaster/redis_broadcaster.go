package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroadcaster implements the change feed using Redis pub/sub.
// Events published for a product fan out to every connected client that
// subscribed to that product's channel, across all service instances.
type RedisBroadcaster struct {
	client            *redis.Client
	subscribers       map[string]chan outbound.Event // clientID -> local channel
	pubsubs           map[string]*redis.PubSub       // clientID -> pubsub instance
	clientsToProducts map[string]map[string]bool     // clientID -> productID -> subscribed
	mu                sync.RWMutex
	ctx               context.Context
	cancel            context.CancelFunc
	logger            zerolog.Logger
}

type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

func NewBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisBroadcaster{
		client:            params.RedisClient,
		subscribers:       make(map[string]chan outbound.Event),
		pubsubs:           make(map[string]*redis.PubSub),
		clientsToProducts: make(map[string]map[string]bool),
		ctx:               ctx,
		cancel:            cancel,
		logger:            params.Logger.With().Str("component", "redis_broadcaster").Logger(),
	}
}

func channelName(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID.String())
}

// Subscribe subscribes a client to change events for a specific product
func (r *RedisBroadcaster) Subscribe(ctx context.Context, productID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clientsToProducts[clientID] != nil && r.clientsToProducts[clientID][productID.String()] {
		r.logger.Info().
			Str("client_id", clientID).
			Str("product_id", productID.String()).
			Msg("Client already subscribed to product")
		return nil
	}

	// Store the event channel if this is the first subscription
	if r.subscribers[clientID] == nil {
		r.subscribers[clientID] = eventChan
	}

	if r.clientsToProducts[clientID] == nil {
		r.clientsToProducts[clientID] = make(map[string]bool)
	}
	r.clientsToProducts[clientID][productID.String()] = true

	// Get or create the pubsub connection for this client
	var pubsub *redis.PubSub
	if existing, exists := r.pubsubs[clientID]; exists {
		pubsub = existing
	} else {
		pubsub = r.client.Subscribe(ctx)
		r.pubsubs[clientID] = pubsub

		go r.listenForRedisMessages(pubsub, clientID, eventChan)
	}

	if err := pubsub.Subscribe(ctx, channelName(productID)); err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID).Str("product_id", productID.String()).Msg("Failed to subscribe to Redis channel")
		return err
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("product_id", productID.String()).
		Msg("Client subscribed to product via Redis")
	return nil
}

// Unsubscribe unsubscribes a client from events for a specific product
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, productID uuid.UUID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clientProducts, exists := r.clientsToProducts[clientID]; exists {
		delete(clientProducts, productID.String())

		// If no more products, clean up the client entry. The event channel
		// belongs to the ws handler, which closes it on disconnect; only the
		// reference is dropped here so the client can subscribe again later.
		if len(clientProducts) == 0 {
			delete(r.clientsToProducts, clientID)
			delete(r.subscribers, clientID)

			if pubsub, exists := r.pubsubs[clientID]; exists {
				if err := pubsub.Close(); err != nil {
					r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
				}
				delete(r.pubsubs, clientID)
			}
		} else {
			if pubsub, exists := r.pubsubs[clientID]; exists {
				if err := pubsub.Unsubscribe(ctx, channelName(productID)); err != nil {
					r.logger.Error().Err(err).Str("client_id", clientID).Str("product_id", productID.String()).Msg("Error unsubscribing from Redis channel")
				}
			}
		}
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("product_id", productID.String()).
		Msg("Client unsubscribed from product")
	return nil
}

// Publish publishes an event to all subscribers of a product via Redis
func (r *RedisBroadcaster) Publish(ctx context.Context, productID uuid.UUID, event outbound.Event) error {
	channel := channelName(productID)

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := r.client.Publish(ctx, channel, eventJSON)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Info().
		Str("event_type", string(event.Type)).
		Str("product_id", productID.String()).
		Int64("subscriber_count", result.Val()).
		Msg("Published event to product channel")

	return nil
}

// GetSubscribers returns the client IDs with at least one subscription
func (r *RedisBroadcaster) GetSubscribers(ctx context.Context, productID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var subscribers []string
	for clientID, products := range r.clientsToProducts {
		if products[productID.String()] {
			subscribers = append(subscribers, clientID)
		}
	}

	return subscribers, nil
}

// IsSubscribed checks if a client is subscribed to a product
func (r *RedisBroadcaster) IsSubscribed(ctx context.Context, productID uuid.UUID, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clientProducts, exists := r.clientsToProducts[clientID]
	if !exists {
		return false
	}

	return clientProducts[productID.String()]
}

// listenForRedisMessages forwards Redis messages to the client's local channel
func (r *RedisBroadcaster) listenForRedisMessages(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("client_id", clientID).Msg("Redis message listener panic for client")
		}
	}()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Info().Str("client_id", clientID).Msg("Redis channel closed for client")
				return
			}

			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal Redis message for client")
				continue
			}

			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Local channel full for client, dropping event")
			}

		case <-r.ctx.Done():
			r.logger.Info().Str("client_id", clientID).Msg("Redis broadcaster context cancelled for client")
			return
		}
	}
}

func (r *RedisBroadcaster) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Event channels stay with the ws handler, drop the references only
	r.subscribers = make(map[string]chan outbound.Event)
	r.clientsToProducts = make(map[string]map[string]bool)

	for clientID, pubsub := range r.pubsubs {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}

	return r.client.Close()
}

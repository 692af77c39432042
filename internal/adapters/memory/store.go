// Package memory provides concurrency-safe in-memory implementations of the
// outbound repositories. They back the unit tests and the storage-free
// development mode; semantics mirror the Postgres adapters, including the
// transactional behavior of bid placement and auction closing.
package memory

import (
	"sync"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
)

// Store holds all in-memory collections behind a single lock so that
// multi-row operations observe a consistent snapshot.
type Store struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*product.Product
	bids     map[uuid.UUID]*bid.Bid
	profiles map[uuid.UUID]*shared.Profile
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]*product.Product),
		bids:     make(map[uuid.UUID]*bid.Bid),
		profiles: make(map[uuid.UUID]*shared.Profile),
	}
}

// Products returns the product repository view of the store
func (s *Store) Products() outbound.ProductRepository {
	return &productRepo{store: s}
}

// Bids returns the bid repository view of the store
func (s *Store) Bids() outbound.BidRepository {
	return &bidRepo{store: s}
}

// Profiles returns the profile repository view of the store
func (s *Store) Profiles() outbound.ProfileRepository {
	return &profileRepo{store: s}
}

func copyProduct(p *product.Product) *product.Product {
	c := *p
	return &c
}

func copyBid(b *bid.Bid) *bid.Bid {
	c := *b
	return &c
}

func copyProfile(p *shared.Profile) *shared.Profile {
	c := *p
	return &c
}

package outbound

import (
	"context"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product catalog operations
type ProductRepository interface {
	// Create creates a new product listing
	Create(ctx context.Context, product *product.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)

	// List retrieves a page of products with an optional status filter
	List(ctx context.Context, status *product.Status, page, pageSize int) ([]*product.Product, error)

	// Update updates a product listing
	Update(ctx context.Context, product *product.Product) error

	// Delete removes a product listing
	Delete(ctx context.Context, id uuid.UUID) error
}

// BidRepository defines the interface for the bid ledger
type BidRepository interface {
	// Create appends a new bid to the ledger
	Create(ctx context.Context, bid *bid.Bid) error

	// GetByID retrieves a bid by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error)

	// ListForProduct retrieves all bids for a product,
	// ordered by amount descending, earliest first on ties
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]*bid.Bid, error)

	// ListForProductWithBidder retrieves all bids for a product joined
	// with bidder name and email for the admin view
	ListForProductWithBidder(ctx context.Context, productID uuid.UUID) ([]*bid.WithBidder, error)

	// ListForBidder retrieves all bids placed by a bidder, newest first
	ListForBidder(ctx context.Context, bidderID uuid.UUID) ([]*bid.Bid, error)

	// GetHighestActive retrieves the top-ranked active bid for a product
	GetHighestActive(ctx context.Context, productID uuid.UUID) (*bid.Bid, error)

	// Update updates a bid's status and payment fields
	Update(ctx context.Context, bid *bid.Bid) error

	// PlaceBidOCC inserts a bid and raises the product's current price in a
	// single transaction, using optimistic concurrency control: the write is
	// rejected if the product's price moved since expectedCurrentPrice was read
	PlaceBidOCC(ctx context.Context, bid *bid.Bid, expectedCurrentPrice float64) error

	// CloseAuction atomically ends a product's auction: marks the product
	// ended, promotes the winning bid to won and demotes the remaining active
	// bids to ended. A product that is already ended is rejected, so a second
	// invocation can never change the winner selected by the first.
	CloseAuction(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error)
}

// ProfileRepository defines the interface for account data operations
type ProfileRepository interface {
	// GetByID retrieves a profile by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error)

	// Create creates a new profile
	Create(ctx context.Context, profile *shared.Profile) error

	// Update updates a profile
	Update(ctx context.Context, profile *shared.Profile) error
}

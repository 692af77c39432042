package inbound

import (
	"context"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// CatalogService defines the interface for product catalog operations
type CatalogService interface {
	// CreateProduct creates a new product listing (admin only)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*product.Product, error)

	// GetProduct retrieves a product by ID
	GetProduct(ctx context.Context, productID uuid.UUID) (*product.Product, error)

	// ListProducts retrieves a page of products
	ListProducts(ctx context.Context, req ListProductsRequest) ([]*product.Product, error)

	// UpdateProduct updates listing fields (admin only)
	UpdateProduct(ctx context.Context, req UpdateProductRequest) (*product.Product, error)

	// DeleteProduct removes a listing (admin only)
	DeleteProduct(ctx context.Context, adminID, productID uuid.UUID) error
}

// LedgerService defines the interface for bid ledger operations
type LedgerService interface {
	// PlaceBid validates and appends a new bid
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*bid.Bid, error)

	// ListBidsForProduct retrieves bids for a product, highest first
	ListBidsForProduct(ctx context.Context, productID uuid.UUID) ([]*bid.Bid, error)

	// ListBiddersForProduct retrieves bids joined with bidder details (admin only)
	ListBiddersForProduct(ctx context.Context, adminID, productID uuid.UUID) ([]*bid.WithBidder, error)

	// ListBidsForBidder retrieves a bidder's bids, newest first
	ListBidsForBidder(ctx context.Context, bidderID uuid.UUID) ([]*bid.Bid, error)

	// DebugProductBids reports the bid and payment state of a product (admin only)
	DebugProductBids(ctx context.Context, adminID, productID uuid.UUID) (*ProductBidsReport, error)
}

// CloserService defines the interface for ending auctions
type CloserService interface {
	// CloseAuction ends a product's auction and assigns the winner (admin only)
	CloseAuction(ctx context.Context, adminID, productID uuid.UUID) (*shared.CloseResult, error)
}

// PaymentService defines the interface for the manual payment handshake
type PaymentService interface {
	// SubmitPayment records the winning bidder's payment contact
	SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*bid.Bid, error)

	// ConfirmPayment marks a won bid as paid (admin only)
	ConfirmPayment(ctx context.Context, adminID, bidID uuid.UUID) (*bid.Bid, error)

	// CancelPayment marks a won bid's payment as cancelled (admin only)
	CancelPayment(ctx context.Context, adminID, bidID uuid.UUID) (*bid.Bid, error)

	// SetBidStatus manually overrides a bid's status on an ended auction (admin only)
	SetBidStatus(ctx context.Context, req SetBidStatusRequest) (*bid.Bid, error)
}

// request to create a product listing
type CreateProductRequest struct {
	AdminID       uuid.UUID  `json:"admin_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	StartingPrice float64    `json:"starting_price"`
	EndTime       string     `json:"end_time,omitempty"`
	Category      string     `json:"category,omitempty"`
	Location      string     `json:"location,omitempty"`
	Condition     string     `json:"condition,omitempty"`
	SellerID      *uuid.UUID `json:"seller_id,omitempty"`
}

// request to list products
type ListProductsRequest struct {
	Status   *product.Status `json:"status,omitempty"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// request to update a product listing; nil fields are left unchanged
type UpdateProductRequest struct {
	AdminID     uuid.UUID `json:"admin_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	EndTime     *string   `json:"end_time,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Condition   *string   `json:"condition,omitempty"`
}

// request to place a bid
type PlaceBidRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	ClientID  string    `json:"client_id"`
	Amount    float64   `json:"amount"`
}

// request to submit payment contact for a won bid
type SubmitPaymentRequest struct {
	BidID    uuid.UUID `json:"bid_id"`
	BidderID uuid.UUID `json:"bidder_id"`
	Phone    string    `json:"phone"`
}

// request to override a bid's status on an ended auction
type SetBidStatusRequest struct {
	AdminID uuid.UUID  `json:"admin_id"`
	BidID   uuid.UUID  `json:"bid_id"`
	Status  bid.Status `json:"status"`
}

// ProductBidsReport summarizes the bid and payment state of a product
type ProductBidsReport struct {
	Product         *product.Product `json:"product"`
	Bids            []*bid.Bid       `json:"bids"`
	TotalBids       int              `json:"total_bids"`
	ActiveBids      int              `json:"active_bids"`
	WonBids         int              `json:"won_bids"`
	PendingPayments int              `json:"pending_payments"`
}

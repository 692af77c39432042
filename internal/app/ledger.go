package app

import (
	"context"
	"time"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/inbound"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LedgerService implements the bid ledger use cases
type LedgerService struct {
	bidRepo     outbound.BidRepository
	productRepo outbound.ProductRepository
	profileRepo outbound.ProfileRepository
	broadcaster outbound.Broadcaster
	logger      zerolog.Logger
}

type LedgerServiceParams struct {
	BidRepo     outbound.BidRepository
	ProductRepo outbound.ProductRepository
	ProfileRepo outbound.ProfileRepository
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

// NewLedgerService creates a new bid ledger service
func NewLedgerService(params LedgerServiceParams) *LedgerService {
	return &LedgerService{
		bidRepo:     params.BidRepo,
		productRepo: params.ProductRepo,
		profileRepo: params.ProfileRepo,
		broadcaster: params.Broadcaster,
		logger:      params.Logger.With().Str("component", "ledger_service").Logger(),
	}
}

// PlaceBid validates a bid proposal and appends it to the ledger.
// The bid amount must strictly exceed the product's current price; the insert
// and the price bump happen in one optimistic-concurrency transaction, so a
// concurrent bid that lands first makes this one fail and the bidder retries
// with a fresh amount.
func (service *LedgerService) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (*bid.Bid, error) {
	service.logger.Info().
		Str("product_id", req.ProductID.String()).
		Str("bidder_id", req.BidderID.String()).
		Float64("amount", req.Amount).
		Msg("Attempting to place bid")

	bidder, err := requireProfile(ctx, service.profileRepo, req.BidderID)
	if err != nil {
		service.logger.Warn().Err(err).Str("bidder_id", req.BidderID.String()).Msg("Bid rejected, bidder not authenticated")
		return nil, err
	}

	if req.Amount <= 0 {
		service.logger.Warn().Float64("amount", req.Amount).Msg("Invalid bid amount (must be > 0)")
		return nil, shared.ErrBidAmountInvalid
	}

	p, err := service.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		service.logger.Error().Err(err).Str("product_id", req.ProductID.String()).Msg("Product not found")
		return nil, err
	}

	if !p.CanBid() {
		service.logger.Warn().Str("product_id", req.ProductID.String()).Str("status", string(p.Status)).Msg("Product not accepting bids")
		return nil, shared.ErrProductNotAccepting
	}

	// Revalidate against the price read at click time; strict inequality
	if req.Amount <= p.CurrentPrice {
		service.logger.Warn().
			Str("product_id", req.ProductID.String()).
			Float64("current_price", p.CurrentPrice).
			Float64("new_bid_amount", req.Amount).
			Msg("Bid amount too low (must be higher than current price)")
		return nil, shared.ErrBidAmountTooLow
	}

	newBid := &bid.Bid{
		ID:        uuid.New(),
		ProductID: req.ProductID,
		BidderID:  bidder.ID,
		Amount:    req.Amount,
		Status:    bid.StatusActive,
		CreatedAt: time.Now(),
	}

	if err := service.bidRepo.PlaceBidOCC(ctx, newBid, p.CurrentPrice); err != nil {
		service.logger.Error().Err(err).Str("bid_id", newBid.ID.String()).Msg("Failed to place bid")
		return nil, err
	}

	event := outbound.Event{
		Type:      outbound.EventTypeBidPlaced,
		ProductID: req.ProductID,
		Data: map[string]interface{}{
			"bid_id":        newBid.ID,
			"bidder_id":     newBid.BidderID,
			"amount":        newBid.Amount,
			"current_price": newBid.Amount,
			"timestamp":     newBid.CreatedAt.Unix(),
		},
		Timestamp: newBid.CreatedAt.Unix(),
	}

	if err := service.broadcaster.Publish(ctx, req.ProductID, event); err != nil {
		// Log error but don't fail the bid placement
		service.logger.Error().Err(err).Str("bid_id", newBid.ID.String()).Msg("Failed to broadcast bid event")
	} else {
		service.logger.Info().
			Str("bid_id", newBid.ID.String()).
			Str("product_id", newBid.ProductID.String()).
			Str("bidder_id", newBid.BidderID.String()).
			Float64("amount", newBid.Amount).
			Msg("Bid placed successfully and broadcasted")
	}

	return newBid, nil
}

// ListBidsForProduct retrieves bids for a product ordered by amount
// descending, earliest first on ties
func (service *LedgerService) ListBidsForProduct(ctx context.Context, productID uuid.UUID) ([]*bid.Bid, error) {
	return service.bidRepo.ListForProduct(ctx, productID)
}

// ListBiddersForProduct retrieves bids joined with bidder profile details
// for the admin bidder view
func (service *LedgerService) ListBiddersForProduct(ctx context.Context, adminID, productID uuid.UUID) ([]*bid.WithBidder, error) {
	if _, err := requireAdmin(ctx, service.profileRepo, adminID); err != nil {
		return nil, err
	}

	return service.bidRepo.ListForProductWithBidder(ctx, productID)
}

// ListBidsForBidder retrieves a bidder's bids, newest first
func (service *LedgerService) ListBidsForBidder(ctx context.Context, bidderID uuid.UUID) ([]*bid.Bid, error) {
	if _, err := requireProfile(ctx, service.profileRepo, bidderID); err != nil {
		return nil, err
	}

	return service.bidRepo.ListForBidder(ctx, bidderID)
}

// DebugProductBids reports the full bid and payment state of a product (admin only)
func (service *LedgerService) DebugProductBids(ctx context.Context, adminID, productID uuid.UUID) (*inbound.ProductBidsReport, error) {
	if _, err := requireAdmin(ctx, service.profileRepo, adminID); err != nil {
		return nil, err
	}

	p, err := service.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	bids, err := service.bidRepo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	report := &inbound.ProductBidsReport{
		Product:   p,
		Bids:      bids,
		TotalBids: len(bids),
	}
	for _, b := range bids {
		switch b.Status {
		case bid.StatusActive:
			report.ActiveBids++
		case bid.StatusWon:
			report.WonBids++
		}
		if b.PaymentStatus == bid.PaymentPending {
			report.PendingPayments++
		}
	}

	service.logger.Debug().
		Str("product_id", productID.String()).
		Int("total_bids", report.TotalBids).
		Int("won_bids", report.WonBids).
		Msg("Product bids report generated")

	return report, nil
}

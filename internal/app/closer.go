package app

import (
	"context"
	"time"

	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CloserService finalizes auctions: it marks the product ended, promotes the
// winning bid and demotes the rest. The whole transition runs in one storage
// transaction, so closing is atomic and a product can only be closed once —
// re-invoking on an ended product fails with ErrAuctionAlreadyEnded and the
// winner chosen by the first close stands.
type CloserService struct {
	bidRepo     outbound.BidRepository
	profileRepo outbound.ProfileRepository
	broadcaster outbound.Broadcaster
	logger      zerolog.Logger
}

type CloserServiceParams struct {
	BidRepo     outbound.BidRepository
	ProfileRepo outbound.ProfileRepository
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

// NewCloserService creates a new auction closer service
func NewCloserService(params CloserServiceParams) *CloserService {
	return &CloserService{
		bidRepo:     params.BidRepo,
		profileRepo: params.ProfileRepo,
		broadcaster: params.Broadcaster,
		logger:      params.Logger.With().Str("component", "closer_service").Logger(),
	}
}

// CloseAuction ends a product's auction on behalf of an administrator
func (service *CloserService) CloseAuction(ctx context.Context, adminID, productID uuid.UUID) (*shared.CloseResult, error) {
	if _, err := requireAdmin(ctx, service.profileRepo, adminID); err != nil {
		service.logger.Warn().Err(err).Str("admin_id", adminID.String()).Msg("Auction close rejected")
		return nil, err
	}

	result, err := service.close(ctx, productID)
	if err != nil {
		return nil, err
	}

	service.broadcastEnd(ctx, result)
	return result, nil
}

// CloseAuctionForScheduler ends an auction whose end time elapsed.
// The scheduler broadcasts the result itself.
func (service *CloserService) CloseAuctionForScheduler(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error) {
	return service.close(ctx, productID)
}

func (service *CloserService) close(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error) {
	service.logger.Info().Str("product_id", productID.String()).Msg("Closing auction")

	result, err := service.bidRepo.CloseAuction(ctx, productID)
	if err != nil {
		if err == shared.ErrAuctionAlreadyEnded {
			service.logger.Warn().Str("product_id", productID.String()).Msg("Auction already ended")
		} else {
			service.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to close auction")
		}
		return nil, err
	}

	if result.WinningBidID != nil {
		service.logger.Info().
			Str("product_id", productID.String()).
			Str("winning_bid_id", result.WinningBidID.String()).
			Str("winner_id", result.WinnerID.String()).
			Float64("final_price", *result.FinalPrice).
			Int("demoted_bids", result.DemotedBids).
			Msg("Auction closed with winner")
	} else {
		service.logger.Info().
			Str("product_id", productID.String()).
			Msg("Auction closed with no bids")
	}

	return result, nil
}

func (service *CloserService) broadcastEnd(ctx context.Context, result *shared.CloseResult) {
	if service.broadcaster == nil {
		return
	}

	eventData := map[string]interface{}{
		"product_id": result.ProductID.String(),
		"status":     result.Status,
	}
	if result.WinnerID != nil {
		eventData["winner_id"] = result.WinnerID.String()
	}
	if result.FinalPrice != nil {
		eventData["final_price"] = *result.FinalPrice
	}

	event := outbound.Event{
		Type:      outbound.EventTypeAuctionEnded,
		ProductID: result.ProductID,
		Data:      eventData,
		Timestamp: time.Now().Unix(),
	}

	if err := service.broadcaster.Publish(ctx, result.ProductID, event); err != nil {
		service.logger.Error().Err(err).Str("product_id", result.ProductID.String()).Msg("Failed to broadcast auction end event")
	}
}

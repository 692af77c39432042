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

// PaymentService implements the manual payment handshake between the winning
// bidder and an administrator. The winner submits a phone number the payment
// was sent from; an administrator matches it against the incoming transfer
// and finalizes the bid as paid or cancelled.
type PaymentService struct {
	bidRepo     outbound.BidRepository
	productRepo outbound.ProductRepository
	profileRepo outbound.ProfileRepository
	broadcaster outbound.Broadcaster
	logger      zerolog.Logger
}

type PaymentServiceParams struct {
	BidRepo     outbound.BidRepository
	ProductRepo outbound.ProductRepository
	ProfileRepo outbound.ProfileRepository
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

// NewPaymentService creates a new payment reconciliation service
func NewPaymentService(params PaymentServiceParams) *PaymentService {
	return &PaymentService{
		bidRepo:     params.BidRepo,
		productRepo: params.ProductRepo,
		profileRepo: params.ProfileRepo,
		broadcaster: params.Broadcaster,
		logger:      params.Logger.With().Str("component", "payment_service").Logger(),
	}
}

// SubmitPayment records the winning bidder's payment contact for admin
// verification. The phone number is free text and deliberately not validated;
// re-submission while pending overwrites the previous value.
func (service *PaymentService) SubmitPayment(ctx context.Context, req inbound.SubmitPaymentRequest) (*bid.Bid, error) {
	service.logger.Info().
		Str("bid_id", req.BidID.String()).
		Str("bidder_id", req.BidderID.String()).
		Msg("Payment submission received")

	if _, err := requireProfile(ctx, service.profileRepo, req.BidderID); err != nil {
		return nil, err
	}

	if req.Phone == "" {
		return nil, shared.ErrPhoneRequired
	}

	b, err := service.bidRepo.GetByID(ctx, req.BidID)
	if err != nil {
		service.logger.Error().Err(err).Str("bid_id", req.BidID.String()).Msg("Bid not found")
		return nil, err
	}

	// Only the bid's owner may claim its payment
	if b.BidderID != req.BidderID {
		return nil, shared.ErrBidNotFound
	}

	if !b.IsWon() {
		service.logger.Warn().Str("bid_id", b.ID.String()).Str("status", string(b.Status)).Msg("Payment submission on a bid that has not won")
		return nil, shared.ErrBidNotWon
	}

	if b.PaymentFinal() {
		service.logger.Warn().Str("bid_id", b.ID.String()).Str("payment_status", string(b.PaymentStatus)).Msg("Payment already finalized")
		return nil, shared.ErrPaymentAlreadyFinal
	}

	b.SubmitPayment(req.Phone)

	if err := service.bidRepo.Update(ctx, b); err != nil {
		service.logger.Error().Err(err).Str("bid_id", b.ID.String()).Msg("Failed to save payment submission")
		return nil, err
	}

	service.publish(ctx, b)

	service.logger.Info().
		Str("bid_id", b.ID.String()).
		Str("payment_phone", b.PaymentPhone).
		Msg("Payment submitted for admin verification")

	return b, nil
}

// ConfirmPayment marks a won bid as paid (admin only)
func (service *PaymentService) ConfirmPayment(ctx context.Context, adminID, bidID uuid.UUID) (*bid.Bid, error) {
	b, err := service.wonBidForAdmin(ctx, adminID, bidID)
	if err != nil {
		return nil, err
	}

	b.ConfirmPayment(time.Now())

	if err := service.bidRepo.Update(ctx, b); err != nil {
		service.logger.Error().Err(err).Str("bid_id", b.ID.String()).Msg("Failed to confirm payment")
		return nil, err
	}

	service.publish(ctx, b)

	service.logger.Info().
		Str("bid_id", b.ID.String()).
		Str("admin_id", adminID.String()).
		Msg("Payment confirmed")

	return b, nil
}

// CancelPayment marks a won bid's payment as cancelled (admin only)
func (service *PaymentService) CancelPayment(ctx context.Context, adminID, bidID uuid.UUID) (*bid.Bid, error) {
	b, err := service.wonBidForAdmin(ctx, adminID, bidID)
	if err != nil {
		return nil, err
	}

	b.CancelPayment()

	if err := service.bidRepo.Update(ctx, b); err != nil {
		service.logger.Error().Err(err).Str("bid_id", b.ID.String()).Msg("Failed to cancel payment")
		return nil, err
	}

	service.publish(ctx, b)

	service.logger.Info().
		Str("bid_id", b.ID.String()).
		Str("admin_id", adminID.String()).
		Msg("Payment cancelled")

	return b, nil
}

// SetBidStatus manually overrides a bid's status on an ended auction.
// This escape hatch bypasses winner selection entirely: it can leave a
// product with more than one won bid, which stays the administrator's
// responsibility to untangle.
func (service *PaymentService) SetBidStatus(ctx context.Context, req inbound.SetBidStatusRequest) (*bid.Bid, error) {
	if _, err := requireAdmin(ctx, service.profileRepo, req.AdminID); err != nil {
		return nil, err
	}

	switch req.Status {
	case bid.StatusActive, bid.StatusOutbid, bid.StatusWon:
	default:
		return nil, shared.ErrInvalidBidStatus
	}

	b, err := service.bidRepo.GetByID(ctx, req.BidID)
	if err != nil {
		return nil, err
	}

	p, err := service.productRepo.GetByID(ctx, b.ProductID)
	if err != nil {
		return nil, err
	}

	if !p.IsEnded() {
		service.logger.Warn().Str("bid_id", b.ID.String()).Str("product_id", p.ID.String()).Msg("Bid status override attempted on a live auction")
		return nil, shared.ErrAuctionStillActive
	}

	service.logger.Warn().
		Str("bid_id", b.ID.String()).
		Str("admin_id", req.AdminID.String()).
		Str("old_status", string(b.Status)).
		Str("new_status", string(req.Status)).
		Msg("Manual bid status override, winner invariant not re-checked")

	b.Status = req.Status

	if err := service.bidRepo.Update(ctx, b); err != nil {
		service.logger.Error().Err(err).Str("bid_id", b.ID.String()).Msg("Failed to override bid status")
		return nil, err
	}

	service.publish(ctx, b)

	return b, nil
}

// wonBidForAdmin verifies the caller is an administrator and resolves a bid
// that is eligible for payment finalization
func (service *PaymentService) wonBidForAdmin(ctx context.Context, adminID, bidID uuid.UUID) (*bid.Bid, error) {
	if _, err := requireAdmin(ctx, service.profileRepo, adminID); err != nil {
		service.logger.Warn().Err(err).Str("admin_id", adminID.String()).Msg("Payment finalization rejected")
		return nil, err
	}

	b, err := service.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		service.logger.Error().Err(err).Str("bid_id", bidID.String()).Msg("Bid not found")
		return nil, err
	}

	if !b.IsWon() {
		return nil, shared.ErrBidNotWon
	}

	if b.PaymentFinal() {
		return nil, shared.ErrPaymentAlreadyFinal
	}

	return b, nil
}

func (service *PaymentService) publish(ctx context.Context, b *bid.Bid) {
	if service.broadcaster == nil {
		return
	}

	event := outbound.Event{
		Type:      outbound.EventTypePaymentUpdated,
		ProductID: b.ProductID,
		Data: map[string]interface{}{
			"bid_id":         b.ID,
			"status":         b.Status,
			"payment_status": b.PaymentStatus,
		},
		Timestamp: time.Now().Unix(),
	}

	if err := service.broadcaster.Publish(ctx, b.ProductID, event); err != nil {
		service.logger.Error().Err(err).Str("bid_id", b.ID.String()).Msg("Failed to broadcast payment event")
	}
}

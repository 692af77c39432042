package app

import (
	"context"
	"testing"
	"time"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPlaceBid_Success(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 100)

	placed, err := env.ledger.PlaceBid(context.Background(), inbound.PlaceBidRequest{
		ProductID: p.ID,
		BidderID:  env.bidder.ID,
		Amount:    150,
	})

	require.NoError(t, err)
	require.Equal(t, bid.StatusActive, placed.Status)
	require.Equal(t, 150.0, placed.Amount)

	// Accepted bid moves the listing's current price
	require.Equal(t, 150.0, env.getProduct(t, p.ID).CurrentPrice)
}

func TestPlaceBid_Validation(t *testing.T) {
	env := newTestEnv(t)
	active := env.addProduct(t, product.StatusActive, 100)
	env.addBid(t, active, env.bidder.ID, 120, time.Now())
	ended := env.addProduct(t, product.StatusEnded, 100)
	pending := env.addProduct(t, product.StatusPending, 100)

	tests := []struct {
		name      string
		productID uuid.UUID
		bidderID  uuid.UUID
		amount    float64
		wantErr   error
	}{
		{
			name:      "amount equal to current price is rejected",
			productID: active.ID,
			bidderID:  env.bidder.ID,
			amount:    120,
			wantErr:   shared.ErrBidAmountTooLow,
		},
		{
			name:      "amount below current price is rejected",
			productID: active.ID,
			bidderID:  env.bidder.ID,
			amount:    110,
			wantErr:   shared.ErrBidAmountTooLow,
		},
		{
			name:      "non-positive amount is rejected",
			productID: active.ID,
			bidderID:  env.bidder.ID,
			amount:    0,
			wantErr:   shared.ErrBidAmountInvalid,
		},
		{
			name:      "unknown product",
			productID: uuid.New(),
			bidderID:  env.bidder.ID,
			amount:    200,
			wantErr:   shared.ErrProductNotFound,
		},
		{
			name:      "ended product does not accept bids",
			productID: ended.ID,
			bidderID:  env.bidder.ID,
			amount:    200,
			wantErr:   shared.ErrProductNotAccepting,
		},
		{
			name:      "pending product does not accept bids",
			productID: pending.ID,
			bidderID:  env.bidder.ID,
			amount:    200,
			wantErr:   shared.ErrProductNotAccepting,
		},
		{
			name:      "missing bidder identity",
			productID: active.ID,
			bidderID:  uuid.Nil,
			amount:    200,
			wantErr:   shared.ErrUnauthenticated,
		},
		{
			name:      "unknown bidder profile",
			productID: active.ID,
			bidderID:  uuid.New(),
			amount:    200,
			wantErr:   shared.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.PlaceBid(context.Background(), inbound.PlaceBidRequest{
				ProductID: tt.productID,
				BidderID:  tt.bidderID,
				Amount:    tt.amount,
			})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlaceBid_StalePriceLosesRace(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 100)

	// Both bidders observed the price at 100; the first write wins and the
	// second fails its optimistic check even though 150 > 100.
	rival := env.addProfile(t, "Rita Rival", "rita@example.com", false)
	env.addBid(t, p, rival.ID, 200, time.Now())

	b := &bid.Bid{
		ID:        uuid.New(),
		ProductID: p.ID,
		BidderID:  env.bidder.ID,
		Amount:    150,
		Status:    bid.StatusActive,
		CreatedAt: time.Now(),
	}
	err := env.store.Bids().PlaceBidOCC(context.Background(), b, 100)
	require.ErrorIs(t, err, shared.ErrBidAmountTooLow)

	require.Equal(t, 200.0, env.getProduct(t, p.ID).CurrentPrice)
}

func TestListBidsForProduct_Ordering(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)

	base := time.Now()
	low := env.addBid(t, p, env.bidder.ID, 60, base)
	mid := env.addBid(t, p, env.bidder.ID, 80, base.Add(time.Second))
	high := env.addBid(t, p, env.bidder.ID, 100, base.Add(2*time.Second))

	bids, err := env.ledger.ListBidsForProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.Equal(t, high.ID, bids[0].ID)
	require.Equal(t, mid.ID, bids[1].ID)
	require.Equal(t, low.ID, bids[2].ID)
}

func TestListBidsForBidder(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)
	other := env.addProfile(t, "Olle Other", "olle@example.com", false)

	base := time.Now()
	first := env.addBid(t, p, env.bidder.ID, 60, base)
	env.addBid(t, p, other.ID, 70, base.Add(time.Second))
	second := env.addBid(t, p, env.bidder.ID, 80, base.Add(2*time.Second))

	bids, err := env.ledger.ListBidsForBidder(context.Background(), env.bidder.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)

	// newest first
	require.Equal(t, second.ID, bids[0].ID)
	require.Equal(t, first.ID, bids[1].ID)

	_, err = env.ledger.ListBidsForBidder(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestListBiddersForProduct_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)
	env.addBid(t, p, env.bidder.ID, 60, time.Now())

	_, err := env.ledger.ListBiddersForProduct(context.Background(), env.bidder.ID, p.ID)
	require.ErrorIs(t, err, shared.ErrNotAdmin)

	bidders, err := env.ledger.ListBiddersForProduct(context.Background(), env.admin.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, bidders, 1)
	require.Equal(t, env.bidder.FullName, bidders[0].BidderName)
	require.Equal(t, env.bidder.Email, bidders[0].BidderEmail)
}

func TestDebugProductBids(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusEnded, 50)

	base := time.Now()
	won := env.addRawBid(t, p, env.bidder.ID, 100, bid.StatusWon, base)
	won.SubmitPayment("070-123 45 67")
	require.NoError(t, env.store.Bids().Update(context.Background(), won))
	env.addRawBid(t, p, env.bidder.ID, 80, bid.StatusEnded, base.Add(time.Second))
	env.addRawBid(t, p, env.bidder.ID, 60, bid.StatusActive, base.Add(2*time.Second))

	_, err := env.ledger.DebugProductBids(context.Background(), env.bidder.ID, p.ID)
	require.ErrorIs(t, err, shared.ErrNotAdmin)

	report, err := env.ledger.DebugProductBids(context.Background(), env.admin.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, report.Product.ID)
	require.Equal(t, 3, report.TotalBids)
	require.Equal(t, 1, report.ActiveBids)
	require.Equal(t, 1, report.WonBids)
	require.Equal(t, 1, report.PendingPayments)
}

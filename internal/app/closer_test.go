package app

import (
	"context"
	"testing"
	"time"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCloseAuction_WinnerSelection(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)

	anna := env.addProfile(t, "Anna", "anna@example.com", false)
	berit := env.addProfile(t, "Berit", "berit@example.com", false)

	base := time.Now()
	env.addBid(t, p, anna.ID, 100, base)
	env.addBid(t, p, berit.ID, 150, base.Add(time.Second))
	winning := env.addBid(t, p, anna.ID, 200, base.Add(2*time.Second))

	result, err := env.closer.CloseAuction(context.Background(), env.admin.ID, p.ID)
	require.NoError(t, err)

	require.Equal(t, string(product.StatusEnded), result.Status)
	require.NotNil(t, result.WinningBidID)
	require.Equal(t, winning.ID, *result.WinningBidID)
	require.Equal(t, anna.ID, *result.WinnerID)
	require.Equal(t, 200.0, *result.FinalPrice)
	require.Equal(t, 2, result.DemotedBids)

	require.Equal(t, product.StatusEnded, env.getProduct(t, p.ID).Status)
	require.Equal(t, bid.StatusWon, env.getBid(t, winning.ID).Status)

	bids, err := env.store.Bids().ListForProduct(context.Background(), p.ID)
	require.NoError(t, err)
	for _, b := range bids {
		if b.ID == winning.ID {
			continue
		}
		require.Equal(t, bid.StatusEnded, b.Status)
	}
}

func TestCloseAuction_NoBids(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)

	result, err := env.closer.CloseAuction(context.Background(), env.admin.ID, p.ID)
	require.NoError(t, err)

	require.Nil(t, result.WinningBidID)
	require.Nil(t, result.WinnerID)
	require.Nil(t, result.FinalPrice)
	require.Equal(t, 0, result.DemotedBids)
	require.Equal(t, product.StatusEnded, env.getProduct(t, p.ID).Status)
}

func TestCloseAuction_TieGoesToEarlierBid(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)

	anna := env.addProfile(t, "Anna", "anna@example.com", false)
	berit := env.addProfile(t, "Berit", "berit@example.com", false)

	base := time.Now()
	earlier := env.addRawBid(t, p, anna.ID, 100, bid.StatusActive, base)
	env.addRawBid(t, p, berit.ID, 100, bid.StatusActive, base.Add(time.Second))

	result, err := env.closer.CloseAuction(context.Background(), env.admin.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, earlier.ID, *result.WinningBidID)
	require.Equal(t, anna.ID, *result.WinnerID)
}

func TestCloseAuction_SecondCloseRejected(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)
	winning := env.addBid(t, p, env.bidder.ID, 100, time.Now())

	_, err := env.closer.CloseAuction(context.Background(), env.admin.ID, p.ID)
	require.NoError(t, err)

	_, err = env.closer.CloseAuction(context.Background(), env.admin.ID, p.ID)
	require.ErrorIs(t, err, shared.ErrAuctionAlreadyEnded)

	// The winner chosen by the first close stands
	require.Equal(t, bid.StatusWon, env.getBid(t, winning.ID).Status)
}

func TestCloseAuction_AdminGate(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)

	_, err := env.closer.CloseAuction(context.Background(), env.bidder.ID, p.ID)
	require.ErrorIs(t, err, shared.ErrNotAdmin)

	_, err = env.closer.CloseAuction(context.Background(), uuid.Nil, p.ID)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	// A failed gate leaves the auction untouched
	require.Equal(t, product.StatusActive, env.getProduct(t, p.ID).Status)
}

func TestCloseAuction_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.closer.CloseAuction(context.Background(), env.admin.ID, uuid.New())
	require.ErrorIs(t, err, shared.ErrProductNotFound)
}

func TestCloseAuctionForScheduler(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, product.StatusActive, 50)
	winning := env.addBid(t, p, env.bidder.ID, 120, time.Now())

	result, err := env.closer.CloseAuctionForScheduler(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, winning.ID, *result.WinningBidID)

	// A manual close racing the scheduler sees the auction already ended
	_, err = env.closer.CloseAuction(context.Background(), env.admin.ID, p.ID)
	require.ErrorIs(t, err, shared.ErrAuctionAlreadyEnded)
}

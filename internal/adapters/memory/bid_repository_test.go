package memory

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

func seedProduct(t *testing.T, store *Store, status product.Status, price float64) *product.Product {
	t.Helper()

	p := &product.Product{
		ID:            uuid.New(),
		Name:          "Ski boots",
		StartingPrice: price,
		CurrentPrice:  price,
		Status:        status,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func newBid(productID uuid.UUID, amount float64, createdAt time.Time) *bid.Bid {
	return &bid.Bid{
		ID:        uuid.New(),
		ProductID: productID,
		BidderID:  uuid.New(),
		Amount:    amount,
		Status:    bid.StatusActive,
		CreatedAt: createdAt,
	}
}

func TestPlaceBidOCC(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a higher bid and bumps the price", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 100)

		err := store.Bids().PlaceBidOCC(ctx, newBid(p.ID, 150, time.Now()), 100)
		require.NoError(t, err)

		stored, err := store.Products().GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, 150.0, stored.CurrentPrice)
	})

	t.Run("rejects when the expected price is stale", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 100)
		require.NoError(t, store.Bids().PlaceBidOCC(ctx, newBid(p.ID, 150, time.Now()), 100))

		// Second writer read the price before the first landed
		err := store.Bids().PlaceBidOCC(ctx, newBid(p.ID, 200, time.Now()), 100)
		require.ErrorIs(t, err, shared.ErrBidAmountTooLow)
	})

	t.Run("rejects an amount equal to the current price", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 100)

		err := store.Bids().PlaceBidOCC(ctx, newBid(p.ID, 100, time.Now()), 100)
		require.ErrorIs(t, err, shared.ErrBidAmountTooLow)
	})

	t.Run("rejects a closed product", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusEnded, 100)

		err := store.Bids().PlaceBidOCC(ctx, newBid(p.ID, 150, time.Now()), 100)
		require.ErrorIs(t, err, shared.ErrProductNotAccepting)
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		store := NewStore()

		err := store.Bids().PlaceBidOCC(ctx, newBid(uuid.New(), 150, time.Now()), 100)
		require.ErrorIs(t, err, shared.ErrProductNotFound)
	})
}

func TestCloseAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes the highest bid and demotes the rest", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 50)

		base := time.Now()
		require.NoError(t, store.Bids().PlaceBidOCC(ctx, newBid(p.ID, 100, base), 50))
		top := newBid(p.ID, 200, base.Add(time.Second))
		require.NoError(t, store.Bids().PlaceBidOCC(ctx, top, 100))

		result, err := store.Bids().CloseAuction(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, top.ID, *result.WinningBidID)
		require.Equal(t, top.BidderID, *result.WinnerID)
		require.Equal(t, 200.0, *result.FinalPrice)
		require.Equal(t, 1, result.DemotedBids)

		winner, err := store.Bids().GetByID(ctx, top.ID)
		require.NoError(t, err)
		require.Equal(t, bid.StatusWon, winner.Status)
	})

	t.Run("tie on amount goes to the earlier bid", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 50)

		base := time.Now()
		earlier := newBid(p.ID, 100, base)
		later := newBid(p.ID, 100, base.Add(time.Second))
		require.NoError(t, store.Bids().Create(ctx, earlier))
		require.NoError(t, store.Bids().Create(ctx, later))

		result, err := store.Bids().CloseAuction(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, earlier.ID, *result.WinningBidID)
	})

	t.Run("closing twice fails", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 50)

		_, err := store.Bids().CloseAuction(ctx, p.ID)
		require.NoError(t, err)

		_, err = store.Bids().CloseAuction(ctx, p.ID)
		require.ErrorIs(t, err, shared.ErrAuctionAlreadyEnded)
	})

	t.Run("no bids closes without a winner", func(t *testing.T) {
		store := NewStore()
		p := seedProduct(t, store, product.StatusActive, 50)

		result, err := store.Bids().CloseAuction(ctx, p.ID)
		require.NoError(t, err)
		require.Nil(t, result.WinningBidID)
		require.Nil(t, result.WinnerID)
	})
}

func TestListForProduct_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p := seedProduct(t, store, product.StatusActive, 10)

	base := time.Now()
	mid := newBid(p.ID, 50, base)
	top := newBid(p.ID, 70, base.Add(time.Second))
	tie := newBid(p.ID, 50, base.Add(2*time.Second))
	for _, b := range []*bid.Bid{mid, top, tie} {
		require.NoError(t, store.Bids().Create(ctx, b))
	}

	bids, err := store.Bids().ListForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.Equal(t, top.ID, bids[0].ID)
	require.Equal(t, mid.ID, bids[1].ID)
	require.Equal(t, tie.ID, bids[2].ID)
}

func TestGetHighestActive_IgnoresSettledBids(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p := seedProduct(t, store, product.StatusActive, 10)

	settled := newBid(p.ID, 100, time.Now())
	settled.Status = bid.StatusEnded
	active := newBid(p.ID, 50, time.Now())
	require.NoError(t, store.Bids().Create(ctx, settled))
	require.NoError(t, store.Bids().Create(ctx, active))

	highest, err := store.Bids().GetHighestActive(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, active.ID, highest.ID)

	_, err = store.Bids().GetHighestActive(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrNoBidsFound)
}

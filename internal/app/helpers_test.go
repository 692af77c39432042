package app

import (
	"context"
	"testing"
	"time"

	"fyndak-auction-service/internal/adapters/memory"
	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testEnv wires the services against the in-memory adapters
type testEnv struct {
	store       *memory.Store
	broadcaster *memory.Broadcaster
	catalog     *CatalogService
	ledger      *LedgerService
	closer      *CloserService
	payment     *PaymentService
	admin       *shared.Profile
	bidder      *shared.Profile
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	broadcaster := memory.NewBroadcaster()
	logger := zerolog.Nop()

	env := &testEnv{
		store:       store,
		broadcaster: broadcaster,
		catalog: NewCatalogService(CatalogServiceParams{
			ProductRepo: store.Products(),
			ProfileRepo: store.Profiles(),
			Broadcaster: broadcaster,
			Logger:      logger,
		}),
		ledger: NewLedgerService(LedgerServiceParams{
			BidRepo:     store.Bids(),
			ProductRepo: store.Products(),
			ProfileRepo: store.Profiles(),
			Broadcaster: broadcaster,
			Logger:      logger,
		}),
		closer: NewCloserService(CloserServiceParams{
			BidRepo:     store.Bids(),
			ProfileRepo: store.Profiles(),
			Broadcaster: broadcaster,
			Logger:      logger,
		}),
		payment: NewPaymentService(PaymentServiceParams{
			BidRepo:     store.Bids(),
			ProductRepo: store.Products(),
			ProfileRepo: store.Profiles(),
			Broadcaster: broadcaster,
			Logger:      logger,
		}),
	}

	env.admin = env.addProfile(t, "Astrid Admin", "astrid@fyndak.se", true)
	env.bidder = env.addProfile(t, "Björn Bidder", "bjorn@example.com", false)

	return env
}

func (env *testEnv) addProfile(t *testing.T, name, email string, isAdmin bool) *shared.Profile {
	t.Helper()

	profile := &shared.Profile{
		ID:        uuid.New(),
		FullName:  name,
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, env.store.Profiles().Create(context.Background(), profile))
	return profile
}

func (env *testEnv) addProduct(t *testing.T, status product.Status, startingPrice float64) *product.Product {
	t.Helper()

	now := time.Now()
	p := &product.Product{
		ID:            uuid.New(),
		Name:          "Vintage armchair",
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, env.store.Products().Create(context.Background(), p))
	return p
}

// addBid inserts a bid through the OCC path so the product price moves with it
func (env *testEnv) addBid(t *testing.T, p *product.Product, bidderID uuid.UUID, amount float64, createdAt time.Time) *bid.Bid {
	t.Helper()

	ctx := context.Background()
	current, err := env.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)

	b := &bid.Bid{
		ID:        uuid.New(),
		ProductID: p.ID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    bid.StatusActive,
		CreatedAt: createdAt,
	}
	require.NoError(t, env.store.Bids().PlaceBidOCC(ctx, b, current.CurrentPrice))
	return b
}

// addRawBid inserts a bid directly, bypassing the strictly-increasing price
// rule. Used to rebuild historical states such as equal-amount ties.
func (env *testEnv) addRawBid(t *testing.T, p *product.Product, bidderID uuid.UUID, amount float64, status bid.Status, createdAt time.Time) *bid.Bid {
	t.Helper()

	b := &bid.Bid{
		ID:        uuid.New(),
		ProductID: p.ID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, env.store.Bids().Create(context.Background(), b))
	return b
}

func (env *testEnv) getBid(t *testing.T, id uuid.UUID) *bid.Bid {
	t.Helper()

	b, err := env.store.Bids().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (env *testEnv) getProduct(t *testing.T, id uuid.UUID) *product.Product {
	t.Helper()

	p, err := env.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

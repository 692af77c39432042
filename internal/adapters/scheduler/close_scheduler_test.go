package scheduler

import (
	"context"
	"testing"
	"time"

	"fyndak-auction-service/internal/adapters/memory"
	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubCloser struct {
	result *shared.CloseResult
	err    error
	calls  int
}

func (c *stubCloser) CloseAuctionForScheduler(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error) {
	c.calls++
	return c.result, c.err
}

func newTestScheduler(closer AuctionCloser, broadcaster outbound.Broadcaster) *CloseScheduler {
	// No server behind this address: schedule bookkeeping fails fast and is
	// ignored by the close path, which is what these tests exercise
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewCloseScheduler(CloseSchedulerParams{
		RedisClient: client,
		Closer:      closer,
		Broadcaster: broadcaster,
		PollSeconds: 3600,
		BatchSize:   10,
		Logger:      zerolog.Nop(),
	})
}

func TestCloseAuctionBroadcastsResult(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	winnerID := uuid.New()
	finalPrice := 200.0

	closer := &stubCloser{result: &shared.CloseResult{
		ProductID:  productID,
		WinnerID:   &winnerID,
		FinalPrice: &finalPrice,
		Status:     "ended",
	}}
	broadcaster := memory.NewBroadcaster()
	s := newTestScheduler(closer, broadcaster)

	eventChan := make(chan outbound.Event, 1)
	require.NoError(t, broadcaster.Subscribe(ctx, productID, "watcher", eventChan))

	s.closeAuction(productID)
	require.Equal(t, 1, closer.calls)

	select {
	case evt := <-eventChan:
		require.Equal(t, outbound.EventTypeAuctionEnded, evt.Type)
		require.Equal(t, productID, evt.ProductID)
		require.Equal(t, winnerID.String(), evt.Data["winner_id"])
		require.Equal(t, finalPrice, evt.Data["final_price"])
	default:
		t.Fatal("expected an auction ended event")
	}
}

func TestCloseAuctionAlreadyEndedIsBenign(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	closer := &stubCloser{err: shared.ErrAuctionAlreadyEnded}
	broadcaster := memory.NewBroadcaster()
	s := newTestScheduler(closer, broadcaster)

	eventChan := make(chan outbound.Event, 1)
	require.NoError(t, broadcaster.Subscribe(ctx, productID, "watcher", eventChan))

	// An admin beat the scheduler to the close; no event, no panic
	s.closeAuction(productID)
	require.Equal(t, 1, closer.calls)
	require.Empty(t, eventChan)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(&stubCloser{}, memory.NewBroadcaster())

	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const closeScheduleKey = "auction:close_schedule"

// AuctionCloser ends an auction on behalf of the scheduler
type AuctionCloser interface {
	CloseAuctionForScheduler(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error)
}

// CloseScheduler ends auctions automatically when their end time elapses.
// Products with an end time are tracked in a Redis sorted set scored by the
// deadline; a polling loop picks up expired entries and runs the closer.
type CloseScheduler struct {
	redis       *redis.Client
	closer      AuctionCloser
	broadcaster outbound.Broadcaster
	poll        time.Duration
	batch       int
	logger      zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

type CloseSchedulerParams struct {
	RedisClient *redis.Client
	Closer      AuctionCloser
	Broadcaster outbound.Broadcaster
	PollSeconds int
	BatchSize   int
	Logger      zerolog.Logger
}

func NewCloseScheduler(params CloseSchedulerParams) *CloseScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	poll := time.Duration(params.PollSeconds) * time.Second
	if poll <= 0 {
		poll = time.Second
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = 10
	}

	return &CloseScheduler{
		redis:       params.RedisClient,
		closer:      params.Closer,
		broadcaster: params.Broadcaster,
		poll:        poll,
		batch:       batch,
		logger:      params.Logger.With().Str("component", "close_scheduler").Logger(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ScheduleClose registers a product for automatic closing at endTime
func (s *CloseScheduler) ScheduleClose(productID uuid.UUID, endTime time.Time) error {
	score := float64(endTime.Unix())

	err := s.redis.ZAdd(s.ctx, closeScheduleKey, redis.Z{
		Score:  score,
		Member: productID.String(),
	}).Err()

	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to schedule auction close")
		return fmt.Errorf("failed to schedule auction close: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Time("end_time", endTime).
		Msg("Auction scheduled for closing")

	return nil
}

// CancelClose removes a product from the close schedule, e.g. after a manual
// close by an administrator or a listing deletion
func (s *CloseScheduler) CancelClose(productID uuid.UUID) error {
	if err := s.redis.ZRem(s.ctx, closeScheduleKey, productID.String()).Err(); err != nil {
		return fmt.Errorf("failed to cancel scheduled close: %w", err)
	}
	return nil
}

// Start begins the scheduler loop
func (s *CloseScheduler) Start() {
	s.logger.Info().Msg("Starting auction close scheduler")

	s.wg.Add(1)
	go s.schedulerLoop()
}

// Stop gracefully stops the scheduler
func (s *CloseScheduler) Stop() {
	s.logger.Info().Msg("Stopping auction close scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *CloseScheduler) schedulerLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkExpiredAuctions()
		case <-s.ctx.Done():
			s.logger.Info().Msg("Scheduler loop stopped")
			return
		}
	}
}

// checkExpiredAuctions finds and closes auctions past their end time
func (s *CloseScheduler) checkExpiredAuctions() {
	now := time.Now().Unix()

	expired, err := s.redis.ZRangeByScore(s.ctx, closeScheduleKey, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now, 10),
		Count: int64(s.batch),
	}).Result()

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get expired auctions")
		return
	}

	if len(expired) > 0 {
		s.logger.Debug().Int("count", len(expired)).Msg("Found expired auctions")
	}

	for _, productIDStr := range expired {
		productID, err := uuid.Parse(productIDStr)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", productIDStr).Msg("Invalid product ID in close schedule")
			s.redis.ZRem(s.ctx, closeScheduleKey, productIDStr)
			continue
		}

		// Runs inline in the loop goroutine so Stop waits for in-flight
		// closes; the batch size bounds how long one poll round can take
		s.closeAuction(productID)
	}
}

// closeAuction runs the closer for one expired product and broadcasts the result
func (s *CloseScheduler) closeAuction(productID uuid.UUID) {
	s.logger.Info().Str("product_id", productID.String()).Msg("Processing scheduled auction close")

	result, err := s.closer.CloseAuctionForScheduler(s.ctx, productID)
	defer s.redis.ZRem(s.ctx, closeScheduleKey, productID.String())

	if err != nil {
		// An administrator may already have closed the auction manually;
		// the entry is dropped from the schedule either way
		if err == shared.ErrAuctionAlreadyEnded {
			s.logger.Info().Str("product_id", productID.String()).Msg("Auction already closed, dropping schedule entry")
			return
		}
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to close auction")
		return
	}

	eventData := map[string]interface{}{
		"product_id": productID.String(),
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
		ProductID: productID,
		Data:      eventData,
		Timestamp: time.Now().Unix(),
	}

	if err := s.broadcaster.Publish(s.ctx, productID, event); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to broadcast auction end event")
	}

	logger := s.logger.Info().Str("product_id", productID.String())

	if result.WinnerID != nil {
		logger = logger.Str("winner_id", result.WinnerID.String())
	}
	if result.FinalPrice != nil {
		logger = logger.Float64("final_price", *result.FinalPrice)
	}

	logger.Msg("Auction closed on schedule")
}

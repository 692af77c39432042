package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fyndak-auction-service/internal/adapters/broadcaster"
	"fyndak-auction-service/internal/adapters/db"
	"fyndak-auction-service/internal/adapters/redis"
	"fyndak-auction-service/internal/adapters/scheduler"
	"fyndak-auction-service/internal/adapters/ws"
	"fyndak-auction-service/internal/app"
	"fyndak-auction-service/internal/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Fyndak Auction Service...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	log.Info().Msg("Database connection established")

	// Create repositories
	repoFactory := db.NewRepositoryFactory(dbConn)
	productRepo := repoFactory.GetProductRepository()
	bidRepo := repoFactory.GetBidRepository()
	profileRepo := repoFactory.GetProfileRepository()

	log.Info().Msg("Database repositories initialized")

	// Create Redis client
	redisClient := redis.NewClient(cfg)
	if err := redis.PingRedis(redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	// Create Redis broadcaster
	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	log.Info().Msg("Redis broadcaster initialized")

	// Create business services
	catalogService := app.NewCatalogService(app.CatalogServiceParams{
		ProductRepo: productRepo,
		ProfileRepo: profileRepo,
		Broadcaster: redisBroadcaster,
		Logger:      log.Logger,
	})
	ledgerService := app.NewLedgerService(app.LedgerServiceParams{
		BidRepo:     bidRepo,
		ProductRepo: productRepo,
		ProfileRepo: profileRepo,
		Broadcaster: redisBroadcaster,
		Logger:      log.Logger,
	})
	closerService := app.NewCloserService(app.CloserServiceParams{
		BidRepo:     bidRepo,
		ProfileRepo: profileRepo,
		Broadcaster: redisBroadcaster,
		Logger:      log.Logger,
	})
	paymentService := app.NewPaymentService(app.PaymentServiceParams{
		BidRepo:     bidRepo,
		ProductRepo: productRepo,
		ProfileRepo: profileRepo,
		Broadcaster: redisBroadcaster,
		Logger:      log.Logger,
	})

	log.Info().Msg("Business services initialized")

	// Create auction close scheduler
	closeScheduler := scheduler.NewCloseScheduler(scheduler.CloseSchedulerParams{
		RedisClient: redisClient,
		Closer:      closerService,
		Broadcaster: redisBroadcaster,
		PollSeconds: cfg.Scheduler.PollSeconds,
		BatchSize:   cfg.Scheduler.BatchSize,
		Logger:      log.Logger,
	})

	// Start auction close scheduler
	closeScheduler.Start()
	log.Info().Msg("Auction close scheduler started")

	// Update catalog service with scheduler
	catalogService.SetScheduler(closeScheduler)

	wsHandler := ws.NewHandler(ws.WsHandlerParams{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		CatalogService: catalogService,
		LedgerService:  ledgerService,
		CloserService:  closerService,
		PaymentService: paymentService,
		Broadcaster:    redisBroadcaster,
		Logger:         log.Logger,
	})

	wsServer := ws.NewServer(ws.ServerParams{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Handler: wsHandler,
		Logger:  log.Logger,
	})

	log.Info().Msg("WebSocket server initialized")

	// Start WebSocket server
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting WebSocket server")
		if err := wsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start WebSocket server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop auction close scheduler
	closeScheduler.Stop()
	log.Info().Msg("Auction close scheduler stopped")

	// Stop WebSocket server
	if err := wsServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping WebSocket server")
	}

	redisBroadcaster.Close()

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		// JSON format (default)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global logger
	zerolog.DefaultContextLogger = &log.Logger
}

package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server wraps the HTTP server exposing the WebSocket endpoint
type Server struct {
	httpServer *http.Server
	handler    *WsHandler
	logger     zerolog.Logger
}

type ServerParams struct {
	Host    string
	Port    string
	Handler *WsHandler
	Logger  zerolog.Logger
}

// NewServer creates a new WebSocket server
func NewServer(params ServerParams) *Server {
	mux := http.NewServeMux()

	server := &Server{
		handler: params.Handler,
		logger:  params.Logger.With().Str("component", "ws_server").Logger(),
	}

	mux.HandleFunc("/ws", params.Handler.HandleWebSocket)
	mux.HandleFunc("/health", server.handleHealth)

	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", params.Host, params.Port),
		Handler: mux,
	}

	return server
}

// Start begins serving WebSocket connections. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting WebSocket server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("websocket server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping WebSocket server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"fyndak-auction-service","clients":%d,"time":"%s"}`,
		s.handler.GetConnectedClients(), time.Now().UTC().Format(time.RFC3339))
}

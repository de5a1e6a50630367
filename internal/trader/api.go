package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// APIServer exposes a small status interface for the running engine.
type APIServer struct {
	server *http.Server
	engine *Engine
	logger *zap.Logger
}

// NewAPIServer creates a new APIServer.
func NewAPIServer(engine *Engine, logger *zap.Logger) *APIServer {
	addr := fmt.Sprintf(":%d", engine.cfg.Server.Port)
	server := &http.Server{
		Addr: addr,
	}

	return &APIServer{
		server: server,
		engine: engine,
		logger: logger.Named("api-server"),
	}
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/health", s.healthHandler)
	s.server.Handler = mux

	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	mode := "live"
	if s.engine.cfg.Alpaca.Paper {
		mode = "paper"
	}

	openCount, err := s.engine.OpenPositionCount()
	if err != nil {
		s.logger.Error("Failed to count open positions", zap.Error(err))
	}

	status := struct {
		UUID          string `json:"uuid"`
		Mode          string `json:"mode"`
		StartTime     string `json:"start_time"`
		Uptime        string `json:"uptime"`
		Cycles        int64  `json:"cycles"`
		OpenPositions int    `json:"open_positions"`
	}{
		UUID:          s.engine.UUID,
		Mode:          mode,
		StartTime:     s.engine.StartTime.Format(time.RFC3339),
		Uptime:        time.Since(s.engine.StartTime).String(),
		Cycles:        s.engine.Cycles(),
		OpenPositions: openCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Failed to write status response", zap.Error(err))
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

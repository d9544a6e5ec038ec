// Package http serves the monitoring surface: health, prometheus metrics,
// the latest batch verdicts, and a websocket stream of batch progress.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sawpanic/stratvalid/internal/validation"
)

// Server is the monitoring HTTP server.
type Server struct {
	addr     string
	router   *mux.Router
	upgrader websocket.Upgrader
	limiter  *rate.Limiter

	mu          sync.RWMutex
	latestBatch *validation.BatchResult

	subMu       sync.Mutex
	subscribers map[chan validation.ProgressEvent]struct{}
}

// NewServer builds the monitor server listening on addr.
func NewServer(addr string) *Server {
	s := &Server{
		addr:        addr,
		router:      mux.NewRouter(),
		upgrader:    websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		limiter:     rate.NewLimiter(rate.Limit(50), 100),
		subscribers: make(map[chan validation.ProgressEvent]struct{}),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/verdicts", s.handleVerdicts).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/progress", s.handleProgressWS)
	s.router.Use(s.rateLimit)

	return s
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.router }

// SetLatestBatch publishes a completed batch for /verdicts.
func (s *Server) SetLatestBatch(result *validation.BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestBatch = result
}

// Publish fans a progress event out to websocket subscribers. Safe to use
// as an orchestrator Progress hook.
func (s *Server) Publish(event validation.ProgressEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than stall the batch
		}
	}
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", s.addr).Msg("monitor server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVerdicts(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	batch := s.latestBatch
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if batch == nil {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no batch has completed yet"})
		return
	}
	_ = json.NewEncoder(w).Encode(batch)
}

func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := make(chan validation.ProgressEvent, 64)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	defer func() {
		s.subMu.Lock()
		delete(s.subscribers, ch)
		s.subMu.Unlock()
	}()

	for {
		select {
		case event := <-ch:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

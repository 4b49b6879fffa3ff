package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// Options configures the inspector server.
type Options struct {
	// Addr is the listen address.
	Addr string

	// Tracker is the tracker being inspected.
	Tracker *reactive.Tracker

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Hub backs /debug/watch. If nil the route is not registered.
	Hub *Hub

	// Logger receives request and lifecycle records.
	Logger *slog.Logger
}

// Server is the inspector HTTP server.
type Server struct {
	options    Options
	logger     *slog.Logger
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// NewServer creates an inspector server.
func NewServer(options Options) *Server {
	if options.Gatherer == nil {
		options.Gatherer = prometheus.DefaultGatherer
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{options: options, logger: logger}
}

// Handler returns the inspector routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.options.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/debug", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/graph", s.handleGraph)
		if s.options.Hub != nil {
			r.Get("/watch", s.options.Hub.HandleWebSocket)
		}
	})
	return r
}

// graphResponse is the /debug/graph payload.
type graphResponse struct {
	Tracker string          `json:"tracker"`
	Edges   []reactive.Edge `json:"edges"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.options.Tracker.Stats())
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	edges := s.options.Tracker.Graph()
	if edges == nil {
		edges = []reactive.Edge{}
	}
	writeJSON(w, graphResponse{Tracker: s.options.Tracker.ID(), Edges: edges})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.options.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Unlock()

	s.logger.Info("inspector listening", "addr", s.options.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the server down and closes the watch hub.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.options.Hub != nil {
		s.options.Hub.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("inspector shutdown", "error", err)
		}
	}
	s.logger.Info("inspector stopped")
}

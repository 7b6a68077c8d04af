// Package dashboard serves a read-only JSON API over tracked positions:
// current positions, aggregate statistics, and sampled payoff curves for
// charting.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/schrute_spreads/internal/engine"
	"github.com/eddiefleurent/schrute_spreads/internal/models"
	"github.com/eddiefleurent/schrute_spreads/internal/storage"
)

// Payoff sampling defaults.
const (
	defaultPayoffRangePct = 0.15
	defaultPayoffSamples  = 60
	maxPayoffSamples      = 500
)

// Config holds the server settings.
type Config struct {
	Port      int
	AuthToken string
}

// Server is the dashboard HTTP server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	storage   storage.Interface
	engine    *engine.Engine
	logger    *logrus.Logger
	port      int
	authToken string
}

// NewServer creates a dashboard server over the given storage and engine.
func NewServer(cfg Config, store storage.Interface, eng *engine.Engine, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		storage:   store,
		engine:    eng,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.authToken != "" {
		s.router.Use(s.authMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/positions", s.handleGetPositions)
	s.router.Get("/api/stats", s.handleGetStats)
	s.router.Get("/api/position/{id}", s.handleGetPosition)
	s.router.Get("/api/position/{id}/payoff", s.handleGetPayoff)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != s.authToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting dashboard server on port %d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPositions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.storage.GetOpenPositions())
}

func (s *Server) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.storage.GetStatistics())
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	position, found := s.storage.GetPositionByID(id)
	if !found {
		http.Error(w, "position not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, position)
}

// PayoffPoint is one sampled point of a position's payoff curve.
type PayoffPoint struct {
	Price  float64 `json:"price"`
	Profit float64 `json:"profit"` // per share
}

// handleGetPayoff samples the position's payoff across a price range around
// its entry spot, for chart rendering. Query params: range (fraction of
// spot, default 0.15) and samples (default 60).
func (s *Server) handleGetPayoff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	position, found := s.storage.GetPositionByID(id)
	if !found {
		http.Error(w, "position not found", http.StatusNotFound)
		return
	}

	rangePct := defaultPayoffRangePct
	if v := r.URL.Query().Get("range"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 || parsed >= 1 {
			http.Error(w, "range must be a fraction in (0, 1)", http.StatusBadRequest)
			return
		}
		rangePct = parsed
	}
	samples := defaultPayoffSamples
	if v := r.URL.Query().Get("samples"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2 || parsed > maxPayoffSamples {
			http.Error(w, fmt.Sprintf("samples must be between 2 and %d", maxPayoffSamples), http.StatusBadRequest)
			return
		}
		samples = parsed
	}

	points, err := s.samplePayoff(position, rangePct, samples)
	if err != nil {
		s.logger.WithError(err).WithField("position", id).Error("Failed to sample payoff")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, points)
}

func (s *Server) samplePayoff(position *models.Position, rangePct float64, samples int) ([]PayoffPoint, error) {
	low := position.EntrySpot * (1 - rangePct)
	high := position.EntrySpot * (1 + rangePct)
	step := (high - low) / float64(samples-1)

	points := make([]PayoffPoint, 0, samples)
	for i := 0; i < samples; i++ {
		price := low + step*float64(i)
		profit, err := s.engine.ProfitLossAtPrice(position.StrategyType, price, position.Legs)
		if err != nil {
			return nil, err
		}
		points = append(points, PayoffPoint{Price: price, Profit: profit})
	}
	return points, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

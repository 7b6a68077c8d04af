// Command engine runs the valuation service: it values each configured
// symbol/strategy pair against fresh market snapshots, tracks the results as
// positions, and serves a read-only dashboard over them.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/schrute_spreads/internal/config"
	"github.com/eddiefleurent/schrute_spreads/internal/dashboard"
	"github.com/eddiefleurent/schrute_spreads/internal/engine"
	"github.com/eddiefleurent/schrute_spreads/internal/marketdata"
	"github.com/eddiefleurent/schrute_spreads/internal/mock"
	"github.com/eddiefleurent/schrute_spreads/internal/retry"
	"github.com/eddiefleurent/schrute_spreads/internal/storage"
)

// revaluationInterval is how often the open valuations are recomputed.
const revaluationInterval = 15 * time.Minute

// Service wires the engine to its collaborators.
type Service struct {
	config   *config.Config
	storage  storage.Interface
	provider marketdata.Provider
	engine   *engine.Engine
	logger   *log.Logger
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "[ENGINE] ", log.LstdFlags|log.Lshortfile)

	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	eng, err := engine.New(engine.Config{
		Validator: engine.ValidatorConfig{
			MaxSpreadRatio:     cfg.Engine.Validator.MaxSpreadRatio,
			MaxOTMPremiumRatio: cfg.Engine.Validator.MaxOTMPremiumRatio,
			IntrinsicTolerance: cfg.Engine.Validator.IntrinsicTolerance,
		},
		Strangle:  engine.StrangleConfig{ShortWidthFactor: cfg.Engine.Strangle.ShortWidthFactor},
		Condor:    engine.CondorConfig{WingWidthRatio: cfg.Engine.Condor.WingWidthRatio},
		Butterfly: engine.ButterflyConfig{WingWidthRatio: cfg.Engine.Butterfly.WingWidthRatio},
		Sizing: engine.SizingConfig{
			UnlimitedRiskCapPct:      cfg.Sizing.UnlimitedRiskCapPct,
			DefinedRiskAllocationPct: cfg.Sizing.DefinedRiskAllocationPct,
		},
	})
	if err != nil {
		logger.Fatalf("Failed to initialize engine: %v", err)
	}

	svc := &Service{
		config:  cfg,
		storage: store,
		// Synthetic data behind the same retry and circuit-breaker boundary
		// a real provider would use.
		provider: marketdata.NewCircuitBreakerProvider(
			retry.NewProvider(mock.NewDataProvider(), logger)),
		engine: eng,
		logger: logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Println("Shutdown signal received, stopping service...")
		cancel()
	}()

	var dash *dashboard.Server
	if cfg.Dashboard.Enabled {
		dashLogger := logrus.New()
		level, err := logrus.ParseLevel(cfg.Environment.LogLevel)
		if err == nil {
			dashLogger.SetLevel(level)
		}
		dash = dashboard.NewServer(dashboard.Config{
			Port:      cfg.Dashboard.Port,
			AuthToken: cfg.Dashboard.AuthToken,
		}, store, eng, dashLogger)

		go func() {
			if err := dash.Start(); err != nil && err != http.ErrServerClosed {
				logger.Printf("Dashboard server error: %v", err)
			}
		}()
	}

	if err := svc.Run(ctx); err != nil {
		logger.Fatalf("Service error: %v", err)
	}

	if dash != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := dash.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Dashboard shutdown error: %v", err)
		}
	}

	logger.Println("Service stopped successfully")
}

// Run executes valuation passes until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Printf("Valuing %d symbol/strategy pair(s) every %s", len(s.config.Valuations), revaluationInterval)

	ticker := time.NewTicker(revaluationInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.runValuationPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runValuationPass(ctx)
		}
	}
}

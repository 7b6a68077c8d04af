package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eddiefleurent/schrute_spreads/internal/config"
	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// defaultIVPercentile is used because the service has no IV-history
// collaborator wired in; the engine only needs a value in range.
const defaultIVPercentile = 50.0

// runValuationPass values every configured symbol/strategy pair in parallel.
// Valuations are independent and the engine is pure, so no coordination is
// needed beyond the storage layer's own locking.
func (s *Service) runValuationPass(ctx context.Context) {
	s.logger.Println("Starting valuation pass...")

	g, ctx := errgroup.WithContext(ctx)
	for _, valuation := range s.config.Valuations {
		valuation := valuation
		g.Go(func() error {
			if err := s.runValuation(ctx, valuation); err != nil {
				s.logger.Printf("Valuation %s/%s failed: %v", valuation.Symbol, valuation.Strategy, err)
			}
			// One failed valuation never aborts the others.
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Println("Valuation pass complete")
}

func (s *Service) runValuation(ctx context.Context, valuation config.ValuationConfig) error {
	strategyType := models.StrategyType(valuation.Strategy)

	snap, err := s.provider.GetSnapshot(ctx, valuation.Symbol)
	if err != nil {
		return fmt.Errorf("fetching snapshot: %w", err)
	}

	expirations := snap.Expirations()
	if len(expirations) == 0 {
		return fmt.Errorf("snapshot has no expirations")
	}
	expiration := expirations[0]
	dte := daysUntil(expiration)

	iv, err := estimateATMVol(snap, expiration, dte)
	if err != nil {
		return fmt.Errorf("estimating IV: %w", err)
	}

	inputs := &models.StrategyInputs{
		StrategyType:      strategyType,
		Symbol:            valuation.Symbol,
		CurrentPrice:      snap.CurrentPrice,
		Expiration:        expiration,
		DaysToExpiry:      dte,
		ImpliedVolatility: iv,
		IVPercentile:      defaultIVPercentile,
	}

	if existing := s.findOpenPosition(valuation.Symbol, strategyType); existing != nil {
		return s.revalue(existing, snap)
	}

	result, err := s.engine.CalculatePosition(strategyType, inputs, snap)
	if err != nil {
		return fmt.Errorf("calculating position: %w", err)
	}

	size, err := s.engine.RecommendedPositionSize(result, s.config.Sizing.PortfolioValue)
	if err != nil {
		return fmt.Errorf("sizing position: %w", err)
	}
	s.logger.Printf("%s %s: max loss %s, max profit %s, sizing: %s",
		valuation.Symbol, strategyType, result.MaxLoss, result.MaxProfit, size.Reasoning)

	pos, err := models.NewPositionFromResult(uuid.NewString(), result, inputs, valuation.Quantity)
	if err != nil {
		return fmt.Errorf("building tracked position: %w", err)
	}
	if err := s.storage.AddPosition(pos); err != nil {
		return fmt.Errorf("tracking position: %w", err)
	}

	s.logger.Printf("Tracking new %s position %s on %s (%d contract(s))",
		strategyType, pos.ID, pos.Symbol, pos.Quantity)
	return nil
}

// revalue refreshes an open position's P/L against the latest spot, closing
// it at expiration.
func (s *Service) revalue(pos *models.Position, snap *models.MarketSnapshot) error {
	perShare, err := s.engine.ProfitLossAtPrice(pos.StrategyType, snap.CurrentPrice, pos.Legs)
	if err != nil {
		return fmt.Errorf("computing P/L: %w", err)
	}
	pnl := perShare * float64(pos.Quantity) * 100

	if pos.CalculateDTE() == 0 {
		s.logger.Printf("Position %s expired, closing with P/L %.2f", pos.ID, pnl)
		return s.storage.ClosePosition(pos.ID, pnl, "expired")
	}
	return s.storage.UpdatePnL(pos.ID, pnl)
}

func (s *Service) findOpenPosition(symbol string, strategyType models.StrategyType) *models.Position {
	for _, pos := range s.storage.GetOpenPositions() {
		if pos.Symbol == symbol && pos.StrategyType == strategyType {
			p := pos
			return &p
		}
	}
	return nil
}

// daysUntil returns the non-negative calendar days until a YYYY-MM-DD date.
func daysUntil(date string) int {
	exp, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	days := int(time.Until(exp).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// estimateATMVol backs implied volatility out of the at-the-money call
// premium using the Brenner-Subrahmanyam approximation:
// ATM call ≈ 0.4 * S * σ * sqrt(T).
func estimateATMVol(snap *models.MarketSnapshot, expiration string, dte int) (float64, error) {
	contracts, err := snap.ContractsNear(expiration, models.OptionTypeCall, snap.CurrentPrice, 1)
	if err != nil {
		return 0, err
	}
	if dte <= 0 {
		return 0, fmt.Errorf("cannot estimate IV at expiration")
	}

	atm := contracts[0]
	extrinsic := atm.Mid() - atm.Intrinsic(snap.CurrentPrice)
	if extrinsic <= 0 {
		return 0, fmt.Errorf("ATM call has no extrinsic value")
	}

	iv := extrinsic / (0.4 * snap.CurrentPrice * math.Sqrt(float64(dte)/365.0))
	if iv <= 0 || iv > 1.5 {
		return 0, fmt.Errorf("estimated IV %.4f out of range", iv)
	}
	return iv, nil
}

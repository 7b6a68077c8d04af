package engine

import (
	"fmt"
	"math"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// CondorConfig tunes iron condor strike selection.
type CondorConfig struct {
	// WingWidthRatio sets the protective wing distance as a fraction of
	// spot.
	WingWidthRatio float64
}

// buildIronCondor prices a short put/call pair one sigma from spot with
// protective long wings beyond them. Defined risk: the narrower wing bounds
// the loss.
func (e *Engine) buildIronCondor(inputs *models.StrategyInputs, snap *models.MarketSnapshot) (*models.PositionResult, error) {
	puts, err := snap.Side(inputs.Expiration, models.OptionTypePut)
	if err != nil {
		return nil, err
	}
	calls, err := snap.Side(inputs.Expiration, models.OptionTypeCall)
	if err != nil {
		return nil, err
	}

	var shortPut, longPut, shortCall, longCall *models.OptionContract
	switch len(inputs.CustomStrikes) {
	case 0:
		distance := expectedMove(inputs.CurrentPrice, inputs.ImpliedVolatility, inputs.DaysToExpiry)
		width := inputs.CurrentPrice * e.cfg.Condor.WingWidthRatio

		shortPut, err = e.sel.AtOrBelow(puts, inputs.CurrentPrice-distance)
		if err != nil {
			return nil, err
		}
		longPut, err = e.sel.ProtectiveBelow(puts, shortPut.Strike, width)
		if err != nil {
			return nil, err
		}
		shortCall, err = e.sel.AtOrAbove(calls, inputs.CurrentPrice+distance)
		if err != nil {
			return nil, err
		}
		longCall, err = e.sel.ProtectiveAbove(calls, shortCall.Strike, width)
		if err != nil {
			return nil, err
		}
	case 4:
		// Ascending: long put, short put, short call, long call.
		longPut, err = e.sel.Nearest(puts, inputs.CustomStrikes[0])
		if err != nil {
			return nil, err
		}
		shortPut, err = e.sel.Nearest(puts, inputs.CustomStrikes[1])
		if err != nil {
			return nil, err
		}
		shortCall, err = e.sel.Nearest(calls, inputs.CustomStrikes[2])
		if err != nil {
			return nil, err
		}
		longCall, err = e.sel.Nearest(calls, inputs.CustomStrikes[3])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("iron condor expects 4 custom strikes, got %d", len(inputs.CustomStrikes))
	}

	if !(longPut.Strike < shortPut.Strike && shortPut.Strike < shortCall.Strike && shortCall.Strike < longCall.Strike) {
		return nil, fmt.Errorf("condor strikes %.2f/%.2f/%.2f/%.2f: %w",
			longPut.Strike, shortPut.Strike, shortCall.Strike, longCall.Strike, ErrInvalidStrikeOrdering)
	}

	legs := []models.Leg{
		e.sel.Leg(models.LegLong, longPut),
		e.sel.Leg(models.LegShort, shortPut),
		e.sel.Leg(models.LegShort, shortCall),
		e.sel.Leg(models.LegLong, longCall),
	}

	credit := legs[1].Premium + legs[2].Premium - legs[0].Premium - legs[3].Premium
	if credit <= 0 {
		return nil, fmt.Errorf("condor credit %.4f: %w", credit, ErrNegativeCredit)
	}

	wingWidth := math.Min(shortPut.Strike-longPut.Strike, longCall.Strike-shortCall.Strike)
	lower := shortPut.Strike - credit
	upper := shortCall.Strike + credit
	return &models.PositionResult{
		StrategyType:   models.StrategyIronCondor,
		Symbol:         inputs.Symbol,
		Legs:           legs,
		MaxLoss:        models.FiniteRisk(wingWidth - credit),
		MaxProfit:      models.FiniteRisk(credit),
		LowerBreakeven: &lower,
		UpperBreakeven: &upper,
		NetCredit:      &credit,
		RiskProfile:    models.RiskLow,
		Reasoning: fmt.Sprintf("short %.2f/%.2f strangle protected by %.2f/%.2f wings for %.2f credit; max loss %.2f",
			shortPut.Strike, shortCall.Strike, longPut.Strike, longCall.Strike, credit, wingWidth-credit),
	}, nil
}

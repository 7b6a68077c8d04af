package engine

import (
	"fmt"
	"math"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// ButterflyConfig tunes butterfly spread strike selection.
type ButterflyConfig struct {
	// WingWidthRatio sets the per-side wing distance as a fraction of spot.
	WingWidthRatio float64
}

// strikeTolerance absorbs float noise when matching listed strikes.
const strikeTolerance = 1e-6

// buildButterfly prices a call butterfly centered at the listed strike
// nearest spot: long one call at each wing, short two at the body. Wings
// must be symmetric so the payoff at or beyond either wing is exactly the
// debit paid.
func (e *Engine) buildButterfly(inputs *models.StrategyInputs, snap *models.MarketSnapshot) (*models.PositionResult, error) {
	calls, err := snap.Side(inputs.Expiration, models.OptionTypeCall)
	if err != nil {
		return nil, err
	}

	var low, center, high *models.OptionContract
	switch len(inputs.CustomStrikes) {
	case 0:
		center, err = e.sel.Nearest(calls, inputs.CurrentPrice)
		if err != nil {
			return nil, err
		}
		width := inputs.CurrentPrice * e.cfg.Butterfly.WingWidthRatio
		low, err = e.sel.ProtectiveBelow(calls, center.Strike, width)
		if err != nil {
			return nil, err
		}
		// The high wing must mirror the low wing exactly.
		high, err = e.exactStrike(calls, 2*center.Strike-low.Strike)
		if err != nil {
			return nil, err
		}
	case 3:
		low, err = e.sel.Nearest(calls, inputs.CustomStrikes[0])
		if err != nil {
			return nil, err
		}
		center, err = e.sel.Nearest(calls, inputs.CustomStrikes[1])
		if err != nil {
			return nil, err
		}
		high, err = e.sel.Nearest(calls, inputs.CustomStrikes[2])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("butterfly expects 3 custom strikes, got %d", len(inputs.CustomStrikes))
	}

	if !(low.Strike < center.Strike && center.Strike < high.Strike) {
		return nil, fmt.Errorf("butterfly strikes %.2f/%.2f/%.2f: %w",
			low.Strike, center.Strike, high.Strike, ErrInvalidStrikeOrdering)
	}
	if math.Abs((center.Strike-low.Strike)-(high.Strike-center.Strike)) > strikeTolerance {
		return nil, fmt.Errorf("butterfly wings %.2f/%.2f around %.2f are asymmetric: %w",
			low.Strike, high.Strike, center.Strike, ErrInvalidStrikeOrdering)
	}

	centerLeg := e.sel.Leg(models.LegShort, center)
	legs := []models.Leg{
		e.sel.Leg(models.LegLong, low),
		centerLeg,
		centerLeg,
		e.sel.Leg(models.LegLong, high),
	}

	debit := legs[0].Premium + legs[3].Premium - 2*centerLeg.Premium
	if debit <= 0 {
		return nil, fmt.Errorf("butterfly debit %.4f: %w", debit, ErrInvalidDebit)
	}

	span := center.Strike - low.Strike
	lower := low.Strike + debit
	upper := high.Strike - debit
	return &models.PositionResult{
		StrategyType:   models.StrategyButterflySpread,
		Symbol:         inputs.Symbol,
		Legs:           legs,
		MaxLoss:        models.FiniteRisk(debit),
		MaxProfit:      models.FiniteRisk(span - debit),
		LowerBreakeven: &lower,
		UpperBreakeven: &upper,
		NetDebit:       &debit,
		RiskProfile:    models.RiskLow,
		Reasoning: fmt.Sprintf("long %.2f/%.2f wings around twice-short %.2f body for %.2f debit; peaks at %.2f",
			low.Strike, high.Strike, center.Strike, debit, center.Strike),
	}, nil
}

// exactStrike finds the contract listed at exactly the given strike.
func (e *Engine) exactStrike(contracts []models.OptionContract, strike float64) (*models.OptionContract, error) {
	for i := range contracts {
		if math.Abs(contracts[i].Strike-strike) <= strikeTolerance {
			return &contracts[i], nil
		}
	}
	return nil, fmt.Errorf("no contract listed at strike %.2f: %w", strike, ErrInsufficientStrikes)
}

package engine

import (
	"fmt"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// StrangleConfig tunes the strangle-family strike selection.
type StrangleConfig struct {
	// ShortWidthFactor widens the short strangle's target distance relative
	// to the one-sigma expected move. Must be >= 1 so short strikes are
	// never closer to spot than an equivalent long strangle's.
	ShortWidthFactor float64
}

// strangleLegs resolves the put and call legs for a strangle at the given
// distance from spot.
func (e *Engine) strangleLegs(inputs *models.StrategyInputs, snap *models.MarketSnapshot,
	role models.LegRole, distance float64) (put, call models.Leg, err error) {
	puts, err := snap.Side(inputs.Expiration, models.OptionTypePut)
	if err != nil {
		return models.Leg{}, models.Leg{}, err
	}
	calls, err := snap.Side(inputs.Expiration, models.OptionTypeCall)
	if err != nil {
		return models.Leg{}, models.Leg{}, err
	}

	var putC, callC *models.OptionContract
	switch len(inputs.CustomStrikes) {
	case 0:
		putC, err = e.sel.AtOrBelow(puts, inputs.CurrentPrice-distance)
		if err == nil {
			callC, err = e.sel.AtOrAbove(calls, inputs.CurrentPrice+distance)
		}
	case 2:
		putC, err = e.sel.Nearest(puts, inputs.CustomStrikes[0])
		if err == nil {
			callC, err = e.sel.Nearest(calls, inputs.CustomStrikes[1])
		}
	default:
		err = fmt.Errorf("strangle expects 2 custom strikes, got %d", len(inputs.CustomStrikes))
	}
	if err != nil {
		return models.Leg{}, models.Leg{}, err
	}

	return e.sel.Leg(role, putC), e.sel.Leg(role, callC), nil
}

// buildLongStrangle prices a long OTM put plus a long OTM call, one sigma
// from spot, same expiration. Bounded loss (the premium paid), unbounded
// profit.
func (e *Engine) buildLongStrangle(inputs *models.StrategyInputs, snap *models.MarketSnapshot) (*models.PositionResult, error) {
	distance := expectedMove(inputs.CurrentPrice, inputs.ImpliedVolatility, inputs.DaysToExpiry)
	put, call, err := e.strangleLegs(inputs, snap, models.LegLong, distance)
	if err != nil {
		return nil, err
	}

	total := put.Premium + call.Premium
	if total <= 0 {
		return nil, fmt.Errorf("strangle premium %.4f: %w", total, ErrInvalidDebit)
	}

	lower := put.Strike - total
	upper := call.Strike + total
	return &models.PositionResult{
		StrategyType:   models.StrategyLongStrangle,
		Symbol:         inputs.Symbol,
		Legs:           []models.Leg{put, call},
		MaxLoss:        models.FiniteRisk(total),
		MaxProfit:      models.UnboundedRisk(),
		LowerBreakeven: &lower,
		UpperBreakeven: &upper,
		NetDebit:       &total,
		RiskProfile:    models.RiskMedium,
		Reasoning: fmt.Sprintf("long %.2f put / %.2f call for %.2f debit; profits beyond %.2f-%.2f",
			put.Strike, call.Strike, total, lower, upper),
	}, nil
}

// buildShortStrangle prices a short OTM put plus a short OTM call, with
// strikes widened beyond the equivalent long strangle's as a structural
// safety margin. Bounded profit (the credit), unbounded loss.
func (e *Engine) buildShortStrangle(inputs *models.StrategyInputs, snap *models.MarketSnapshot) (*models.PositionResult, error) {
	distance := expectedMove(inputs.CurrentPrice, inputs.ImpliedVolatility, inputs.DaysToExpiry) *
		e.cfg.Strangle.ShortWidthFactor
	put, call, err := e.strangleLegs(inputs, snap, models.LegShort, distance)
	if err != nil {
		return nil, err
	}

	credit := put.Premium + call.Premium
	if credit <= 0 {
		return nil, fmt.Errorf("strangle credit %.4f: %w", credit, ErrNegativeCredit)
	}

	lower := put.Strike - credit
	upper := call.Strike + credit
	return &models.PositionResult{
		StrategyType:   models.StrategyShortStrangle,
		Symbol:         inputs.Symbol,
		Legs:           []models.Leg{put, call},
		MaxLoss:        models.UnboundedRisk(),
		MaxProfit:      models.FiniteRisk(credit),
		LowerBreakeven: &lower,
		UpperBreakeven: &upper,
		NetCredit:      &credit,
		RiskProfile:    models.RiskUnlimited,
		Reasoning: fmt.Sprintf("short %.2f put / %.2f call for %.2f credit; loses beyond %.2f-%.2f with undefined risk",
			put.Strike, call.Strike, credit, lower, upper),
	}, nil
}

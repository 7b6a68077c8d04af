package engine

import (
	"fmt"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// calendarTimeValueRetention is the fraction of the far leg's premium assumed
// to survive as time value when the near leg expires. The diagonal calendar
// cannot be priced from intrinsic value alone, so its profile is a heuristic
// estimate, not an exact payoff; results carry Estimate=true.
const calendarTimeValueRetention = 0.5

// buildDiagonalCalendar prices a call diagonal: short a near-term call at the
// strike just above spot, long a longer-dated call at the strike nearest
// spot. Net debit is required (far leg bought, near leg sold).
func (e *Engine) buildDiagonalCalendar(inputs *models.StrategyInputs, snap *models.MarketSnapshot) (*models.PositionResult, error) {
	nearCalls, err := snap.Side(inputs.Expiration, models.OptionTypeCall)
	if err != nil {
		return nil, err
	}

	farExpiration := ""
	for _, exp := range snap.Expirations() {
		if exp > inputs.Expiration {
			farExpiration = exp
			break
		}
	}
	if farExpiration == "" {
		return nil, &InsufficientMarketDataError{
			Symbol:     inputs.Symbol,
			Expiration: inputs.Expiration,
			Issues: []Issue{{
				Severity: SeverityError,
				Message:  fmt.Sprintf("no expiration later than %s for the long leg", inputs.Expiration),
			}},
		}
	}
	farCalls, err := snap.Side(farExpiration, models.OptionTypeCall)
	if err != nil {
		return nil, err
	}

	var nearC, farC *models.OptionContract
	switch len(inputs.CustomStrikes) {
	case 0:
		nearC, err = e.sel.AtOrAbove(nearCalls, inputs.CurrentPrice)
		if err != nil {
			return nil, err
		}
		farC, err = e.sel.Nearest(farCalls, inputs.CurrentPrice)
		if err != nil {
			return nil, err
		}
	case 2:
		// Ascending: far long strike, near short strike.
		farC, err = e.sel.Nearest(farCalls, inputs.CustomStrikes[0])
		if err != nil {
			return nil, err
		}
		nearC, err = e.sel.Nearest(nearCalls, inputs.CustomStrikes[1])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("diagonal calendar expects 2 custom strikes, got %d", len(inputs.CustomStrikes))
	}

	nearLeg := e.sel.Leg(models.LegShort, nearC)
	farLeg := e.sel.Leg(models.LegLong, farC)

	debit := farLeg.Premium - nearLeg.Premium
	if debit <= 0 {
		return nil, fmt.Errorf("calendar debit %.4f (far %.2f, near %.2f): %w",
			debit, farLeg.Premium, nearLeg.Premium, ErrInvalidDebit)
	}

	legs := []models.Leg{nearLeg, farLeg}

	// Best case at near expiration: spot pinned at the short strike, the
	// short leg expires worthless and the far leg keeps part of its time
	// value. This is the heuristic peak, not an exact number.
	peak := calendarPayoff(legs, nearLeg.Strike)
	if peak < 0 {
		peak = 0
	}

	return &models.PositionResult{
		StrategyType: models.StrategyDiagonalCalendar,
		Symbol:       inputs.Symbol,
		Legs:         legs,
		MaxLoss:      models.FiniteRisk(debit),
		MaxProfit:    models.FiniteRisk(peak),
		NetDebit:     &debit,
		RiskProfile:  models.RiskMedium,
		Estimate:     true,
		Reasoning: fmt.Sprintf("short %s %.2f call against long %s %.2f call for %.2f debit; "+
			"max profit %.2f is a time-decay estimate, not an exact payoff",
			inputs.Expiration, nearLeg.Strike, farExpiration, farLeg.Strike, debit, peak),
	}, nil
}

// calendarPayoff estimates the diagonal's P&L at the near leg's expiration.
// The short leg is settled at intrinsic value; the long leg is valued at
// intrinsic plus a retained fraction of its original premium. Legs are
// ordered short-near first, long-far second.
func calendarPayoff(legs []models.Leg, price float64) float64 {
	total := 0.0
	for _, leg := range legs {
		if leg.Role == models.LegShort {
			total += leg.Premium - leg.IntrinsicAt(price)
		} else {
			retained := calendarTimeValueRetention * leg.Premium
			total += leg.IntrinsicAt(price) + retained - leg.Premium
		}
	}
	return total
}

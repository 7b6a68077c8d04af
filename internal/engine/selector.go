package engine

import (
	"fmt"
	"math"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// Selector turns abstract leg requests ("a put roughly this far below spot",
// "the protective strike beyond the short strike") into concrete contracts
// with usable premiums. It is stateless.
type Selector struct{}

// Premium derives a usable premium for a contract: the bid/ask midpoint,
// falling back to the last trade only when both bid and ask are zero. The
// second return value is true when the fallback was used, marking the leg
// low-confidence.
func (Selector) Premium(c *models.OptionContract) (float64, bool) {
	if c.Bid == 0 && c.Ask == 0 {
		return c.Last, true
	}
	return c.Mid(), false
}

// Leg builds a priced leg from a contract.
func (s Selector) Leg(role models.LegRole, c *models.OptionContract) models.Leg {
	premium, lowConfidence := s.Premium(c)
	return models.Leg{
		Role:          role,
		Type:          c.Type,
		Strike:        c.Strike,
		Premium:       premium,
		LowConfidence: lowConfidence,
	}
}

// AtOrBelow returns the contract with the highest strike at or below limit.
// Strikes inside the limit (above it) are never chosen.
func (Selector) AtOrBelow(contracts []models.OptionContract, limit float64) (*models.OptionContract, error) {
	var best *models.OptionContract
	for i := range contracts {
		if contracts[i].Strike > limit {
			continue
		}
		if best == nil || contracts[i].Strike > best.Strike {
			best = &contracts[i]
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no strike at or below %.2f: %w", limit, ErrInsufficientStrikes)
	}
	return best, nil
}

// AtOrAbove returns the contract with the lowest strike at or above limit.
// Strikes inside the limit (below it) are never chosen.
func (Selector) AtOrAbove(contracts []models.OptionContract, limit float64) (*models.OptionContract, error) {
	var best *models.OptionContract
	for i := range contracts {
		if contracts[i].Strike < limit {
			continue
		}
		if best == nil || contracts[i].Strike < best.Strike {
			best = &contracts[i]
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no strike at or above %.2f: %w", limit, ErrInsufficientStrikes)
	}
	return best, nil
}

// Nearest returns the contract whose strike is closest to target, ties broken
// by lower strike.
func (Selector) Nearest(contracts []models.OptionContract, target float64) (*models.OptionContract, error) {
	if len(contracts) == 0 {
		return nil, fmt.Errorf("empty contract list: %w", ErrInsufficientStrikes)
	}
	best := &contracts[0]
	bestDiff := math.Abs(best.Strike - target)
	for i := 1; i < len(contracts); i++ {
		diff := math.Abs(contracts[i].Strike - target)
		if diff < bestDiff || (diff == bestDiff && contracts[i].Strike < best.Strike) {
			best = &contracts[i]
			bestDiff = diff
		}
	}
	return best, nil
}

// ProtectiveBelow returns the protective long strike for a defined-risk
// shape: the highest strike at or below shortStrike-width, strictly below
// the short strike.
func (s Selector) ProtectiveBelow(contracts []models.OptionContract, shortStrike, width float64) (*models.OptionContract, error) {
	if width <= 0 {
		return nil, fmt.Errorf("wing width %.2f: %w", width, ErrInvalidStrikeOrdering)
	}
	outer, err := s.AtOrBelow(contracts, shortStrike-width)
	if err != nil {
		return nil, err
	}
	if outer.Strike >= shortStrike {
		return nil, fmt.Errorf("protective strike %.2f vs short strike %.2f: %w",
			outer.Strike, shortStrike, ErrInvalidStrikeOrdering)
	}
	return outer, nil
}

// ProtectiveAbove returns the protective long strike for a defined-risk
// shape: the lowest strike at or above shortStrike+width, strictly above the
// short strike.
func (s Selector) ProtectiveAbove(contracts []models.OptionContract, shortStrike, width float64) (*models.OptionContract, error) {
	if width <= 0 {
		return nil, fmt.Errorf("wing width %.2f: %w", width, ErrInvalidStrikeOrdering)
	}
	outer, err := s.AtOrAbove(contracts, shortStrike+width)
	if err != nil {
		return nil, err
	}
	if outer.Strike <= shortStrike {
		return nil, fmt.Errorf("protective strike %.2f vs short strike %.2f: %w",
			outer.Strike, shortStrike, ErrInvalidStrikeOrdering)
	}
	return outer, nil
}

// expectedMove is the one-sigma expected move of the underlying over the
// remaining life of the option: spot * IV * sqrt(DTE/365).
func expectedMove(spot, iv float64, dte int) float64 {
	return spot * iv * math.Sqrt(float64(dte)/365.0)
}

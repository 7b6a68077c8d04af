package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StrategyType identifies one of the supported multi-leg option strategies.
// The set is closed: the dispatcher matches exhaustively over these values and
// rejects anything else.
type StrategyType string

const (
	// StrategyLongStrangle buys an OTM put and an OTM call, same expiration
	StrategyLongStrangle StrategyType = "long_strangle"
	// StrategyShortStrangle sells an OTM put and an OTM call, same expiration
	StrategyShortStrangle StrategyType = "short_strangle"
	// StrategyIronCondor sells an inner put/call pair protected by outer wings
	StrategyIronCondor StrategyType = "iron_condor"
	// StrategyButterflySpread buys wings around a twice-sold body strike
	StrategyButterflySpread StrategyType = "butterfly_spread"
	// StrategyDiagonalCalendar sells a near-term leg against a longer-dated long leg
	StrategyDiagonalCalendar StrategyType = "diagonal_calendar"
)

// Valid returns true if the StrategyType is one of the defined constants
func (t StrategyType) Valid() bool {
	switch t {
	case StrategyLongStrangle, StrategyShortStrangle, StrategyIronCondor,
		StrategyButterflySpread, StrategyDiagonalCalendar:
		return true
	default:
		return false
	}
}

// StrategyTypes returns all supported strategy types.
func StrategyTypes() []StrategyType {
	return []StrategyType{
		StrategyLongStrangle,
		StrategyShortStrangle,
		StrategyIronCondor,
		StrategyButterflySpread,
		StrategyDiagonalCalendar,
	}
}

// maxIV bounds the canonical decimal IV representation. 150% vol is already
// extreme for anything the engine prices; values above it almost certainly
// mean the caller passed a percentage.
const maxIV = 1.5

// StrategyInputs are the caller-supplied parameters for one valuation call.
//
// ImpliedVolatility must be in canonical decimal form (0.20 = 20%). Values
// that look like percentages are rejected at the boundary, never rescaled.
type StrategyInputs struct {
	StrategyType      StrategyType `json:"strategy_type"`
	Symbol            string       `json:"symbol"`
	CurrentPrice      float64      `json:"current_price"`
	Expiration        string       `json:"expiration"` // YYYY-MM-DD
	DaysToExpiry      int          `json:"days_to_expiry"`
	ImpliedVolatility float64      `json:"implied_volatility"` // decimal, 0-1
	IVPercentile      float64      `json:"iv_percentile"`      // 0-100
	// CustomStrikes optionally pins the exact strikes to use, lowest first,
	// instead of letting the selector derive them. Length must match the
	// strategy shape (2 for strangles, 4 for condors, 3 for butterflies,
	// 2 for calendars).
	CustomStrikes []float64 `json:"custom_strikes,omitempty"`
}

// Validate checks all input ranges at the engine boundary.
func (in *StrategyInputs) Validate() error {
	if !in.StrategyType.Valid() {
		return fmt.Errorf("invalid strategy type: %q", in.StrategyType)
	}
	if strings.TrimSpace(in.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if in.CurrentPrice <= 0 {
		return fmt.Errorf("current price must be positive (got %.2f)", in.CurrentPrice)
	}
	if _, err := time.Parse("2006-01-02", in.Expiration); err != nil {
		return fmt.Errorf("expiration must be YYYY-MM-DD (got %q)", in.Expiration)
	}
	if in.DaysToExpiry < 0 {
		return fmt.Errorf("days to expiry must be >= 0 (got %d)", in.DaysToExpiry)
	}
	if in.ImpliedVolatility <= 0 || in.ImpliedVolatility > maxIV {
		return fmt.Errorf("implied volatility must be a decimal in (0, %.1f], e.g. 0.20 for 20%% (got %.4f)",
			maxIV, in.ImpliedVolatility)
	}
	if in.IVPercentile < 0 || in.IVPercentile > 100 {
		return fmt.Errorf("IV percentile must be in [0, 100] (got %.2f)", in.IVPercentile)
	}
	if len(in.CustomStrikes) > 0 {
		if !sort.Float64sAreSorted(in.CustomStrikes) {
			return fmt.Errorf("custom strikes must be ascending")
		}
		for _, k := range in.CustomStrikes {
			if k <= 0 {
				return fmt.Errorf("custom strikes must be positive (got %.2f)", k)
			}
		}
	}
	return nil
}

package models

import (
	"errors"
	"fmt"
)

// RiskProfile is a coarse classification of a strategy's risk character.
type RiskProfile string

const (
	// RiskLow marks defined-risk strategies with small bounded loss
	RiskLow RiskProfile = "low"
	// RiskMedium marks bounded-loss strategies with meaningful premium at risk
	RiskMedium RiskProfile = "medium"
	// RiskHigh marks bounded but outsized risk
	RiskHigh RiskProfile = "high"
	// RiskUnlimited marks strategies whose loss is unbounded
	RiskUnlimited RiskProfile = "unlimited"
)

// ErrUnboundedArithmetic is returned by RiskAmount helpers when an operand is
// unbounded. Callers must branch on Unbounded instead of computing through it.
var ErrUnboundedArithmetic = errors.New("arithmetic on unbounded risk amount")

// RiskAmount is a dollar amount that may be unbounded. The unbounded case is
// an explicit tag rather than a float infinity so that accidental arithmetic
// fails loudly instead of producing NaN.
type RiskAmount struct {
	Value     float64 `json:"value"`
	Unbounded bool    `json:"unbounded"`
}

// FiniteRisk returns a bounded risk amount.
func FiniteRisk(v float64) RiskAmount {
	return RiskAmount{Value: v}
}

// UnboundedRisk returns the unbounded sentinel. Value is zero and must not
// be read.
func UnboundedRisk() RiskAmount {
	return RiskAmount{Unbounded: true}
}

// Finite returns the bounded value, or an error for the unbounded sentinel.
func (r RiskAmount) Finite() (float64, error) {
	if r.Unbounded {
		return 0, ErrUnboundedArithmetic
	}
	return r.Value, nil
}

// Add returns the sum of two bounded amounts, or an error if either is
// unbounded.
func (r RiskAmount) Add(other RiskAmount) (RiskAmount, error) {
	if r.Unbounded || other.Unbounded {
		return RiskAmount{}, ErrUnboundedArithmetic
	}
	return FiniteRisk(r.Value + other.Value), nil
}

func (r RiskAmount) String() string {
	if r.Unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// PositionResult is the full risk/reward profile a calculator derives from
// its selected legs. All dollar amounts are per share; one contract is 100
// shares.
//
// Exactly one of NetCredit/NetDebit is set, matching whether the strategy is
// opened for a credit or a debit.
type PositionResult struct {
	StrategyType   StrategyType `json:"strategy_type"`
	Symbol         string       `json:"symbol"`
	Legs           []Leg        `json:"legs"`
	MaxLoss        RiskAmount   `json:"max_loss"`
	MaxProfit      RiskAmount   `json:"max_profit"`
	LowerBreakeven *float64     `json:"lower_breakeven,omitempty"`
	UpperBreakeven *float64     `json:"upper_breakeven,omitempty"`
	NetCredit      *float64     `json:"net_credit,omitempty"`
	NetDebit       *float64     `json:"net_debit,omitempty"`
	RiskProfile    RiskProfile  `json:"risk_profile"`
	// Estimate is true when the numbers are a heuristic approximation rather
	// than an exact expiration payoff (diagonal calendar only).
	Estimate bool `json:"estimate,omitempty"`
	// Reasoning is a short human-readable description of how the numbers
	// were derived.
	Reasoning string `json:"reasoning,omitempty"`
}

// Validate checks the structural invariants every calculator must satisfy.
func (r *PositionResult) Validate() error {
	if !r.StrategyType.Valid() {
		return fmt.Errorf("result has invalid strategy type %q", r.StrategyType)
	}
	if len(r.Legs) == 0 {
		return fmt.Errorf("result has no legs")
	}
	for i, leg := range r.Legs {
		if !leg.Role.Valid() || !leg.Type.Valid() {
			return fmt.Errorf("leg %d has invalid role/type %q/%q", i, leg.Role, leg.Type)
		}
		if leg.Strike <= 0 {
			return fmt.Errorf("leg %d has non-positive strike %.2f", i, leg.Strike)
		}
	}
	if (r.NetCredit == nil) == (r.NetDebit == nil) {
		return fmt.Errorf("exactly one of net credit/net debit must be set")
	}
	if r.NetCredit != nil && *r.NetCredit <= 0 {
		return fmt.Errorf("net credit must be positive (got %.4f)", *r.NetCredit)
	}
	if r.NetDebit != nil && *r.NetDebit <= 0 {
		return fmt.Errorf("net debit must be positive (got %.4f)", *r.NetDebit)
	}
	if !r.MaxLoss.Unbounded && r.MaxLoss.Value < 0 {
		return fmt.Errorf("bounded max loss must be >= 0 (got %.4f)", r.MaxLoss.Value)
	}
	if !r.MaxProfit.Unbounded && r.MaxProfit.Value < 0 {
		return fmt.Errorf("bounded max profit must be >= 0 (got %.4f)", r.MaxProfit.Value)
	}
	if r.LowerBreakeven != nil && r.UpperBreakeven != nil && *r.LowerBreakeven >= *r.UpperBreakeven {
		return fmt.Errorf("lower breakeven %.2f must be below upper breakeven %.2f",
			*r.LowerBreakeven, *r.UpperBreakeven)
	}
	return nil
}

package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const sharesPerContract = 100.0

// PositionStatus is the lifecycle state of a tracked position.
type PositionStatus string

const (
	// PositionOpen marks a position currently held
	PositionOpen PositionStatus = "open"
	// PositionClosed marks a position that has been exited
	PositionClosed PositionStatus = "closed"
)

// Valid returns true if the PositionStatus is one of the defined constants
func (s PositionStatus) Valid() bool {
	return s == PositionOpen || s == PositionClosed
}

// Position is a tracked multi-leg option position created from a valuation
// result. Exactly one of CreditReceived/DebitPaid is positive, matching the
// strategy's opening direction.
type Position struct {
	ID             string         `json:"id"`
	Symbol         string         `json:"symbol"`
	StrategyType   StrategyType   `json:"strategy_type"`
	Status         PositionStatus `json:"status"`
	Legs           []Leg          `json:"legs"`
	Quantity       int            `json:"quantity"`
	Expiration     time.Time      `json:"expiration"`
	EntryDate      time.Time      `json:"entry_date"`
	ExitDate       time.Time      `json:"exit_date,omitempty"`
	ExitReason     string         `json:"exit_reason,omitempty"`
	CreditReceived float64        `json:"credit_received,omitempty"` // per share
	DebitPaid      float64        `json:"debit_paid,omitempty"`      // per share
	EntrySpot      float64        `json:"entry_spot"`
	EntryIV        float64        `json:"entry_iv"`
	CurrentPnL     float64        `json:"current_pnl"` // total dollars
	// DTE is derived; avoid persisting to prevent staleness
	DTE int `json:"-"`
}

// NewPositionFromResult creates an open tracked position from a valuation
// result.
func NewPositionFromResult(id string, result *PositionResult, inputs *StrategyInputs, quantity int) (*Position, error) {
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("cannot track invalid result: %w", err)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive (got %d)", quantity)
	}
	exp, err := time.Parse("2006-01-02", inputs.Expiration)
	if err != nil {
		return nil, fmt.Errorf("parsing expiration: %w", err)
	}

	pos := &Position{
		ID:           id,
		Symbol:       result.Symbol,
		StrategyType: result.StrategyType,
		Status:       PositionOpen,
		Legs:         append([]Leg(nil), result.Legs...),
		Quantity:     quantity,
		Expiration:   exp,
		EntryDate:    time.Now().UTC(),
		EntrySpot:    inputs.CurrentPrice,
		EntryIV:      inputs.ImpliedVolatility,
	}
	if result.NetCredit != nil {
		pos.CreditReceived = *result.NetCredit
	} else {
		pos.DebitPaid = *result.NetDebit
	}
	return pos, nil
}

// CalculateDTE calculates and returns the days to expiration for the position.
func (p *Position) CalculateDTE() int {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	exp := p.Expiration.UTC().Truncate(24 * time.Hour)
	days := int(exp.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CapitalAtRisk returns the total dollars committed at entry: credit received
// for credit strategies, debit paid for debit strategies.
func (p *Position) CapitalAtRisk() float64 {
	per := p.CreditReceived
	if p.DebitPaid > 0 {
		per = p.DebitPaid
	}
	return per * float64(p.Quantity) * sharesPerContract
}

// ProfitPercent returns P/L as a percentage of capital at risk. May be
// negative (loss).
func (p *Position) ProfitPercent() float64 {
	denom := math.Abs(p.CapitalAtRisk())
	if denom == 0 {
		return 0
	}
	return (p.CurrentPnL / denom) * 100
}

// Close marks the position closed with a final P/L and reason.
func (p *Position) Close(finalPnL float64, reason string) error {
	if p.Status != PositionOpen {
		return fmt.Errorf("position %s is not open (status %s)", p.ID, p.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("position %s: exit reason is required", p.ID)
	}
	p.Status = PositionClosed
	p.CurrentPnL = finalPnL
	p.ExitReason = reason
	p.ExitDate = time.Now().UTC()
	return nil
}

// Validate ensures the position's data is consistent with its status.
func (p *Position) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("position ID is required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("position %s has invalid status %q", p.ID, p.Status)
	}
	if !p.StrategyType.Valid() {
		return fmt.Errorf("position %s has invalid strategy type %q", p.ID, p.StrategyType)
	}
	if len(p.Legs) == 0 {
		return fmt.Errorf("position %s has no legs", p.ID)
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("position %s: quantity must be > 0 (current: %d)", p.ID, p.Quantity)
	}
	if (p.CreditReceived > 0) == (p.DebitPaid > 0) {
		return fmt.Errorf("position %s: exactly one of credit received/debit paid must be positive (credit: %.2f, debit: %.2f)",
			p.ID, p.CreditReceived, p.DebitPaid)
	}
	if p.EntryDate.IsZero() {
		return fmt.Errorf("position %s: entry date must be set", p.ID)
	}

	switch p.Status {
	case PositionOpen:
		if !p.ExitDate.IsZero() {
			return fmt.Errorf("position %s: exit date must be zero for open positions (current: %v)", p.ID, p.ExitDate)
		}
		if strings.TrimSpace(p.ExitReason) != "" {
			return fmt.Errorf("position %s: exit reason must be empty for open positions (current: %s)", p.ID, p.ExitReason)
		}
	case PositionClosed:
		if p.ExitDate.IsZero() {
			return fmt.Errorf("position %s: exit date must be set for closed positions", p.ID)
		}
		if strings.TrimSpace(p.ExitReason) == "" {
			return fmt.Errorf("position %s: exit reason must be set for closed positions", p.ID)
		}
		if !p.EntryDate.Before(p.ExitDate) {
			return fmt.Errorf("position %s: entry date (%v) must be before exit date (%v)",
				p.ID, p.EntryDate, p.ExitDate)
		}
	}
	return nil
}

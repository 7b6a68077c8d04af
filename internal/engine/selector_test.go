package engine

import (
	"errors"
	"testing"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

func strikeGrid(side models.OptionType, strikes ...float64) []models.OptionContract {
	contracts := make([]models.OptionContract, 0, len(strikes))
	for _, k := range strikes {
		contracts = append(contracts, contractAt(side, k, 1.00, 1.10))
	}
	return contracts
}

func TestSelectorPremium(t *testing.T) {
	var sel Selector

	tests := []struct {
		name          string
		contract      models.OptionContract
		wantPremium   float64
		lowConfidence bool
	}{
		{
			name:        "midpoint of live quote",
			contract:    models.OptionContract{Bid: 1.20, Ask: 1.30, Last: 9.99},
			wantPremium: 1.25,
		},
		{
			name:        "one-sided quote still uses midpoint",
			contract:    models.OptionContract{Bid: 0, Ask: 0.10, Last: 9.99},
			wantPremium: 0.05,
		},
		{
			name:          "dead quote falls back to last trade",
			contract:      models.OptionContract{Bid: 0, Ask: 0, Last: 1.15},
			wantPremium:   1.15,
			lowConfidence: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			premium, lowConfidence := sel.Premium(&tt.contract)
			if premium != tt.wantPremium {
				t.Errorf("premium = %.4f, want %.4f", premium, tt.wantPremium)
			}
			if lowConfidence != tt.lowConfidence {
				t.Errorf("lowConfidence = %v, want %v", lowConfidence, tt.lowConfidence)
			}
		})
	}
}

func TestSelectorAtOrBelow(t *testing.T) {
	var sel Selector
	puts := strikeGrid(models.OptionTypePut, 200, 210, 220, 230)

	c, err := sel.AtOrBelow(puts, 215)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 210 {
		t.Errorf("strike = %.2f, want 210", c.Strike)
	}

	// An exact match is at the limit, not inside it.
	c, err = sel.AtOrBelow(puts, 220)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 220 {
		t.Errorf("strike = %.2f, want 220", c.Strike)
	}

	if _, err := sel.AtOrBelow(puts, 199); !errors.Is(err, ErrInsufficientStrikes) {
		t.Errorf("err = %v, want ErrInsufficientStrikes", err)
	}
}

func TestSelectorAtOrAbove(t *testing.T) {
	var sel Selector
	calls := strikeGrid(models.OptionTypeCall, 240, 250, 260)

	c, err := sel.AtOrAbove(calls, 245)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 250 {
		t.Errorf("strike = %.2f, want 250", c.Strike)
	}

	if _, err := sel.AtOrAbove(calls, 261); !errors.Is(err, ErrInsufficientStrikes) {
		t.Errorf("err = %v, want ErrInsufficientStrikes", err)
	}
}

func TestSelectorNearest(t *testing.T) {
	var sel Selector
	calls := strikeGrid(models.OptionTypeCall, 220, 230, 240)

	c, err := sel.Nearest(calls, 233)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 230 {
		t.Errorf("strike = %.2f, want 230", c.Strike)
	}

	// Exact tie resolves to the lower strike.
	c, err = sel.Nearest(calls, 235)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 230 {
		t.Errorf("tie strike = %.2f, want 230", c.Strike)
	}

	if _, err := sel.Nearest(nil, 230); !errors.Is(err, ErrInsufficientStrikes) {
		t.Errorf("err = %v, want ErrInsufficientStrikes", err)
	}
}

func TestSelectorProtectiveStrikes(t *testing.T) {
	var sel Selector
	puts := strikeGrid(models.OptionTypePut, 200, 210, 220)
	calls := strikeGrid(models.OptionTypeCall, 240, 250, 260)

	c, err := sel.ProtectiveBelow(puts, 220, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 210 {
		t.Errorf("strike = %.2f, want 210", c.Strike)
	}

	c, err = sel.ProtectiveAbove(calls, 240, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strike != 250 {
		t.Errorf("strike = %.2f, want 250", c.Strike)
	}

	if _, err := sel.ProtectiveBelow(puts, 220, 0); !errors.Is(err, ErrInvalidStrikeOrdering) {
		t.Errorf("zero width err = %v, want ErrInvalidStrikeOrdering", err)
	}
	if _, err := sel.ProtectiveBelow(puts, 195, 9); !errors.Is(err, ErrInsufficientStrikes) {
		t.Errorf("err = %v, want ErrInsufficientStrikes", err)
	}
}

func TestExpectedMove(t *testing.T) {
	// 230 * 0.08 * sqrt(365/365) = 18.40
	got := expectedMove(230, 0.08, 365)
	if diff := got - 18.40; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expectedMove = %.4f, want 18.40", got)
	}
	if expectedMove(230, 0.08, 0) != 0 {
		t.Errorf("expectedMove at zero DTE should be 0")
	}
}

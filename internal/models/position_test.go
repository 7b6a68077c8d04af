package models

import (
	"testing"
	"time"
)

func openTestPosition() *Position {
	return &Position{
		ID:           "pos-1",
		Symbol:       "SPY",
		StrategyType: StrategyShortStrangle,
		Status:       PositionOpen,
		Legs: []Leg{
			{Role: LegShort, Type: OptionTypePut, Strike: 200, Premium: 0.65},
			{Role: LegShort, Type: OptionTypeCall, Strike: 260, Premium: 0.60},
		},
		Quantity:       2,
		Expiration:     time.Now().UTC().Add(45 * 24 * time.Hour),
		EntryDate:      time.Now().UTC().Add(-time.Hour),
		CreditReceived: 1.25,
		EntrySpot:      230,
		EntryIV:        0.18,
	}
}

func TestNewPositionFromResult(t *testing.T) {
	result := validResult()
	inputs := validInputs()

	pos, err := NewPositionFromResult("pos-1", &result, &inputs, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Status != PositionOpen {
		t.Errorf("status = %s, want open", pos.Status)
	}
	if pos.DebitPaid != 2.45 || pos.CreditReceived != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 2.45/0", pos.DebitPaid, pos.CreditReceived)
	}
	if pos.Expiration.Format("2006-01-02") != inputs.Expiration {
		t.Errorf("expiration = %v, want %s", pos.Expiration, inputs.Expiration)
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("new position failed validation: %v", err)
	}

	if _, err := NewPositionFromResult("pos-2", &result, &inputs, 0); err == nil {
		t.Error("zero quantity must be rejected")
	}

	bad := validResult()
	bad.Legs = nil
	if _, err := NewPositionFromResult("pos-3", &bad, &inputs, 1); err == nil {
		t.Error("invalid result must be rejected")
	}
}

func TestPositionCapitalAtRisk(t *testing.T) {
	pos := openTestPosition()
	// 1.25/share * 2 contracts * 100 shares
	if got := pos.CapitalAtRisk(); got != 250 {
		t.Errorf("CapitalAtRisk = %.2f, want 250.00", got)
	}

	pos.CurrentPnL = 125
	if got := pos.ProfitPercent(); got != 50 {
		t.Errorf("ProfitPercent = %.2f, want 50.00", got)
	}
}

func TestPositionClose(t *testing.T) {
	pos := openTestPosition()

	if err := pos.Close(180, ""); err == nil {
		t.Error("close without a reason must fail")
	}

	if err := pos.Close(180, "profit target"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Status != PositionClosed || pos.CurrentPnL != 180 {
		t.Errorf("status/pnl = %s/%.2f, want closed/180.00", pos.Status, pos.CurrentPnL)
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("closed position failed validation: %v", err)
	}

	if err := pos.Close(200, "again"); err == nil {
		t.Error("closing twice must fail")
	}
}

func TestPositionValidate(t *testing.T) {
	pos := openTestPosition()
	if err := pos.Validate(); err != nil {
		t.Fatalf("open position failed validation: %v", err)
	}

	pos.ExitReason = "early"
	if err := pos.Validate(); err == nil {
		t.Error("open position with an exit reason must fail validation")
	}

	pos = openTestPosition()
	pos.DebitPaid = 1.0
	if err := pos.Validate(); err == nil {
		t.Error("both credit and debit set must fail validation")
	}

	pos = openTestPosition()
	pos.Quantity = 0
	if err := pos.Validate(); err == nil {
		t.Error("zero quantity must fail validation")
	}
}

func TestPositionCalculateDTE(t *testing.T) {
	pos := openTestPosition()
	if dte := pos.CalculateDTE(); dte < 43 || dte > 45 {
		t.Errorf("DTE = %d, want about 45", dte)
	}

	pos.Expiration = time.Now().UTC().Add(-10 * 24 * time.Hour)
	if dte := pos.CalculateDTE(); dte != 0 {
		t.Errorf("expired DTE = %d, want 0", dte)
	}
}

package models

import (
	"errors"
	"strings"
	"testing"
)

func TestRiskAmount(t *testing.T) {
	finite := FiniteRisk(2.45)
	v, err := finite.Finite()
	if err != nil || v != 2.45 {
		t.Errorf("Finite() = %.2f, %v, want 2.45, nil", v, err)
	}
	if finite.String() != "2.45" {
		t.Errorf("String() = %q, want \"2.45\"", finite.String())
	}

	unbounded := UnboundedRisk()
	if _, err := unbounded.Finite(); !errors.Is(err, ErrUnboundedArithmetic) {
		t.Errorf("Finite() on unbounded err = %v, want ErrUnboundedArithmetic", err)
	}
	if unbounded.String() != "unbounded" {
		t.Errorf("String() = %q, want \"unbounded\"", unbounded.String())
	}

	sum, err := FiniteRisk(1.0).Add(FiniteRisk(2.0))
	if err != nil || sum.Value != 3.0 {
		t.Errorf("Add = %v, %v, want 3.00, nil", sum, err)
	}
	if _, err := finite.Add(unbounded); !errors.Is(err, ErrUnboundedArithmetic) {
		t.Errorf("Add with unbounded err = %v, want ErrUnboundedArithmetic", err)
	}
}

func validResult() PositionResult {
	debit := 2.45
	lower, upper := 207.55, 252.45
	return PositionResult{
		StrategyType: StrategyLongStrangle,
		Symbol:       "SPY",
		Legs: []Leg{
			{Role: LegLong, Type: OptionTypePut, Strike: 210, Premium: 1.25},
			{Role: LegLong, Type: OptionTypeCall, Strike: 250, Premium: 1.20},
		},
		MaxLoss:        FiniteRisk(debit),
		MaxProfit:      UnboundedRisk(),
		LowerBreakeven: &lower,
		UpperBreakeven: &upper,
		NetDebit:       &debit,
		RiskProfile:    RiskMedium,
	}
}

func TestPositionResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PositionResult)
		wantErr string
	}{
		{"valid", func(r *PositionResult) {}, ""},
		{"no legs", func(r *PositionResult) { r.Legs = nil }, "no legs"},
		{"bad leg role", func(r *PositionResult) { r.Legs[0].Role = "naked" }, "invalid role"},
		{"zero strike", func(r *PositionResult) { r.Legs[0].Strike = 0 }, "strike"},
		{"neither credit nor debit", func(r *PositionResult) { r.NetDebit = nil }, "exactly one"},
		{"both credit and debit", func(r *PositionResult) {
			credit := 1.0
			r.NetCredit = &credit
		}, "exactly one"},
		{"negative debit", func(r *PositionResult) {
			bad := -0.10
			r.NetDebit = &bad
		}, "net debit"},
		{"negative bounded loss", func(r *PositionResult) { r.MaxLoss = FiniteRisk(-1) }, "max loss"},
		{"inverted breakevens", func(r *PositionResult) {
			*r.LowerBreakeven, *r.UpperBreakeven = *r.UpperBreakeven, *r.LowerBreakeven
		}, "breakeven"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

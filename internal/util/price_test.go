package util

import (
	"math"
	"testing"
)

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		tick float64
		want float64
	}{
		{"round down", 1.2342, 0.01, 1.23},
		{"round up", 1.2367, 0.01, 1.24},
		{"nickel tick", 2.13, 0.05, 2.15},
		{"already on tick", 1.25, 0.01, 1.25},
		{"zero tick is a no-op", 1.2345, 0, 1.2345},
		{"negative tick is a no-op", 1.2345, -0.01, 1.2345},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToTick(tt.x, tt.tick)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RoundToTick(%v, %v) = %v, want %v", tt.x, tt.tick, got, tt.want)
			}
		})
	}
}

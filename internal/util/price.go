// Package util holds price helpers shared by the calculators, the synthetic
// data provider, and position tracking.
package util

import "math"

// RoundToTick rounds a price or premium to the nearest tick increment
// (0.01 for option premiums). A non-positive tick returns x unchanged.
func RoundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}

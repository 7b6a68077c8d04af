// Package models defines the data types shared across the valuation engine:
// option contracts, market snapshots, strategy inputs, and position results.
package models

import "math"

// OptionType represents the type of option contract.
type OptionType string

const (
	// OptionTypePut represents a put option contract
	OptionTypePut OptionType = "put"
	// OptionTypeCall represents a call option contract
	OptionTypeCall OptionType = "call"
)

// Valid returns true if the OptionType is one of the defined constants
func (t OptionType) Valid() bool {
	switch t {
	case OptionTypePut, OptionTypeCall:
		return true
	default:
		return false
	}
}

// LegRole identifies whether a leg is bought or sold.
type LegRole string

const (
	// LegLong marks a bought leg (premium paid)
	LegLong LegRole = "long"
	// LegShort marks a sold leg (premium received)
	LegShort LegRole = "short"
)

// Valid returns true if the LegRole is one of the defined constants
func (r LegRole) Valid() bool {
	return r == LegLong || r == LegShort
}

// OptionContract is a single listed option as delivered by a market data
// provider. Prices are per share. The engine never mutates contracts; a
// bid > ask violation is reported by the validator rather than corrected.
type OptionContract struct {
	Type         OptionType `json:"type"`
	Strike       float64    `json:"strike"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	Last         float64    `json:"last"`
	Expiration   string     `json:"expiration"` // YYYY-MM-DD
	Volume       int64      `json:"volume"`
	OpenInterest int64      `json:"open_interest"`
}

// Intrinsic returns the contract's intrinsic value at the given spot price.
func (c *OptionContract) Intrinsic(spot float64) float64 {
	switch c.Type {
	case OptionTypePut:
		return math.Max(c.Strike-spot, 0)
	case OptionTypeCall:
		return math.Max(spot-c.Strike, 0)
	default:
		return 0
	}
}

// Mid returns the bid/ask midpoint.
func (c *OptionContract) Mid() float64 {
	return (c.Bid + c.Ask) / 2
}

// Leg is one bought or sold contract within a multi-leg position.
type Leg struct {
	Role    LegRole    `json:"role"`
	Type    OptionType `json:"type"`
	Strike  float64    `json:"strike"`
	Premium float64    `json:"premium"`
	// LowConfidence marks a premium sourced from the last trade because both
	// bid and ask were zero.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// IntrinsicAt returns the leg's intrinsic value at the given underlying price.
func (l *Leg) IntrinsicAt(price float64) float64 {
	if l.Type == OptionTypePut {
		return math.Max(l.Strike-price, 0)
	}
	return math.Max(price-l.Strike, 0)
}

// PayoffAt returns the leg's expiration P&L at the given underlying price,
// per share: intrinsic value less premium paid for long legs, premium kept
// less intrinsic value for short legs.
func (l *Leg) PayoffAt(price float64) float64 {
	if l.Role == LegLong {
		return l.IntrinsicAt(price) - l.Premium
	}
	return l.Premium - l.IntrinsicAt(price)
}

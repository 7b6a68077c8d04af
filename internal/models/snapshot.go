package models

import (
	"errors"
	"math"
	"sort"
)

// ErrNoContractsAvailable is returned when a chain lookup targets an absent
// expiration or an empty side.
var ErrNoContractsAvailable = errors.New("no contracts available")

// ExpirationChain holds the listed contracts for one expiration, split by side.
type ExpirationChain struct {
	Calls []OptionContract `json:"calls"`
	Puts  []OptionContract `json:"puts"`
}

// MarketSnapshot is a symbol's current price plus its options chain indexed by
// expiration date (YYYY-MM-DD). A snapshot is owned by the caller for the
// duration of one valuation call and must not be mutated while the engine
// reads it.
type MarketSnapshot struct {
	Symbol       string                      `json:"symbol"`
	CurrentPrice float64                     `json:"current_price"`
	Chains       map[string]*ExpirationChain `json:"chains"`
}

// Side returns the contracts on the requested side for an expiration.
// Fails with ErrNoContractsAvailable if the expiration is absent or the side
// is empty.
func (s *MarketSnapshot) Side(expiration string, side OptionType) ([]OptionContract, error) {
	chain, ok := s.Chains[expiration]
	if !ok {
		return nil, ErrNoContractsAvailable
	}
	var contracts []OptionContract
	if side == OptionTypeCall {
		contracts = chain.Calls
	} else {
		contracts = chain.Puts
	}
	if len(contracts) == 0 {
		return nil, ErrNoContractsAvailable
	}
	return contracts, nil
}

// ContractsNear returns up to count contracts on the given side whose strikes
// are closest to referenceStrike, ties broken by lower strike first.
func (s *MarketSnapshot) ContractsNear(expiration string, side OptionType, referenceStrike float64, count int) ([]OptionContract, error) {
	contracts, err := s.Side(expiration, side)
	if err != nil {
		return nil, err
	}

	sorted := make([]OptionContract, len(contracts))
	copy(sorted, contracts)
	sort.SliceStable(sorted, func(i, j int) bool {
		di := math.Abs(sorted[i].Strike - referenceStrike)
		dj := math.Abs(sorted[j].Strike - referenceStrike)
		if di != dj {
			return di < dj
		}
		return sorted[i].Strike < sorted[j].Strike
	})

	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count], nil
}

// Expirations returns the snapshot's expiration dates in ascending order.
// Dates are YYYY-MM-DD so lexical order is chronological order.
func (s *MarketSnapshot) Expirations() []string {
	exps := make([]string, 0, len(s.Chains))
	for exp := range s.Chains {
		exps = append(exps, exp)
	}
	sort.Strings(exps)
	return exps
}

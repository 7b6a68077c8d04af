// Package mock provides a synthetic market data provider for demos and
// integration tests. Prices are randomized per provider instance but every
// generated chain is internally consistent: bids below asks, premiums at or
// above intrinsic value, strikes on a listed grid.
package mock

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/eddiefleurent/schrute_spreads/internal/marketdata"
	"github.com/eddiefleurent/schrute_spreads/internal/models"
	"github.com/eddiefleurent/schrute_spreads/internal/util"
)

// DataProvider generates synthetic snapshots around a drifting spot price.
// Safe for concurrent use: the valuation pass shares one provider across
// goroutines.
type DataProvider struct {
	mu           sync.Mutex
	currentPrice float64
	midIV        float64 // decimal, e.g. 0.20
	strikeStep   float64
	spread       float64 // absolute bid/ask spread on premiums
}

// Ensure DataProvider implements the market data boundary at compile time.
var _ marketdata.Provider = (*DataProvider)(nil)

// secureFloat64 generates a cryptographically secure random float64 between 0 and 1
func secureFloat64() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<53))
	if err != nil {
		// Fallback to a reasonable default if crypto/rand fails
		return 0.5
	}
	return float64(n.Int64()) / (1 << 53)
}

// secureInt63n generates a cryptographically secure random int64 between 0 and n-1
func secureInt63n(n int64) int64 {
	max := big.NewInt(n)
	r, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fallback to a reasonable default if crypto/rand fails
		return n / 2
	}
	return r.Int64()
}

// NewDataProvider creates a provider with an SPY-like spot and a random but
// plausible IV level.
func NewDataProvider() *DataProvider {
	return &DataProvider{
		currentPrice: 450.0 + secureFloat64()*10, // around 450-460
		midIV:        0.12 + secureFloat64()*0.18,
		strikeStep:   5.0,
		spread:       0.10,
	}
}

// IV returns the provider's current implied volatility level (decimal).
func (m *DataProvider) IV() float64 {
	return m.midIV
}

// GetSnapshot builds a snapshot with chains at roughly 30 and 60 DTE.
func (m *DataProvider) GetSnapshot(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	// Simulate small price movements between calls. The lock covers the
	// chain build too, which reads currentPrice throughout.
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentPrice += (secureFloat64() - 0.5) * 2

	snap := &models.MarketSnapshot{
		Symbol:       symbol,
		CurrentPrice: m.currentPrice,
		Chains:       make(map[string]*models.ExpirationChain),
	}
	for _, dte := range []int{30, 60} {
		exp := time.Now().UTC().AddDate(0, 0, dte).Format("2006-01-02")
		snap.Chains[exp] = m.buildChain(exp, dte)
	}
	return snap, nil
}

// buildChain generates the strike grid for one expiration.
func (m *DataProvider) buildChain(expiration string, dte int) *models.ExpirationChain {
	chain := &models.ExpirationChain{}

	startStrike := math.Floor(m.currentPrice/m.strikeStep)*m.strikeStep - 50
	endStrike := startStrike + 100

	for strike := startStrike; strike <= endStrike; strike += m.strikeStep {
		chain.Puts = append(chain.Puts, m.contract(models.OptionTypePut, strike, expiration, dte))
		chain.Calls = append(chain.Calls, m.contract(models.OptionTypeCall, strike, expiration, dte))
	}
	return chain
}

// contract prices one synthetic option: intrinsic value plus a time value
// that decays with distance from spot.
func (m *DataProvider) contract(side models.OptionType, strike float64, expiration string, dte int) models.OptionContract {
	c := models.OptionContract{
		Type:         side,
		Strike:       strike,
		Expiration:   expiration,
		Volume:       secureInt63n(10000),
		OpenInterest: secureInt63n(50000),
	}

	sigma := m.currentPrice * m.midIV * math.Sqrt(float64(dte)/365.0)
	atmTimeValue := 0.4 * sigma
	distance := strike - m.currentPrice
	timeValue := atmTimeValue * math.Exp(-(distance*distance)/(2*sigma*sigma))
	mid := c.Intrinsic(m.currentPrice) + math.Max(timeValue, 0.05)

	c.Bid = util.RoundToTick(math.Max(mid-m.spread/2, 0), 0.01)
	c.Ask = util.RoundToTick(mid+m.spread/2, 0.01)
	c.Last = util.RoundToTick(mid, 0.01)
	return c
}

package engine

import (
	"math"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

const (
	testExp    = "2026-10-16"
	testFarExp = "2026-11-20"
	testSymbol = "SPY"
)

func contractAt(side models.OptionType, strike, bid, ask float64) models.OptionContract {
	return contractAtExp(side, strike, bid, ask, testExp)
}

func contractAtExp(side models.OptionType, strike, bid, ask float64, exp string) models.OptionContract {
	return models.OptionContract{
		Type:         side,
		Strike:       strike,
		Bid:          bid,
		Ask:          ask,
		Last:         (bid + ask) / 2,
		Expiration:   exp,
		Volume:       500,
		OpenInterest: 2000,
	}
}

func snapshotWith(spot float64, puts, calls []models.OptionContract) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol:       testSymbol,
		CurrentPrice: spot,
		Chains: map[string]*models.ExpirationChain{
			testExp: {Calls: calls, Puts: puts},
		},
	}
}

func mustEngine(cfg Config) *Engine {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// syntheticChain builds a dense, internally consistent chain around spot:
// premiums are intrinsic plus a time value decaying with distance, so bids
// stay below asks and ITM premiums stay above intrinsic value.
func syntheticChain(spot, iv float64, dte int, step float64, exp string) *models.ExpirationChain {
	sigma := spot * iv * math.Sqrt(float64(dte)/365.0)
	span := 5*sigma + spot*0.08
	start := math.Floor((spot-span)/step) * step
	end := spot + span

	chain := &models.ExpirationChain{}
	for strike := start; strike <= end; strike += step {
		if strike <= 0 {
			continue
		}
		for _, side := range []models.OptionType{models.OptionTypePut, models.OptionTypeCall} {
			c := models.OptionContract{
				Type:       side,
				Strike:     strike,
				Expiration: exp,
				Volume:     100,
			}
			distance := strike - spot
			timeValue := 0.4 * sigma * math.Exp(-(distance*distance)/(2*sigma*sigma))
			mid := c.Intrinsic(spot) + timeValue
			c.Bid = math.Max(mid-0.02, 0)
			c.Ask = mid + 0.02
			c.Last = mid
			if side == models.OptionTypePut {
				chain.Puts = append(chain.Puts, c)
			} else {
				chain.Calls = append(chain.Calls, c)
			}
		}
	}
	return chain
}

func syntheticSnapshot(spot, iv float64, dte int) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol:       testSymbol,
		CurrentPrice: spot,
		Chains: map[string]*models.ExpirationChain{
			testExp: syntheticChain(spot, iv, dte, 5, testExp),
		},
	}
}

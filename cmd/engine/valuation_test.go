package main

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiefleurent/schrute_spreads/internal/config"
	"github.com/eddiefleurent/schrute_spreads/internal/engine"
	"github.com/eddiefleurent/schrute_spreads/internal/models"
	"github.com/eddiefleurent/schrute_spreads/internal/storage"
)

type stubProvider struct {
	snap *models.MarketSnapshot
}

func (s *stubProvider) GetSnapshot(_ context.Context, _ string) (*models.MarketSnapshot, error) {
	return s.snap, nil
}

// stubSnapshot builds a chain expiring 45 days out. The ATM call's 6.39
// extrinsic value backs out to roughly 20% IV, which targets the short
// strangle at the 210 put and 250 call regardless of the exact day count:
// the selection distance reduces to extrinsic/0.4.
func stubSnapshot() *models.MarketSnapshot {
	exp := time.Now().UTC().AddDate(0, 0, 45).Format("2006-01-02")
	contract := func(side models.OptionType, strike, bid, ask float64) models.OptionContract {
		return models.OptionContract{
			Type: side, Strike: strike, Bid: bid, Ask: ask,
			Last: (bid + ask) / 2, Expiration: exp, Volume: 100,
		}
	}
	return &models.MarketSnapshot{
		Symbol:       "SPY",
		CurrentPrice: 230,
		Chains: map[string]*models.ExpirationChain{
			exp: {
				Puts: []models.OptionContract{
					contract(models.OptionTypePut, 200, 0.60, 0.70),
					contract(models.OptionTypePut, 210, 1.20, 1.30),
				},
				Calls: []models.OptionContract{
					contract(models.OptionTypeCall, 230, 6.34, 6.44),
					contract(models.OptionTypeCall, 250, 1.15, 1.25),
				},
			},
		},
	}
}

func newTestService(t *testing.T, store storage.Interface) *Service {
	t.Helper()

	eng, err := engine.New(engine.Config{})
	require.NoError(t, err)

	return &Service{
		config: &config.Config{
			Valuations: []config.ValuationConfig{
				{Symbol: "SPY", Strategy: "short_strangle", Quantity: 2},
			},
			Sizing: config.SizingConfig{PortfolioValue: 100000},
		},
		storage:  store,
		provider: &stubProvider{snap: stubSnapshot()},
		engine:   eng,
		logger:   log.New(io.Discard, "", 0),
	}
}

func TestValuationPassTracksNewPosition(t *testing.T) {
	store := storage.NewMockStorage()
	svc := newTestService(t, store)

	svc.runValuationPass(context.Background())

	open := store.GetOpenPositions()
	require.Len(t, open, 1)
	pos := open[0]
	assert.Equal(t, "SPY", pos.Symbol)
	assert.Equal(t, models.StrategyShortStrangle, pos.StrategyType)
	assert.Equal(t, 2, pos.Quantity)
	assert.InDelta(t, 2.45, pos.CreditReceived, 1e-9)
	require.Len(t, pos.Legs, 2)
	assert.Equal(t, 210.0, pos.Legs[0].Strike)
	assert.Equal(t, 250.0, pos.Legs[1].Strike)
}

func TestValuationPassRevaluesExistingPosition(t *testing.T) {
	store := storage.NewMockStorage()
	svc := newTestService(t, store)

	svc.runValuationPass(context.Background())
	require.Len(t, store.GetOpenPositions(), 1)

	// A second pass refreshes P/L instead of opening a duplicate. Pinned at
	// spot both short legs expire worthless: 2.45/share * 2 contracts * 100.
	svc.runValuationPass(context.Background())

	open := store.GetOpenPositions()
	require.Len(t, open, 1)
	assert.InDelta(t, 490.0, open[0].CurrentPnL, 1e-9)
}

func TestValuationPassClosesExpiredPosition(t *testing.T) {
	store := storage.NewMockStorage()
	svc := newTestService(t, store)

	expired := &models.Position{
		ID:           "pos-old",
		Symbol:       "SPY",
		StrategyType: models.StrategyShortStrangle,
		Status:       models.PositionOpen,
		Legs: []models.Leg{
			{Role: models.LegShort, Type: models.OptionTypePut, Strike: 210, Premium: 1.25},
			{Role: models.LegShort, Type: models.OptionTypeCall, Strike: 250, Premium: 1.20},
		},
		Quantity:       1,
		Expiration:     time.Now().UTC().Add(-24 * time.Hour),
		EntryDate:      time.Now().UTC().Add(-45 * 24 * time.Hour),
		CreditReceived: 2.45,
		EntrySpot:      230,
		EntryIV:        0.20,
	}
	require.NoError(t, store.AddPosition(expired))

	svc.runValuationPass(context.Background())

	assert.Empty(t, store.GetOpenPositions())
	history := store.GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "expired", history[0].ExitReason)
	assert.InDelta(t, 245.0, history[0].CurrentPnL, 1e-9)
}

func TestDaysUntil(t *testing.T) {
	future := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")
	if got := daysUntil(future); got < 28 || got > 30 {
		t.Errorf("daysUntil(%s) = %d, want about 30", future, got)
	}
	if got := daysUntil("2020-01-01"); got != 0 {
		t.Errorf("past date = %d, want 0", got)
	}
	if got := daysUntil("not-a-date"); got != 0 {
		t.Errorf("unparseable date = %d, want 0", got)
	}
}

func TestEstimateATMVol(t *testing.T) {
	snap := stubSnapshot()
	exp := snap.Expirations()[0]

	iv, err := estimateATMVol(snap, exp, 45)
	require.NoError(t, err)
	// 6.39 / (0.4 * 230 * sqrt(45/365))
	assert.InDelta(t, 0.1977, iv, 0.001)

	_, err = estimateATMVol(snap, exp, 0)
	require.Error(t, err)

	flat := stubSnapshot()
	flat.Chains[exp].Calls[0].Bid = 0
	flat.Chains[exp].Calls[0].Ask = 0
	_, err = estimateATMVol(flat, exp, 45)
	require.Error(t, err)
}

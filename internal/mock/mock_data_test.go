package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/eddiefleurent/schrute_spreads/internal/engine"
	"github.com/eddiefleurent/schrute_spreads/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSnapshotShape(t *testing.T) {
	p := NewDataProvider()

	snap, err := p.GetSnapshot(context.Background(), "SPY")
	require.NoError(t, err)

	assert.Equal(t, "SPY", snap.Symbol)
	assert.Greater(t, snap.CurrentPrice, 400.0)
	require.Len(t, snap.Chains, 2)

	exps := snap.Expirations()
	require.Len(t, exps, 2)
	assert.True(t, sort.StringsAreSorted(exps))

	for _, exp := range exps {
		chain := snap.Chains[exp]
		require.NotEmpty(t, chain.Puts)
		require.NotEmpty(t, chain.Calls)
		assert.Len(t, chain.Puts, len(chain.Calls))
	}

	_, err = p.GetSnapshot(context.Background(), "")
	require.Error(t, err)
}

func TestGetSnapshotInternallyConsistent(t *testing.T) {
	p := NewDataProvider()

	snap, err := p.GetSnapshot(context.Background(), "SPY")
	require.NoError(t, err)

	for _, exp := range snap.Expirations() {
		chain := snap.Chains[exp]
		for _, side := range [][]models.OptionContract{chain.Puts, chain.Calls} {
			for _, c := range side {
				assert.LessOrEqual(t, c.Bid, c.Ask, "%s %.2f %s", c.Type, c.Strike, exp)
				assert.GreaterOrEqual(t, c.Mid(), c.Intrinsic(snap.CurrentPrice)-0.01,
					"%s %.2f %s priced below intrinsic", c.Type, c.Strike, exp)
				assert.Equal(t, exp, c.Expiration)
			}
		}
	}

	// Generated chains must survive the same validation the engine applies.
	v := engine.NewValidator(engine.ValidatorConfig{})
	for _, exp := range snap.Expirations() {
		chain := snap.Chains[exp]
		result := v.CheckChain(snap.CurrentPrice, chain.Calls, chain.Puts)
		assert.True(t, result.IsValid, "chain %s: %v", exp, result.Issues)
	}
}

func TestGetSnapshotConcurrentCallers(t *testing.T) {
	p := NewDataProvider()

	const goroutines = 16
	const callsEach = 50

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				snap, err := p.GetSnapshot(context.Background(), "SPY")
				if err != nil {
					errs <- err
					return
				}
				if snap.CurrentPrice <= 0 {
					errs <- fmt.Errorf("non-positive spot %.2f", snap.CurrentPrice)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestGetSnapshotFeedsTheEngine(t *testing.T) {
	p := NewDataProvider()
	e, err := engine.New(engine.Config{})
	require.NoError(t, err)

	snap, err := p.GetSnapshot(context.Background(), "SPY")
	require.NoError(t, err)

	exps := snap.Expirations()
	inputs := &models.StrategyInputs{
		Symbol:            "SPY",
		CurrentPrice:      snap.CurrentPrice,
		Expiration:        exps[0],
		DaysToExpiry:      30,
		ImpliedVolatility: p.IV(),
		IVPercentile:      50,
	}

	result, err := e.CalculatePosition(models.StrategyShortStrangle, inputs, snap)
	require.NoError(t, err)
	require.NotNil(t, result.NetCredit)
	assert.True(t, result.MaxLoss.Unbounded)
}

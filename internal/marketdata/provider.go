// Package marketdata defines the boundary to the market data collaborator.
// The engine itself never fetches data; it receives an already-built
// snapshot through this interface.
package marketdata

import (
	"context"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// Provider supplies market snapshots for valuation.
type Provider interface {
	// GetSnapshot returns the symbol's current price and options chain.
	// The returned snapshot is owned by the caller and safe to read for
	// the duration of one valuation call.
	GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}

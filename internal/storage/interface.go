// Package storage persists tracked positions and their trade history.
package storage

import (
	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// Interface defines the contract for position and trade data persistence.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe and can safely call these methods from multiple
// goroutines.
//
// The provided JSONStorage implementation uses sync.RWMutex to serialize
// access, ensuring all Interface methods are protected for concurrent
// readers and writers.
type Interface interface {
	// Position management
	AddPosition(pos *models.Position) error
	GetOpenPositions() []models.Position
	GetPositionByID(id string) (*models.Position, bool)
	UpdatePnL(id string, pnl float64) error
	ClosePosition(id string, finalPnL float64, reason string) error

	// Data persistence
	Save() error
	Load() error

	// Historical data and analytics
	GetHistory() []models.Position
	GetStatistics() *Statistics
}

// NewStorage creates a new storage implementation (currently JSON-based)
// In the future, this can be extended to support different storage backends
func NewStorage(filepath string) (Interface, error) {
	return NewJSONStorage(filepath)
}

// Ensure JSONStorage implements Interface
var _ Interface = (*JSONStorage)(nil)

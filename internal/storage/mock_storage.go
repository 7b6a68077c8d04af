package storage

import (
	"fmt"
	"sync"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// MockStorage implements Interface for testing
type MockStorage struct {
	mu            sync.RWMutex
	saveError     error
	loadError     error
	open          map[string]*models.Position
	history       []models.Position
	statistics    *Statistics
	saveCallCount int
}

// Ensure MockStorage implements Interface
var _ Interface = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage for testing
func NewMockStorage() *MockStorage {
	return &MockStorage{
		open:       make(map[string]*models.Position),
		statistics: &Statistics{},
	}
}

// SetSaveError makes subsequent Save calls fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SaveCallCount returns how many times Save was called.
func (m *MockStorage) SaveCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCallCount
}

// AddPosition starts tracking an open position.
func (m *MockStorage) AddPosition(pos *models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.open[pos.ID]; exists {
		return fmt.Errorf("position %s: %w", pos.ID, ErrDuplicatePosition)
	}
	cp := *pos
	m.open[pos.ID] = &cp
	return nil
}

// GetOpenPositions returns copies of all open positions.
func (m *MockStorage) GetOpenPositions() []models.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	positions := make([]models.Position, 0, len(m.open))
	for _, pos := range m.open {
		positions = append(positions, *pos)
	}
	return positions
}

// GetPositionByID returns the position with the given ID.
func (m *MockStorage) GetPositionByID(id string) (*models.Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pos, ok := m.open[id]; ok {
		p := *pos
		return &p, true
	}
	for i := range m.history {
		if m.history[i].ID == id {
			p := m.history[i]
			return &p, true
		}
	}
	return nil, false
}

// UpdatePnL sets the current P/L of an open position.
func (m *MockStorage) UpdatePnL(id string, pnl float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.open[id]
	if !ok {
		return fmt.Errorf("position %s: %w", id, ErrPositionNotFound)
	}
	pos.CurrentPnL = pnl
	return nil
}

// ClosePosition closes an open position and moves it to history.
func (m *MockStorage) ClosePosition(id string, finalPnL float64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.open[id]
	if !ok {
		return fmt.Errorf("position %s: %w", id, ErrPositionNotFound)
	}
	if err := pos.Close(finalPnL, reason); err != nil {
		return err
	}
	m.history = append(m.history, *pos)
	delete(m.open, id)
	return nil
}

// GetHistory returns all closed positions.
func (m *MockStorage) GetHistory() []models.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := make([]models.Position, len(m.history))
	copy(history, m.history)
	return history
}

// GetStatistics returns the aggregate statistics.
func (m *MockStorage) GetStatistics() *Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := *m.statistics
	return &stats
}

// Save records the call and returns the configured error, if any.
func (m *MockStorage) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCallCount++
	return m.saveError
}

// Load returns the configured error, if any.
func (m *MockStorage) Load() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadError
}

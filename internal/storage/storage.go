package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// JSONStorage persists tracked positions in a single JSON file.
type JSONStorage struct {
	mu       sync.RWMutex
	filepath string
	data     *storageData
}

type storageData struct {
	OpenPositions map[string]*models.Position `json:"open_positions"`
	History       []models.Position           `json:"history"`
	Statistics    *Statistics                 `json:"statistics"`
	LastUpdated   time.Time                   `json:"last_updated"`
}

// Statistics aggregates closed-trade performance.
type Statistics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalPnL      float64 `json:"total_pnl"`
	AverageWin    float64 `json:"average_win"`
	AverageLoss   float64 `json:"average_loss"`
	CurrentStreak int     `json:"current_streak"`
}

// NewJSONStorage creates a JSON-file storage, loading existing data if the
// file exists.
func NewJSONStorage(path string) (*JSONStorage, error) {
	s := &JSONStorage{
		filepath: path,
		data: &storageData{
			OpenPositions: make(map[string]*models.Position),
			Statistics:    &Statistics{},
		},
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("loading storage: %w", err)
		}
	}

	return s, nil
}

// AddPosition starts tracking an open position.
func (s *JSONStorage) AddPosition(pos *models.Position) error {
	if err := pos.Validate(); err != nil {
		return fmt.Errorf("refusing to track invalid position: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.OpenPositions[pos.ID]; exists {
		return fmt.Errorf("position %s: %w", pos.ID, ErrDuplicatePosition)
	}
	cp := *pos
	s.data.OpenPositions[pos.ID] = &cp
	return s.saveLocked()
}

// GetOpenPositions returns copies of all open positions, ordered by entry
// date then ID for stable output.
func (s *JSONStorage) GetOpenPositions() []models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]models.Position, 0, len(s.data.OpenPositions))
	for _, pos := range s.data.OpenPositions {
		p := *pos
		p.DTE = p.CalculateDTE()
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		if !positions[i].EntryDate.Equal(positions[j].EntryDate) {
			return positions[i].EntryDate.Before(positions[j].EntryDate)
		}
		return positions[i].ID < positions[j].ID
	})
	return positions
}

// GetPositionByID returns a copy of the position with the given ID, open
// positions first, then history.
func (s *JSONStorage) GetPositionByID(id string) (*models.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos, ok := s.data.OpenPositions[id]; ok {
		p := *pos
		p.DTE = p.CalculateDTE()
		return &p, true
	}
	for i := range s.data.History {
		if s.data.History[i].ID == id {
			p := s.data.History[i]
			return &p, true
		}
	}
	return nil, false
}

// UpdatePnL sets the current P/L of an open position.
func (s *JSONStorage) UpdatePnL(id string, pnl float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.data.OpenPositions[id]
	if !ok {
		return fmt.Errorf("position %s: %w", id, ErrPositionNotFound)
	}
	pos.CurrentPnL = pnl
	return s.saveLocked()
}

// ClosePosition closes an open position, moves it to history, and refreshes
// statistics.
func (s *JSONStorage) ClosePosition(id string, finalPnL float64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.data.OpenPositions[id]
	if !ok {
		return fmt.Errorf("position %s: %w", id, ErrPositionNotFound)
	}
	if err := pos.Close(finalPnL, reason); err != nil {
		return err
	}

	s.data.History = append(s.data.History, *pos)
	delete(s.data.OpenPositions, id)
	s.recalculateStatisticsLocked()
	return s.saveLocked()
}

// GetHistory returns a copy of all closed positions.
func (s *JSONStorage) GetHistory() []models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]models.Position, len(s.data.History))
	copy(history, s.data.History)
	return history
}

// GetStatistics returns a copy of the aggregate trade statistics.
func (s *JSONStorage) GetStatistics() *Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := *s.data.Statistics
	return &stats
}

// Save persists the current state to disk.
func (s *JSONStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the state to disk; callers must hold the write lock.
// The write is atomic: temp file then rename.
func (s *JSONStorage) saveLocked() error {
	s.data.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling storage: %w", err)
	}

	dir := filepath.Dir(s.filepath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".positions-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.filepath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}

// Load reads the state from disk, replacing in-memory data.
func (s *JSONStorage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return fmt.Errorf("reading storage file: %w", err)
	}

	loaded := &storageData{}
	if err := json.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("parsing storage file: %w", err)
	}
	if loaded.OpenPositions == nil {
		loaded.OpenPositions = make(map[string]*models.Position)
	}
	if loaded.Statistics == nil {
		loaded.Statistics = &Statistics{}
	}
	s.data = loaded
	return nil
}

// recalculateStatisticsLocked rebuilds statistics from history; callers must
// hold the write lock.
func (s *JSONStorage) recalculateStatisticsLocked() {
	stats := &Statistics{}
	var totalWin, totalLoss float64
	streak := 0

	for i := range s.data.History {
		pnl := s.data.History[i].CurrentPnL
		stats.TotalTrades++
		stats.TotalPnL += pnl
		if pnl >= 0 {
			stats.WinningTrades++
			totalWin += pnl
			if streak >= 0 {
				streak++
			} else {
				streak = 1
			}
		} else {
			stats.LosingTrades++
			totalLoss += pnl
			if streak <= 0 {
				streak--
			} else {
				streak = -1
			}
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	}
	if stats.WinningTrades > 0 {
		stats.AverageWin = totalWin / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = totalLoss / float64(stats.LosingTrades)
	}
	stats.CurrentStreak = streak
	s.data.Statistics = stats
}

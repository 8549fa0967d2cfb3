package trading

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// OpenDateStore persists when each position was opened, keyed by symbol.
// The broker does not report open timestamps on positions, so the max-hold
// rule and the same-day exit guard depend on this surviving restarts.
type OpenDateStore struct {
	mu       sync.Mutex
	dates    map[string]time.Time
	filePath string
}

// NewOpenDateStore loads the store from filePath, starting empty if the file
// does not exist yet.
func NewOpenDateStore(filePath string) (*OpenDateStore, error) {
	dates, err := loadDates(filePath)
	if err != nil {
		return nil, err
	}
	return &OpenDateStore{dates: dates, filePath: filePath}, nil
}

// Register records that a position was opened at the given time.
func (s *OpenDateStore) Register(symbol string, openedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dates[symbol] = openedAt
	if err := s.save(); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("failed to save open dates")
	}
}

// OpenDate returns when the position was opened, if tracked.
func (s *OpenDateStore) OpenDate(symbol string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.dates[symbol]
	return t, ok
}

// Remove forgets a symbol after its position is closed.
func (s *OpenDateStore) Remove(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dates[symbol]; !ok {
		return
	}
	delete(s.dates, symbol)
	if err := s.save(); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("failed to save open dates")
	}
}

// Len returns the number of tracked symbols.
func (s *OpenDateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dates)
}

func loadDates(filePath string) (map[string]time.Time, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]time.Time), nil
		}
		return nil, err
	}
	var dates map[string]time.Time
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, err
	}
	if dates == nil {
		dates = make(map[string]time.Time)
	}
	return dates, nil
}

// save writes through a temp file and renames it over the target so a crash
// mid-write never truncates the store.
func (s *OpenDateStore) save() error {
	data, err := json.MarshalIndent(s.dates, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

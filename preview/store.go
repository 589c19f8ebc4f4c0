package preview

import (
	"errors"
	"sync"
	"time"

	"github.com/vortitron/wxicons"
)

// ErrNotReady is returned while no table has been built yet.
var ErrNotReady = errors.New("icon table not built yet")

// Store keeps the most recently built table and its manifest.
type Store struct {
	mu       sync.RWMutex
	table    *wxicons.Table
	manifest wxicons.Manifest
	builtAt  time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored table.
func (s *Store) Set(t *wxicons.Table, m wxicons.Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = t
	s.manifest = m
	s.builtAt = time.Now().UTC()
}

// Table returns the current table and the time it was built.
func (s *Store) Table() (*wxicons.Table, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return nil, time.Time{}, ErrNotReady
	}
	return s.table, s.builtAt, nil
}

// Manifest returns the manifest of the current table.
func (s *Store) Manifest() (wxicons.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return wxicons.Manifest{}, ErrNotReady
	}
	return s.manifest, nil
}

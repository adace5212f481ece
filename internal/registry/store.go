package registry

import (
	"slices"
	"sync"
	"time"

	"github.com/riskdash/riskdash/pkg/types"
)

// Store is a thread-safe holder of the current component record set.
// Replace swaps the whole set; readers always see a consistent set.
type Store struct {
	mu        sync.RWMutex
	records   []types.ComponentRecord
	updatedAt time.Time
	version   int
	now       func() time.Time // injectable for deterministic tests
}

// NewStore creates a Store holding a copy of records.
func NewStore(records []types.ComponentRecord) *Store {
	s := &Store{now: time.Now}
	s.Replace(records)
	return s
}

// Replace installs a new record set. Callers must validate records first.
func (s *Store) Replace(records []types.ComponentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(records)
	s.updatedAt = s.now()
	s.version++
}

// List returns a copy of the current records in registry order.
func (s *Store) List() []types.ComponentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Get returns the record with the given name and whether it was found.
func (s *Store) Get(name string) (types.ComponentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.Name == name {
			return r, true
		}
	}
	return types.ComponentRecord{}, false
}

// Count returns the number of records currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version increments on every Replace, starting at 1.
func (s *Store) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// UpdatedAt returns when the current set was installed.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

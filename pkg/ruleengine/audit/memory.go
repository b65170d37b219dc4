package audit

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory decision store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Decision
	seq    map[string]int // ruleName -> last sequence
	closed bool
}

// NewMemoryStore creates a new in-memory decision store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]Decision),
		seq:  make(map[string]int),
	}
}

// Record implements Store.
func (m *MemoryStore) Record(d Decision) error {
	if d.ID == "" {
		return ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if _, ok := m.byID[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
	}

	m.seq[d.RuleName]++
	d.Sequence = m.seq[d.RuleName]
	d.Timestamp = time.Now().UTC()
	d.Context = copyContext(d.Context)
	m.byID[d.ID] = d
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Decision{}, ErrStoreClosed
	}

	d, ok := m.byID[id]
	if !ok {
		return Decision{}, ErrNotFound
	}
	d.Context = copyContext(d.Context)
	return d, nil
}

// List implements Store.
func (m *MemoryStore) List(ruleName string) ([]Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Decision
	for _, d := range m.byID {
		if d.RuleName == ruleName {
			d.Context = copyContext(d.Context)
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

// DeleteRule implements Store.
func (m *MemoryStore) DeleteRule(ruleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	for id, d := range m.byID {
		if d.RuleName == ruleName {
			delete(m.byID, id)
		}
	}
	delete(m.seq, ruleName)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.byID = nil
	return nil
}

// Len returns the total number of decisions across all rules.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// copyContext keeps stored decisions independent of caller maps.
func copyContext(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

package store

import (
	"sort"
	"sync"

	"github.com/ykvlv/medication-bot/internal/domain"
)

type entry struct {
	mu sync.Mutex
	r  domain.UserReminder
}

// Memory keeps one reminder per user for the lifetime of the process.
// The map lock guards membership only; each entry has its own lock so that
// work for one user never waits on another.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

func (m *Memory) lookup(userID string, create bool) *entry {
	m.mu.RLock()
	e, ok := m.entries[userID]
	m.mu.RUnlock()
	if ok || !create {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.entries[userID]; ok {
		return e
	}
	e = &entry{r: domain.UserReminder{UserID: userID}}
	m.entries[userID] = e
	return e
}

// Update runs fn with exclusive access to the user's reminder.
// With create set, a missing reminder is created first; otherwise a missing
// reminder makes Update return false without calling fn.
func (m *Memory) Update(userID string, create bool, fn func(r *domain.UserReminder)) bool {
	e := m.lookup(userID, create)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.r)
	return true
}

// Get returns a copy of the user's reminder.
func (m *Memory) Get(userID string) (domain.UserReminder, bool) {
	e := m.lookup(userID, false)
	if e == nil {
		return domain.UserReminder{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.r, true
}

// List returns copies of all reminders ordered by user id.
func (m *Memory) List() []domain.UserReminder {
	m.mu.RLock()
	es := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		es = append(es, e)
	}
	m.mu.RUnlock()

	res := make([]domain.UserReminder, 0, len(es))
	for _, e := range es {
		e.mu.Lock()
		res = append(res, e.r)
		e.mu.Unlock()
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UserID < res[j].UserID })
	return res
}

// Len returns the number of known users.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

package store

import (
	"strconv"
	"sync"
	"time"
)

// Store holds the display settings and the content queue
// Implementations are safe for concurrent use; returned values are copies
type Store interface {
	Settings() Settings
	UpdateSettings(patch []byte) (Settings, error)

	Queue() []ContentItem
	Add(item ContentItem) (ContentItem, error)
	Remove(id string) error
	Replace(queue []ContentItem) error
	Clear() error
}

// MemoryStore is a Store without persistence
type MemoryStore struct {
	mu       sync.RWMutex
	settings Settings
	queue    []ContentItem
	lastID   int64
	now      func() time.Time
}

// NewMemoryStore creates a store holding default settings and an empty queue
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		settings: DefaultSettings(),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for ids and addedAt stamps
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Settings returns the current settings
func (m *MemoryStore) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// UpdateSettings merges patch into the current settings
// On error the previous settings stay in effect and are returned
func (m *MemoryStore) UpdateSettings(patch []byte) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := m.settings.Merge(patch)
	if err != nil {
		return m.settings, err
	}
	m.settings = next
	return next, nil
}

// Queue returns a copy of the content queue
func (m *MemoryStore) Queue() []ContentItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneQueue(m.queue)
}

// Add appends item, assigning its id and, if unset, its addedAt stamp
func (m *MemoryStore) Add(item ContentItem) (ContentItem, error) {
	if err := item.Validate(); err != nil {
		return ContentItem{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	id := now.UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id

	item.ID = strconv.FormatInt(id, 10)
	if item.AddedAt == 0 {
		item.AddedAt = now.UnixMilli()
	}
	m.queue = append(m.queue, item)
	return item, nil
}

// Remove deletes the item with id
func (m *MemoryStore) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.queue {
		if it.ID == id {
			m.queue = append(m.queue[:i:i], m.queue[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Replace swaps the whole queue, as used by reordering
func (m *MemoryStore) Replace(queue []ContentItem) error {
	for _, it := range queue {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = cloneQueue(queue)
	for _, it := range m.queue {
		if n, err := strconv.ParseInt(it.ID, 10, 64); err == nil && n > m.lastID {
			m.lastID = n
		}
	}
	return nil
}

// Clear empties the queue
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.queue = nil
	m.mu.Unlock()
	return nil
}

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/planner/internal/models"
)

// ErrNotFound is returned by stores for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store holds server-side session state by session id.
type Store interface {
	Put(ctx context.Context, id string, s models.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryItem struct {
	session models.Session
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Expired entries are
// invisible to Get and removed by PurgeExpired.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, id string, s models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = memoryItem{session: s, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	item, ok := m.items[id]
	m.mu.RUnlock()
	if !ok || !m.now().Before(item.expires) {
		return nil, ErrNotFound
	}
	s := item.session
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// PurgeExpired drops expired sessions and returns how many were removed.
func (m *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, item := range m.items {
		if !now.Before(item.expires) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

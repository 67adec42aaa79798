package cart

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Manager hands out one Store per authenticated user. Concurrent requests
// for the same user share a single load via singleflight, so a burst of
// page views does not hammer the repository with identical reads.
type Manager struct {
	repo  Repository
	cache Cache
	log   *slog.Logger

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group
}

func NewManager(repo Repository, cache Cache, log *slog.Logger) *Manager {
	return &Manager{
		repo:   repo,
		cache:  cache,
		log:    log,
		stores: make(map[string]*Store),
	}
}

// Get returns the live store for userID, loading it on first use.
func (m *Manager) Get(ctx context.Context, userID string) (*Store, error) {
	m.mu.RLock()
	store, ok := m.stores[userID]
	m.mu.RUnlock()
	if ok {
		return store, nil
	}

	v, err, _ := m.sfg.Do(userID, func() (interface{}, error) {
		s := NewStore(userID, m.repo, m.cache, m.log)
		if err := s.Load(ctx); err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.stores[userID] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// Release drops the in-memory store for userID. The durable copy stays;
// the next Get reloads from it.
func (m *Manager) Release(userID string) {
	m.mu.Lock()
	delete(m.stores, userID)
	m.mu.Unlock()
}

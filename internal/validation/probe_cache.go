package validation

import (
	"context"
	"sync"
	"time"
)

// ProbeCacheStore keeps probe verdicts keyed by address.
type ProbeCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopProbeCacheStore struct{}

func NewNoopProbeCacheStore() *NoopProbeCacheStore {
	return &NoopProbeCacheStore{}
}

func (s *NoopProbeCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopProbeCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopProbeCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type memoryProbeEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryProbeCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]memoryProbeEntry
	now   func() time.Time
}

func NewInMemoryProbeCacheStore() *InMemoryProbeCacheStore {
	return &InMemoryProbeCacheStore{
		store: make(map[string]map[string]memoryProbeEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryProbeCacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	now := s.now()
	s.mu.RLock()
	entry, ok := s.store[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if ns, ok := s.store[namespace]; ok {
			delete(ns, key)
			if len(ns) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryProbeCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]memoryProbeEntry)
		s.store[namespace] = ns
	}
	ns[key] = memoryProbeEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemoryProbeCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}

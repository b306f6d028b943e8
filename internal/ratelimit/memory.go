package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local fixed-window store. A background sweeper
// evicts expired windows so idle clients do not accumulate.
type MemoryStore struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	stop chan struct{}
	once sync.Once
}

// NewMemoryStore creates an in-process store and starts its sweeper.
func NewMemoryStore(cfg Config) *MemoryStore {
	s := &MemoryStore{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) Allow(_ context.Context, clientID string) (bool, *Status, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[clientID]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(s.cfg.Window)}
		s.windows[clientID] = w
	}
	w.count++

	status := &Status{
		Count:     w.count,
		Limit:     s.cfg.Limit,
		ResetAt:   w.resetAt,
		Remaining: s.cfg.Limit - w.count,
	}
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	return w.count <= s.cfg.Limit, status, nil
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, id)
		}
	}
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process pending-session store guarded by a mutex.
// A background sweep evicts expired sessions; call Close to stop it.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]Pending
	lifetime time.Duration
	done     chan struct{}
	closed   sync.Once
	now      func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithLifetime overrides the default five-minute session lifetime.
func WithLifetime(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.lifetime = d
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates a memory store and starts its sweep loop.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		sessions: make(map[string]Pending),
		lifetime: DefaultLifetime,
		done:     make(chan struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.sweepLoop()
	return m
}

func (m *Memory) Register(_ context.Context, userAgent, ip string) (Pending, error) {
	now := m.now()
	p := Pending{
		ID:        uuid.NewString(),
		UserAgent: userAgent,
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: now.Add(m.lifetime),
		Status:    StatusPending,
	}

	m.mu.Lock()
	m.sessions[p.ID] = p
	m.mu.Unlock()

	return p, nil
}

func (m *Memory) Approve(_ context.Context, id, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if p.Expired(m.now()) {
		delete(m.sessions, id)
		return ErrExpired
	}
	if p.Status == StatusApproved {
		return ErrAlreadyResolved
	}

	p.UserID = userID
	p.Token = token
	p.Status = StatusApproved
	m.sessions[id] = p
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.sessions[id]
	if !ok {
		return Pending{}, ErrNotFound
	}
	if p.Status != StatusApproved && p.Expired(m.now()) {
		p.Status = StatusExpired
		m.sessions[id] = p
	}
	return p, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Close stops the sweep loop. Safe to call more than once.
func (m *Memory) Close() {
	m.closed.Do(func() { close(m.done) })
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := m.now()
	m.mu.Lock()
	for id, p := range m.sessions {
		if p.Expired(now) {
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
}

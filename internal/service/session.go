package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/telemetry"
)

// Session pairs one customer's token with their cart. The cart belongs to
// exactly this session; all access goes through SessionManager so the
// single-owner rule holds even with concurrent HTTP requests.
type Session struct {
	Token    string
	Cart     *domain.Cart
	LastSeen time.Time
}

// SessionManager hands out carts keyed by opaque tokens and evicts
// sessions that have been idle past the TTL.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
}

// NewSessionManager creates a session manager. ttl <= 0 defaults to
// 30 minutes.
func NewSessionManager(ttl time.Duration, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create starts a fresh session with an empty cart.
func (m *SessionManager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		Token:    uuid.New().String(),
		Cart:     domain.NewCart(),
		LastSeen: time.Now(),
	}
	m.sessions[s.Token] = s
	m.metrics.SessionsStarted.Inc()
	return s
}

// Get returns the session for the token and refreshes its idle timer.
// Unknown or expired tokens return ENOTFOUND.
func (m *SessionManager) Get(token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.Errorf(domain.ENOTFOUND, "session.get", "Session not found or expired")
	}
	s.LastSeen = time.Now()
	return s, nil
}

// WithCart runs fn while holding the manager lock, serializing all access
// to the session's cart. Cart methods are not safe for concurrent use on
// their own.
func (m *SessionManager) WithCart(token string, fn func(cart *domain.Cart) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return domain.Errorf(domain.ENOTFOUND, "session.cart", "Session not found or expired")
	}
	s.LastSeen = time.Now()
	return fn(s.Cart)
}

// Delete removes a session. No-op when absent.
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Sweep evicts idle sessions until the context is cancelled.
func (m *SessionManager) Sweep(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *SessionManager) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	evicted := 0
	for token, s := range m.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(m.sessions, token)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Debug("evicted idle sessions", "count", evicted, "active", len(m.sessions))
	}
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

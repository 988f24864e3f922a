package service

import (
	"testing"
	"time"

	"github.com/dukerupert/kiosk/internal/domain"
)

func TestSessionManager_CreateAndGet(t *testing.T) {
	m := NewSessionManager(time.Minute, testMetrics, testLogger())

	s := m.Create()
	if s.Token == "" {
		t.Fatal("session must have a token")
	}

	got, err := m.Get(s.Token)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Cart == nil || !got.Cart.IsEmpty() {
		t.Error("new session must start with an empty cart")
	}

	if _, err := m.Get("nope"); domain.ErrorCode(err) != domain.ENOTFOUND {
		t.Errorf("unknown token should be ENOTFOUND, got %v", err)
	}
}

func TestSessionManager_CartsAreIsolated(t *testing.T) {
	m := NewSessionManager(time.Minute, testMetrics, testLogger())
	p := testProduct(t, 1, "Cold Brew", 250, 10)

	a := m.Create()
	b := m.Create()

	err := m.WithCart(a.Token, func(cart *domain.Cart) error {
		return cart.Add(p, 2)
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.WithCart(b.Token, func(cart *domain.Cart) error {
		if !cart.IsEmpty() {
			t.Error("session b must not see session a's cart")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestSessionManager_EvictsIdleSessions(t *testing.T) {
	m := NewSessionManager(10*time.Millisecond, testMetrics, testLogger())

	s := m.Create()
	time.Sleep(20 * time.Millisecond)
	m.evictIdle()

	if _, err := m.Get(s.Token); err == nil {
		t.Fatal("idle session must be evicted")
	}
	if m.Len() != 0 {
		t.Errorf("sessions remaining: %d", m.Len())
	}
}

func TestSessionManager_Delete(t *testing.T) {
	m := NewSessionManager(time.Minute, testMetrics, testLogger())

	s := m.Create()
	m.Delete(s.Token)

	if _, err := m.Get(s.Token); err == nil {
		t.Fatal("deleted session must not resolve")
	}
}

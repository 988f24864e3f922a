package store

import (
	"context"

	"github.com/dukerupert/kiosk/internal/domain"
)

// Notifier receives a signal after every successful catalog mutation.
// The persistence worker implements it to schedule a flush.
type Notifier interface {
	Notify()
}

// Notifying decorates a Store so successful mutations wake the notifier.
// Reads pass through untouched.
type Notifying struct {
	domain.Store
	n Notifier
}

var _ domain.Store = (*Notifying)(nil)

func NewNotifying(inner domain.Store, n Notifier) *Notifying {
	return &Notifying{Store: inner, n: n}
}

func (s *Notifying) Register(ctx context.Context, p domain.Product) error {
	if err := s.Store.Register(ctx, p); err != nil {
		return err
	}
	s.n.Notify()
	return nil
}

func (s *Notifying) Restock(ctx context.Context, id int64, qty int32) error {
	if err := s.Store.Restock(ctx, id, qty); err != nil {
		return err
	}
	s.n.Notify()
	return nil
}

func (s *Notifying) ApplySale(ctx context.Context, lines []domain.SaleLine) error {
	if err := s.Store.ApplySale(ctx, lines); err != nil {
		return err
	}
	s.n.Notify()
	return nil
}

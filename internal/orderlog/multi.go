package orderlog

import (
	"context"
	"errors"

	"github.com/dukerupert/kiosk/internal/domain"
)

// Multi fans a receipt out to every configured sink. All sinks are
// attempted even when an earlier one fails; errors are joined.
type Multi struct {
	sinks []domain.OrderLog
}

var _ domain.OrderLog = (*Multi)(nil)

func NewMulti(sinks ...domain.OrderLog) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Append(ctx context.Context, r domain.Receipt) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Append(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package orderlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dukerupert/kiosk/internal/domain"
)

// NATSLog publishes each committed receipt as a JSON event. Downstream
// consumers (reporting, reorder triggers) subscribe to the subject.
type NATSLog struct {
	conn    *nats.Conn
	subject string
}

var _ domain.OrderLog = (*NATSLog)(nil)

// orderEvent is the wire shape published per sale.
type orderEvent struct {
	OrderID    string           `json:"order_id"`
	CreatedAt  time.Time        `json:"created_at"`
	TotalCents int64            `json:"total_cents"`
	Lines      []orderEventLine `json:"lines"`
}

type orderEventLine struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

func NewNATSLog(url, subject string) (*NATSLog, error) {
	if subject == "" {
		return nil, fmt.Errorf("orderlog: empty NATS subject")
	}
	conn, err := nats.Connect(url,
		nats.Name("kiosk-orderlog"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("orderlog: connect to NATS: %w", err)
	}
	return &NATSLog{conn: conn, subject: subject}, nil
}

func (l *NATSLog) Append(_ context.Context, r domain.Receipt) error {
	ev := orderEvent{
		OrderID:    r.OrderID,
		CreatedAt:  r.CreatedAt.UTC(),
		TotalCents: r.TotalCents,
		Lines:      make([]orderEventLine, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		ev.Lines = append(ev.Lines, orderEventLine{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.LineTotalCents,
		})
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("orderlog: marshal event: %w", err)
	}
	if err := l.conn.Publish(l.subject, payload); err != nil {
		return fmt.Errorf("orderlog: publish %s: %w", l.subject, err)
	}
	return nil
}

// Close drains buffered messages before disconnecting.
func (l *NATSLog) Close() {
	if l.conn != nil {
		_ = l.conn.Drain()
	}
}

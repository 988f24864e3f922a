// Package orderlog records committed sales. Sinks are best effort: a
// failed append never rolls back a sale, callers log and move on.
package orderlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/store"
)

// CSVLog appends one row per receipt line to a local CSV file.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

var _ domain.OrderLog = (*CSVLog)(nil)

func NewCSVLog(path string) (*CSVLog, error) {
	if path == "" {
		return nil, fmt.Errorf("orderlog: empty file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("orderlog: create directory: %w", err)
		}
	}
	return &CSVLog{path: path}, nil
}

// Append writes the receipt's lines followed by a total row. Rows are
// flushed before returning so a crashed process loses at most the order
// being written.
func (l *CSVLog) Append(_ context.Context, r domain.Receipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("orderlog: open %s: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	ts := r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	for _, line := range r.Lines {
		record := []string{
			ts,
			r.OrderID,
			line.Name,
			fmt.Sprintf("%d", line.Quantity),
			store.FormatPrice(line.UnitPriceCents),
			store.FormatPrice64(line.LineTotalCents),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("orderlog: write line: %w", err)
		}
	}
	total := []string{ts, r.OrderID, "TOTAL", "", "", store.FormatPrice64(r.TotalCents)}
	if err := w.Write(total); err != nil {
		return fmt.Errorf("orderlog: write total: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("orderlog: flush: %w", err)
	}
	return f.Sync()
}

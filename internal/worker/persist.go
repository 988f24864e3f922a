package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/kiosk/internal/store"
)

// Config holds persister configuration
type Config struct {
	// Path is the catalog file written on each flush
	Path string

	// Interval is how often to flush the in-memory catalog to disk
	Interval time.Duration
}

// Persister periodically snapshots the in-memory store back to its seed
// file so stock and sold counts survive a restart. Only the memory
// driver needs this; the Postgres store is durable on its own.
type Persister struct {
	config Config
	store  *store.Memory
	logger *slog.Logger
	notify chan struct{}
}

// NewPersister creates a catalog persister
func NewPersister(mem *store.Memory, config Config, logger *slog.Logger) *Persister {
	// Set defaults
	if config.Interval == 0 {
		config.Interval = 30 * time.Second
	}

	return &Persister{
		config: config,
		store:  mem,
		logger: logger,
		notify: make(chan struct{}, 1),
	}
}

// Notify requests a flush ahead of the next tick. Non-blocking; repeated
// calls before a flush coalesce into one.
func (p *Persister) Notify() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Start flushes on every tick or notification until the context is
// cancelled, writing once more on the way out.
func (p *Persister) Start(ctx context.Context) error {
	p.logger.Info("catalog persister starting",
		"path", p.config.Path,
		"interval", p.config.Interval,
	)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("catalog persister shutting down")
			p.flush()
			return ctx.Err()

		case <-ticker.C:
			p.flush()

		case <-p.notify:
			p.flush()
		}
	}
}

func (p *Persister) flush() {
	products := p.store.Snapshot()
	if err := store.SaveSeedFile(p.config.Path, products); err != nil {
		p.logger.Error("catalog flush failed", "path", p.config.Path, "error", err)
		return
	}
	p.logger.Debug("catalog flushed", "path", p.config.Path, "products", len(products))
}

// Package store provides the in-memory product store used when the kiosk
// runs without a database. One RWMutex guards the whole catalog, which
// keeps multi-line sales trivially atomic: the full validate-then-commit
// pass of ApplySale runs under a single write lock, so readers never
// observe a half-applied sale and concurrent restocks cannot lose updates.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dukerupert/kiosk/internal/domain"
)

// Memory is an in-memory implementation of domain.Store.
type Memory struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

// Compile-time check that Memory implements domain.Store.
var _ domain.Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{products: make(map[int64]domain.Product)}
}

// NewMemoryFrom creates a store hydrated with the given products.
// Duplicate ids return domain.ErrDuplicateProduct.
func NewMemoryFrom(products []domain.Product) (*Memory, error) {
	m := NewMemory()
	for _, p := range products {
		if err := m.Register(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FindByID returns the current state of a product.
func (m *Memory) FindByID(_ context.Context, id int64) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// ListAll returns the catalog ordered by category then name.
func (m *Memory) ListAll(_ context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Register adds a new product to the catalog.
func (m *Memory) Register(_ context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; ok {
		return domain.ErrDuplicateProduct
	}
	m.products[p.ID] = p
	return nil
}

// Restock atomically increases a product's stock by qty.
func (m *Memory) Restock(_ context.Context, id int64, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += qty
	m.products[id] = p
	return nil
}

// ApplySale commits every line or none. The whole validate+apply pass
// holds the write lock, so the commit is atomic with respect to every
// other Store operation.
func (m *Memory) ApplySale(_ context.Context, lines []domain.SaleLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Collapse repeated lines for the same product so the stock check
	// sees the combined quantity, not each line against initial stock.
	wanted := make(map[int64]int32, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		wanted[l.ProductID] += l.Quantity
	}

	// Validation pass: nothing is mutated until every line clears.
	for _, l := range lines {
		qty := wanted[l.ProductID]
		p, ok := m.products[l.ProductID]
		if !ok {
			return &domain.InsufficientStockError{
				ProductID: l.ProductID,
				Requested: qty,
				Available: 0,
			}
		}
		if qty > p.Stock {
			return &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   qty,
				Available:   p.Stock,
			}
		}
	}

	for id, qty := range wanted {
		p := m.products[id]
		p.Stock -= qty
		p.Sold += qty
		m.products[id] = p
	}
	return nil
}

// TopSelling returns the top n products by Sold descending, id ascending.
func (m *Memory) TopSelling(_ context.Context, n int) ([]domain.Product, error) {
	if n <= 0 {
		return []domain.Product{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sold != out[j].Sold {
			return out[i].Sold > out[j].Sold
		}
		return out[i].ID < out[j].ID
	})
	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// Snapshot returns every product ordered by id. Used by the persistence
// worker to write the catalog back to the seed file.
func (m *Memory) Snapshot() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/store"
)

func newTestStore(t *testing.T) *store.Memory {
	t.Helper()

	products := []domain.Product{
		mustProduct(t, 1, "drinks", "Cold Brew", 450, 10),
		mustProduct(t, 2, "food", "Everything Bagel", 275, 6),
		mustProduct(t, 3, "food", "Croissant", 325, 4),
	}
	m, err := store.NewMemoryFrom(products)
	assert.NoError(t, err)
	return m
}

func mustProduct(t *testing.T, id int64, category, name string, price, stock int32) domain.Product {
	t.Helper()
	p, err := domain.NewProduct(id, category, name, price, stock)
	assert.NoError(t, err)
	return p
}

func TestMemory_FindByID(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	p, err := m.FindByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Cold Brew", p.Name)

	_, err = m.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestMemory_Register_RejectsDuplicateID(t *testing.T) {
	m := newTestStore(t)

	err := m.Register(context.Background(), mustProduct(t, 1, "drinks", "Latte", 500, 5))
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)
}

func TestMemory_ListAll_OrdersByCategoryThenName(t *testing.T) {
	m := newTestStore(t)

	products, err := m.ListAll(context.Background())
	assert.NoError(t, err)

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Cold Brew", "Croissant", "Everything Bagel"}, names)
}

func TestMemory_Restock(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, m.Restock(ctx, 1, 5))

	p, err := m.FindByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int32(15), p.Stock)

	assert.ErrorIs(t, m.Restock(ctx, 1, 0), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, m.Restock(ctx, 1, -3), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, m.Restock(ctx, 99, 5), domain.ErrProductNotFound)
}

func TestMemory_ApplySale_CommitsAllLines(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	err := m.ApplySale(ctx, []domain.SaleLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	})
	assert.NoError(t, err)

	p1, _ := m.FindByID(ctx, 1)
	assert.Equal(t, int32(7), p1.Stock)
	assert.Equal(t, int32(3), p1.Sold)

	p2, _ := m.FindByID(ctx, 2)
	assert.Equal(t, int32(4), p2.Stock)
	assert.Equal(t, int32(2), p2.Sold)
}

func TestMemory_ApplySale_IsAllOrNothing(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	// Second line exceeds stock; the first line must not be applied.
	err := m.ApplySale(ctx, []domain.SaleLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 3, Quantity: 100},
	})

	stockErr, ok := domain.IsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), stockErr.ProductID)
	assert.Equal(t, int32(100), stockErr.Requested)
	assert.Equal(t, int32(4), stockErr.Available)

	p1, _ := m.FindByID(ctx, 1)
	assert.Equal(t, int32(10), p1.Stock, "no line may be applied when any line fails")
	assert.Equal(t, int32(0), p1.Sold)
}

func TestMemory_ApplySale_CombinesDuplicateLines(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	// Croissant has stock 4. Each line fits on its own, but together they
	// ask for 6; the sale must fail with the combined quantity and leave
	// the product untouched.
	err := m.ApplySale(ctx, []domain.SaleLine{
		{ProductID: 3, Quantity: 3},
		{ProductID: 3, Quantity: 3},
	})

	stockErr, ok := domain.IsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), stockErr.ProductID)
	assert.Equal(t, int32(6), stockErr.Requested)
	assert.Equal(t, int32(4), stockErr.Available)

	p, _ := m.FindByID(ctx, 3)
	assert.Equal(t, int32(4), p.Stock)
	assert.Equal(t, int32(0), p.Sold)

	// When the combined quantity fits, it is applied exactly once.
	assert.NoError(t, m.ApplySale(ctx, []domain.SaleLine{
		{ProductID: 3, Quantity: 2},
		{ProductID: 3, Quantity: 2},
	}))
	p, _ = m.FindByID(ctx, 3)
	assert.Equal(t, int32(0), p.Stock)
	assert.Equal(t, int32(4), p.Sold)
}

func TestMemory_ApplySale_MissingProductReadsAsZeroStock(t *testing.T) {
	m := newTestStore(t)

	err := m.ApplySale(context.Background(), []domain.SaleLine{
		{ProductID: 99, Quantity: 1},
	})

	stockErr, ok := domain.IsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, int32(0), stockErr.Available)
}

func TestMemory_ApplySale_ExactStockDrainsToZero(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, m.ApplySale(ctx, []domain.SaleLine{{ProductID: 3, Quantity: 4}}))

	p, _ := m.FindByID(ctx, 3)
	assert.Equal(t, int32(0), p.Stock)
	assert.Equal(t, int32(4), p.Sold)

	// Next attempt must fail cleanly.
	err := m.ApplySale(ctx, []domain.SaleLine{{ProductID: 3, Quantity: 1}})
	_, ok := domain.IsInsufficientStock(err)
	assert.True(t, ok)
}

func TestMemory_TopSelling(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	// Sell 2 of product 1, 5 of product 2, 2 of product 3. Products 1 and
	// 3 tie on sold, so id ascending breaks the tie.
	assert.NoError(t, m.ApplySale(ctx, []domain.SaleLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
		{ProductID: 3, Quantity: 2},
	}))

	top, err := m.TopSelling(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].ID)
	assert.Equal(t, int64(1), top[1].ID)

	all, err := m.TopSelling(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, all, 3, "limit larger than the catalog returns everything")

	none, err := m.TopSelling(ctx, 0)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemory_ConcurrentSalesNeverOversell(t *testing.T) {
	ctx := context.Background()
	m, err := store.NewMemoryFrom([]domain.Product{
		mustProduct(t, 1, "drinks", "Cold Brew", 450, 50),
	})
	assert.NoError(t, err)

	// 100 goroutines each try to buy 1 unit of a 50-unit product. Exactly
	// 50 must succeed.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.ApplySale(ctx, []domain.SaleLine{{ProductID: 1, Quantity: 1}}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, succeeded)

	p, _ := m.FindByID(ctx, 1)
	assert.Equal(t, int32(0), p.Stock)
	assert.Equal(t, int32(50), p.Sold)
}

func TestMemory_ConcurrentRestocksAllLand(t *testing.T) {
	ctx := context.Background()
	m := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Restock(ctx, 1, 1)
		}()
	}
	wg.Wait()

	p, _ := m.FindByID(ctx, 1)
	assert.Equal(t, int32(30), p.Stock, "no restock may be lost")
}

func TestMemory_Snapshot_OrderedByID(t *testing.T) {
	m := newTestStore(t)

	snap := m.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, int64(1), snap[0].ID)
	assert.Equal(t, int64(2), snap[1].ID)
	assert.Equal(t, int64(3), snap[2].ID)
}

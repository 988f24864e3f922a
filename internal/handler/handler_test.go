package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/handler"
	"github.com/dukerupert/kiosk/internal/router"
	"github.com/dukerupert/kiosk/internal/routes"
	"github.com/dukerupert/kiosk/internal/service"
	"github.com/dukerupert/kiosk/internal/store"
	"github.com/dukerupert/kiosk/internal/telemetry"
)

const testPIN = "4321"

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = telemetry.NewBusinessMetrics("kiosk_handler_test")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mem, err := store.NewMemoryFrom([]domain.Product{
		mustProduct(t, 1, "drinks", "Cold Brew", 450, 10),
		mustProduct(t, 2, "food", "Everything Bagel", 275, 6),
	})
	assert.NoError(t, err)

	catalog := service.NewCatalogService(mem, testMetrics, logger)
	checkout := service.NewCheckoutService(mem, nil, testMetrics, logger)
	sessions := service.NewSessionManager(time.Minute, testMetrics, logger)

	r := router.New(router.Recovery(logger))
	routes.RegisterKioskRoutes(r, routes.KioskDeps{
		ProductHandler:  handler.NewProductHandler(catalog),
		CartHandler:     handler.NewCartHandler(sessions, catalog, testMetrics),
		CheckoutHandler: handler.NewCheckoutHandler(sessions, checkout),
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		AdminHandler: handler.NewAdminHandler(catalog),
		AdminPIN:     testPIN,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func mustProduct(t *testing.T, id int64, category, name string, price, stock int32) domain.Product {
	t.Helper()
	p, err := domain.NewProduct(id, category, name, price, stock)
	assert.NoError(t, err)
	return p
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	assert.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	if len(raw) > 0 {
		assert.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func startSession(t *testing.T, srv *httptest.Server) map[string]string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/sessions", nil, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return map[string]string{handler.SessionTokenHeader: token}
}

func TestListProducts(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/products", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	products := body["products"].([]any)
	assert.Len(t, products, 2)

	first := products[0].(map[string]any)
	assert.Equal(t, "Cold Brew", first["name"])
	assert.Equal(t, "4.50", first["price"])
}

func TestGetProduct_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/products/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "not_found", errObj["code"])
}

func TestCheckoutFlow(t *testing.T) {
	srv := newTestServer(t)
	session := startSession(t, srv)

	// Add 3 cold brews.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/cart/items",
		map[string]any{"product_id": 1, "quantity": 3}, session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "13.50", body["subtotal"])

	// Preview prices the order without committing.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/checkout/preview", nil, session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1350), body["total_cents"])

	_, body = doJSON(t, http.MethodGet, srv.URL+"/products/1", nil, nil)
	assert.Equal(t, float64(10), body["stock"], "preview must not touch stock")

	// Commit.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/checkout", nil, session)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["order_id"])
	assert.Equal(t, "13.50", body["total"])

	// Stock and sold moved, cart is empty.
	_, body = doJSON(t, http.MethodGet, srv.URL+"/products/1", nil, nil)
	assert.Equal(t, float64(7), body["stock"])
	assert.Equal(t, float64(3), body["sold"])

	_, body = doJSON(t, http.MethodGet, srv.URL+"/cart", nil, session)
	assert.Empty(t, body["lines"])

	// A second checkout on the now-empty cart is rejected.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/checkout", nil, session)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddToCart_AdvisoryStockCheck(t *testing.T) {
	srv := newTestServer(t)
	session := startSession(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/cart/items",
		map[string]any{"product_id": 2, "quantity": 7}, session)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, float64(6), errObj["available"])
}

func TestCheckout_RequiresSession(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/checkout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/checkout", nil,
		map[string]string{handler.SessionTokenHeader: "bogus"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutes_RequirePIN(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/admin/top-sellers", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/admin/top-sellers", nil,
		map[string]string{"X-Admin-Pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRestockAndTopSellers(t *testing.T) {
	srv := newTestServer(t)
	admin := map[string]string{"X-Admin-Pin": testPIN}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/admin/products/2/restock",
		map[string]any{"quantity": 10}, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(16), body["stock"])

	// Sell some bagels so the ranking has signal.
	session := startSession(t, srv)
	_, _ = doJSON(t, http.MethodPost, srv.URL+"/cart/items",
		map[string]any{"product_id": 2, "quantity": 5}, session)
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/checkout", nil, session)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/admin/top-sellers?limit=1", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products := body["products"].([]any)
	assert.Len(t, products, 1)
	assert.Equal(t, "Everything Bagel", products[0].(map[string]any)["name"])
}

func TestAdminRegisterProduct(t *testing.T) {
	srv := newTestServer(t)
	admin := map[string]string{"X-Admin-Pin": testPIN}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/admin/products",
		map[string]any{"id": 9, "category": "food", "name": "Muffin", "price_cents": 325, "stock": 8}, admin)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "3.25", body["price"])

	// Duplicate id conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/admin/products",
		map[string]any{"id": 9, "category": "food", "name": "Muffin", "price_cents": 325, "stock": 8}, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

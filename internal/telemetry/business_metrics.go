package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for register-level observability.
type BusinessMetrics struct {
	// Cart activity
	SessionsStarted  prometheus.Counter
	ProductAddToCart *prometheus.CounterVec
	CartCleared      prometheus.Counter

	// Checkout funnel
	CheckoutPreviewed prometheus.Counter
	CheckoutCompleted prometheus.Counter
	CheckoutRejected  *prometheus.CounterVec

	// Sales
	ItemsSold  prometheus.Counter
	OrderValue prometheus.Histogram

	// Admin
	RestockApplied     prometheus.Counter
	ProductsRegistered prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "kiosk"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		SessionsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_started_total",
				Help:      "Total kiosk sessions created",
			},
		),
		ProductAddToCart: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_add_to_cart_total",
				Help:      "Total add to cart actions",
			},
			[]string{"product_id"},
		),
		CartCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts cleared without a sale",
			},
		),
		CheckoutPreviewed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_previewed_total",
				Help:      "Total checkout previews",
			},
		),
		CheckoutCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_completed_total",
				Help:      "Total successful checkouts",
			},
		),
		CheckoutRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_rejected_total",
				Help:      "Total rejected checkouts",
			},
			[]string{"reason"}, // reason: empty_cart, insufficient_stock, internal
		),
		ItemsSold: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "items_sold_total",
				Help:      "Total units sold across all products",
			},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Distribution of committed order totals in cents",
				Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
			},
		),
		RestockApplied: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "restock_applied_total",
				Help:      "Total admin restock operations",
			},
		),
		ProductsRegistered: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "products_registered_total",
				Help:      "Total products added to the catalog",
			},
		),
	}

	return m
}

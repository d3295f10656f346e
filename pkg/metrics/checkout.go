package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks order placement and the cart-clear protocol. A
// nil registerer yields a no-op instance, so callers never guard.
type CheckoutMetrics struct {
	ordersPlaced     prometheus.Counter
	partialCheckouts prometheus.Counter
	clearRetries     prometheus.Counter
	clearRecovered   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Orders committed by checkout.",
	})
	partialCheckouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_partial_total",
		Help: "Checkouts where the order committed but the cart clear failed.",
	})
	clearRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_cart_clear_retries_total",
		Help: "Cart clear attempts made by the reconcile job.",
	})
	clearRecovered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_cart_clear_recovered_total",
		Help: "Pending cart clears resolved by the reconcile job.",
	})
	reg.MustRegister(ordersPlaced, partialCheckouts, clearRetries, clearRecovered)
	return &CheckoutMetrics{
		ordersPlaced:     ordersPlaced,
		partialCheckouts: partialCheckouts,
		clearRetries:     clearRetries,
		clearRecovered:   clearRecovered,
	}
}

// IncOrdersPlaced increments the committed order counter.
func (c *CheckoutMetrics) IncOrdersPlaced() {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.Inc()
}

// IncPartialCheckouts increments the partial-success counter.
func (c *CheckoutMetrics) IncPartialCheckouts() {
	if c == nil || c.partialCheckouts == nil {
		return
	}
	c.partialCheckouts.Inc()
}

// IncClearRetries increments the reconcile attempt counter.
func (c *CheckoutMetrics) IncClearRetries() {
	if c == nil || c.clearRetries == nil {
		return
	}
	c.clearRetries.Inc()
}

// IncClearRecovered increments the reconcile success counter.
func (c *CheckoutMetrics) IncClearRecovered() {
	if c == nil || c.clearRecovered == nil {
		return
	}
	c.clearRecovered.Inc()
}

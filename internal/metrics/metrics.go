// Package metrics exposes Prometheus counters for checkout and order activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Collector owns a private registry. A nil Collector records nothing.
type Collector struct {
	registry         *prometheus.Registry
	checkouts        *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	paymentCallbacks *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
}

// New registers all collectors together with Go runtime and process metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status changes by target status.",
		}, []string{"to"}),
		paymentCallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_callbacks_total",
			Help:      "Payment gateway notifications by source and outcome.",
		}, []string{"source", "outcome"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_events_published_total",
			Help:      "Outbox events handed to the publisher by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.checkouts,
		c.transitions,
		c.paymentCallbacks,
		c.eventsPublished,
	)
	return c
}

func (c *Collector) CheckoutCompleted() {
	if c != nil {
		c.checkouts.WithLabelValues("placed").Inc()
	}
}

// CheckoutFailed counts a rejected checkout under a short reason label.
func (c *Collector) CheckoutFailed(reason string) {
	if c != nil {
		c.checkouts.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) StatusChanged(to string) {
	if c != nil {
		c.transitions.WithLabelValues(to).Inc()
	}
}

func (c *Collector) PaymentCallback(source, outcome string) {
	if c != nil {
		c.paymentCallbacks.WithLabelValues(source, outcome).Inc()
	}
}

func (c *Collector) EventPublished(ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.eventsPublished.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

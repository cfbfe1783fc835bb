package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// OrdersPlaced counts orders created by the composer.
	OrdersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders created",
		},
	)

	// OrderTransitions counts successful state changes by target status.
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Successful order state transitions",
		},
		[]string{"status"},
	)

	// OrderConflicts counts transitions rejected by the state guard.
	OrderConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transition_conflicts_total",
			Help: "Order transitions that lost the state guard",
		},
		[]string{"status"},
	)

	// LoyaltyEvents counts tier changes and redemptions.
	LoyaltyEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_events_total",
			Help: "Loyalty tier changes and redemptions",
		},
		[]string{"event", "tier"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpLatency,
		OrdersPlaced,
		OrderTransitions,
		OrderConflicts,
		LoyaltyEvents,
	)
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

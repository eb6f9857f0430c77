package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	slipsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutting_slips_computed_total",
		Help: "Cutting slips computed by department and scope (order|all).",
	}, []string{"department", "scope"})

	slipPieces = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cutting_slip_pieces",
		Help:    "Distinct pieces per computed cutting slip.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"department"})

	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted.",
	})

	stockDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_dispatches_total",
		Help: "Inventory dispatch attempts by outcome.",
	}, []string{"outcome"})
)

// Middleware records count and latency per matched route. The route pattern
// is used instead of the raw path to keep label cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func ObserveSlip(department, scope string, pieces int) {
	slipsComputed.WithLabelValues(department, scope).Inc()
	slipPieces.WithLabelValues(department).Observe(float64(pieces))
}

func OrderCreated() { ordersCreated.Inc() }

func Dispatch(ok bool) {
	if ok {
		stockDispatched.WithLabelValues("ok").Inc()
		return
	}
	stockDispatched.WithLabelValues("rejected").Inc()
}

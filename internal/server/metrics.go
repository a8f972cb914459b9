package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/todokit/internal/todo"
)

// Metrics holds the server's Prometheus collectors. Each Server has its own
// registry so tests and multiple servers do not collide.
type Metrics struct {
	registry *prometheus.Registry

	// todos is the current number of todos.
	// Labels: state (active, completed)
	todos *prometheus.GaugeVec

	// changes counts committed changes to the todo list.
	changes prometheus.Counter

	// requests counts HTTP requests.
	// Labels: method, route (the registered pattern), status
	requests *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		todos: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "todokit",
			Name:      "todos",
			Help:      "Current number of todos by state",
		}, []string{"state"}),
		changes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "todokit",
			Subsystem: "store",
			Name:      "changes_total",
			Help:      "Total committed changes to the todo list",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todokit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}
}

// observe records the counters of the current list.
func (m *Metrics) observe(stats todo.Stats) {
	m.todos.WithLabelValues("active").Set(float64(stats.Active))
	m.todos.WithLabelValues("completed").Set(float64(stats.Completed))
}

// middleware counts every request once it has been handled.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

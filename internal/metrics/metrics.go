package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives planner and HTTP observations.
type Recorder interface {
	ObserveBuild(formulation string, variables, constraints int, elapsed time.Duration)
	ObserveSolve(outcome string, nodes int, elapsed time.Duration)
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveBuild(string, int, int, time.Duration)      {}
func (Nop) ObserveSolve(string, int, time.Duration)           {}
func (Nop) ObserveRequest(string, string, int, time.Duration) {}

// Metrics is a Recorder backed by its own Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	builds          *prometheus.CounterVec
	modelVariables  prometheus.Histogram
	modelRows       prometheus.Histogram
	buildDuration   prometheus.Histogram
	solves          *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	solveNodes      prometheus.Histogram
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sizeBuckets := prometheus.ExponentialBuckets(10, 4, 8)

	m := &Metrics{
		registry: reg,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uld_model_builds_total",
			Help: "Packing models built, by non-overlap formulation.",
		}, []string{"formulation"}),
		modelVariables: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uld_model_variables",
			Help:    "Number of variables per built packing model.",
			Buckets: sizeBuckets,
		}),
		modelRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uld_model_constraints",
			Help:    "Number of constraints per built packing model.",
			Buckets: sizeBuckets,
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uld_model_build_duration_seconds",
			Help:    "Time spent building packing models.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uld_solves_total",
			Help: "Solver runs by outcome.",
		}, []string{"outcome"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uld_solve_duration_seconds",
			Help:    "Solver wall-clock time by outcome.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 9),
		}, []string{"outcome"}),
		solveNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uld_solve_nodes",
			Help:    "Branch-and-bound nodes evaluated per solve.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.builds, m.modelVariables, m.modelRows, m.buildDuration,
		m.solves, m.solveDuration, m.solveNodes,
		m.requests, m.requestDuration,
	)
	return m
}

func (m *Metrics) ObserveBuild(formulation string, variables, constraints int, elapsed time.Duration) {
	m.builds.WithLabelValues(formulation).Inc()
	m.modelVariables.Observe(float64(variables))
	m.modelRows.Observe(float64(constraints))
	m.buildDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSolve(outcome string, nodes int, elapsed time.Duration) {
	m.solves.WithLabelValues(outcome).Inc()
	m.solveDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.solveNodes.Observe(float64(nodes))
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package monitor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fastygo/regioncheck/domain"
)

// OutcomeOK labels a fetch that returned a decoded payload. Failed fetches
// are labelled with their lower-cased domain error code.
const OutcomeOK = "ok"

// Observer receives one call per upstream fetch.
type Observer interface {
	ObserveFetch(resource, outcome string, elapsed time.Duration)
}

// Metrics records fetch and run statistics both as prometheus collectors and
// as an in-process performance window.
type Metrics struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	users    *prometheus.GaugeVec

	mu      sync.Mutex
	started time.Time
	stopped time.Time
	calls   int
	total   time.Duration
	min     time.Duration
	max     time.Duration
	now     func() time.Time
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Upstream fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Upstream fetch latency by resource.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_runs_total",
			Help:      "Validation runs by result (pass, fail, error).",
		}, []string{"result"}),
		users: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_users",
			Help:      "In-region users of the last completed run by verdict.",
		}, []string{"verdict"}),
		now: time.Now,
	}
	m.registry.MustRegister(
		m.fetches,
		m.latency,
		m.runs,
		m.users,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the collectors for a /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start opens a new performance window, discarding previous timings.
func (m *Metrics) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = m.now()
	m.stopped = time.Time{}
	m.calls = 0
	m.total, m.min, m.max = 0, 0, 0
}

func (m *Metrics) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = m.now()
}

func (m *Metrics) ObserveFetch(resource, outcome string, elapsed time.Duration) {
	m.fetches.WithLabelValues(resource, outcome).Inc()
	m.latency.WithLabelValues(resource).Observe(elapsed.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == 0 || elapsed < m.min {
		m.min = elapsed
	}
	if elapsed > m.max {
		m.max = elapsed
	}
	m.calls++
	m.total += elapsed
}

func (m *Metrics) ObserveRun(summary *domain.Summary, err error) {
	switch {
	case err != nil || summary == nil:
		m.runs.WithLabelValues("error").Inc()
		return
	case summary.OverallResult:
		m.runs.WithLabelValues("pass").Inc()
	default:
		m.runs.WithLabelValues("fail").Inc()
	}
	m.users.WithLabelValues("passed").Set(float64(summary.PassedUsers))
	m.users.WithLabelValues("failed").Set(float64(summary.FailedUsers))
}

// Performance returns the timings of the current window. ok is false until
// the window has been both started and stopped.
func (m *Metrics) Performance() (PerformanceSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started.IsZero() || m.stopped.IsZero() {
		return PerformanceSummary{}, false
	}

	elapsed := m.stopped.Sub(m.started).Seconds()
	summary := PerformanceSummary{
		TotalExecutionTime: elapsed,
		TotalAPICalls:      m.calls,
	}
	if m.calls > 0 {
		summary.AverageResponseTime = (m.total / time.Duration(m.calls)).Seconds()
		summary.MinResponseTime = m.min.Seconds()
		summary.MaxResponseTime = m.max.Seconds()
	}
	if elapsed > 0 {
		summary.APICallsPerSecond = float64(m.calls) / elapsed
	}
	return summary, true
}

var _ Observer = (*Metrics)(nil)

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rampet"

// Gauges is one reading of the values exported as gauges.
type Gauges struct {
	SizeMB        int
	AllocatedMB   int
	Hunger        float64
	Happiness     float64
	Alive         bool
	FreeMB        int
	TotalMB       int
	UsagePercent  float64
	UnderPressure bool
}

// Metrics exports pet and host memory state to Prometheus.
// Each instance owns its registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	sizeMB        prometheus.Gauge
	allocatedMB   prometheus.Gauge
	hunger        prometheus.Gauge
	happiness     prometheus.Gauge
	alive         prometheus.Gauge
	freeMB        prometheus.Gauge
	totalMB       prometheus.Gauge
	usagePercent  prometheus.Gauge
	underPressure prometheus.Gauge

	feeds      prometheus.Counter
	declined   *prometheus.CounterVec // reason: insufficient_memory/allocation_failed/limit/dead
	mbEaten    prometheus.Counter
	mbDigested prometheus.Counter
	tickTime   prometheus.Histogram
}

// NewMetrics creates and registers all metrics.
func NewMetrics() *Metrics {
	gauge := func(subsystem, name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pet", Name: name, Help: help,
		})
	}

	m := &Metrics{
		registry:      prometheus.NewRegistry(),
		sizeMB:        gauge("pet", "size_mb", "Simulated pet size in MB"),
		allocatedMB:   gauge("memory", "allocated_mb", "Memory actually held by the pool in MB"),
		hunger:        gauge("pet", "hunger", "Hunger level (0-100)"),
		happiness:     gauge("pet", "happiness", "Happiness level (0-100)"),
		alive:         gauge("pet", "alive", "Whether the pet is alive (1=yes, 0=no)"),
		freeMB:        gauge("system", "free_mb", "Host available RAM in MB"),
		totalMB:       gauge("system", "total_mb", "Host total RAM in MB"),
		usagePercent:  gauge("system", "usage_percent", "Host RAM usage percentage"),
		underPressure: gauge("system", "under_pressure", "Whether the host is under memory pressure (1=yes, 0=no)"),
		feeds:         counter("feeds_total", "Total successful feedings"),
		declined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pet",
			Name:      "feeds_declined_total",
			Help:      "Total declined feedings",
		}, []string{"reason"}),
		mbEaten:    counter("mb_eaten_total", "Total MB eaten"),
		mbDigested: counter("mb_digested_total", "Total MB digested"),
		tickTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "tick_duration_seconds",
			Help:      "Duration of simulation ticks",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us ~ 164ms
		}),
	}

	m.registry.MustRegister(
		m.sizeMB, m.allocatedMB, m.hunger, m.happiness, m.alive,
		m.freeMB, m.totalMB, m.usagePercent, m.underPressure,
		m.feeds, m.declined, m.mbEaten, m.mbDigested, m.tickTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe sets every gauge. Safe on a nil receiver.
func (m *Metrics) Observe(g Gauges) {
	if m == nil {
		return
	}
	m.sizeMB.Set(float64(g.SizeMB))
	m.allocatedMB.Set(float64(g.AllocatedMB))
	m.hunger.Set(g.Hunger)
	m.happiness.Set(g.Happiness)
	m.alive.Set(boolGauge(g.Alive))
	m.freeMB.Set(float64(g.FreeMB))
	m.totalMB.Set(float64(g.TotalMB))
	m.usagePercent.Set(g.UsagePercent)
	m.underPressure.Set(boolGauge(g.UnderPressure))
}

// RecordFeed counts a successful feeding.
func (m *Metrics) RecordFeed(amountMB int) {
	if m == nil {
		return
	}
	m.feeds.Inc()
	m.mbEaten.Add(float64(amountMB))
}

// RecordFeedDeclined counts a declined feeding.
func (m *Metrics) RecordFeedDeclined(reason string) {
	if m == nil {
		return
	}
	m.declined.WithLabelValues(reason).Inc()
}

// RecordDigest counts memory released by metabolism.
func (m *Metrics) RecordDigest(amountMB int) {
	if m == nil || amountMB <= 0 {
		return
	}
	m.mbDigested.Add(float64(amountMB))
}

// ObserveTick records one tick duration in seconds.
func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.tickTime.Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

package interp

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 是解释器的 prometheus 指标。nil 时所有方法为空操作。
type Metrics struct {
	commands  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	fuseTrips prometheus.Counter
	maxDepth  prometheus.Gauge
	deepest   atomic.Int64
}

// NewMetrics 创建并向 reg 注册指标。reg 为 nil 时不注册。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rmmv_interp_commands_total",
				Help: "Total number of event commands executed",
			},
			[]string{"code"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rmmv_interp_errors_total",
				Help: "Total number of event command errors",
			},
			[]string{"event_command"},
		),
		fuseTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rmmv_interp_fuse_trips_total",
			Help: "Number of ticks cut short by the per-tick command budget",
		}),
		maxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rmmv_interp_call_depth_max",
			Help: "Deepest common event call depth reached",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.errors, m.fuseTrips, m.maxDepth)
	}
	return m
}

func (m *Metrics) command(code int) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) error(source string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(source).Inc()
}

func (m *Metrics) fuseTrip() {
	if m == nil {
		return
	}
	m.fuseTrips.Inc()
}

func (m *Metrics) depth(d int) {
	if m == nil {
		return
	}
	for {
		cur := m.deepest.Load()
		if int64(d) <= cur {
			return
		}
		if m.deepest.CompareAndSwap(cur, int64(d)) {
			m.maxDepth.Set(float64(d))
			return
		}
	}
}

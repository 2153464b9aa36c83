package qdevice

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

/*
Metrics counts what a device asked of its engine. The counters are mirrored
into prometheus collectors so a host can scrape them after Register; the
plain fields back ExportMetrics. A nil *Metrics is valid and records
nothing. One Metrics may be shared by the devices of a ShotPool.
*/
type Metrics struct {
	mu           sync.RWMutex
	GateCounts   map[string]int64
	ShotsSampled int64
	Allocations  int64
	Releases     int64
	Resets       int64

	gates       *prometheus.CounterVec
	shots       prometheus.Counter
	allocations prometheus.Counter
	releases    prometheus.Counter
	resets      prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		GateCounts: make(map[string]int64),
		gates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qdevice",
			Name:      "gate_applications_total",
			Help:      "Named and matrix operations dispatched to the engine.",
		}, []string{"gate"}),
		shots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qdevice",
			Name:      "shots_sampled_total",
			Help:      "Shots drawn from the engine.",
		}),
		allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qdevice",
			Name:      "qubit_allocations_total",
			Help:      "Qubits allocated.",
		}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qdevice",
			Name:      "qubit_releases_total",
			Help:      "Qubits released one at a time.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qdevice",
			Name:      "resets_total",
			Help:      "Full engine resets.",
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.gates, m.shots, m.allocations, m.releases, m.resets} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) gateApplied(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.GateCounts[name]++
	m.mu.Unlock()
	m.gates.WithLabelValues(name).Inc()
}

func (m *Metrics) shotsSampled(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.ShotsSampled += int64(n)
	m.mu.Unlock()
	m.shots.Add(float64(n))
}

func (m *Metrics) qubitsAllocated(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.Allocations += int64(n)
	m.mu.Unlock()
	m.allocations.Add(float64(n))
}

func (m *Metrics) qubitReleased() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.Releases++
	m.mu.Unlock()
	m.releases.Inc()
}

func (m *Metrics) reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.Resets++
	m.mu.Unlock()
	m.resets.Inc()
}

func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gates := make(map[string]int64, len(m.GateCounts))
	for name, n := range m.GateCounts {
		gates[name] = n
	}

	return map[string]interface{}{
		"gates":         gates,
		"shots_sampled": m.ShotsSampled,
		"allocations":   m.Allocations,
		"releases":      m.Releases,
		"resets":        m.Resets,
	}
}

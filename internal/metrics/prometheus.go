package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prom is the prometheus-backed Recorder exposed on /metrics.
type Prom struct {
	registry *prometheus.Registry

	verifications   *prometheus.CounterVec
	scansForwarded  prometheus.Counter
	scansSuppressed prometheus.Counter
	washesStarted   prometheus.Counter
	washesEnded     prometheus.Counter
	refreshes       *prometheus.CounterVec
	activeWashes    prometheus.Gauge
}

func NewProm() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "washops_verifications_total",
				Help: "Total verification attempts by reference kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		scansForwarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "washops_scans_forwarded_total",
				Help: "Total decodes forwarded to verification",
			},
		),
		scansSuppressed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "washops_scans_suppressed_total",
				Help: "Total duplicate decodes dropped within a scan session",
			},
		),
		washesStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "washops_washes_started_total",
				Help: "Total washes started from this console",
			},
		),
		washesEnded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "washops_washes_ended_total",
				Help: "Total washes ended from this console",
			},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "washops_registry_refreshes_total",
				Help: "Total active-wash registry refreshes by result",
			},
			[]string{"result"},
		),
		activeWashes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "washops_active_washes",
				Help: "Active washes in the last registry snapshot",
			},
		),
	}

	p.registry.MustRegister(
		p.verifications,
		p.scansForwarded,
		p.scansSuppressed,
		p.washesStarted,
		p.washesEnded,
		p.refreshes,
		p.activeWashes,
	)
	return p
}

func (p *Prom) VerificationResult(kind, outcome string) {
	p.verifications.WithLabelValues(kind, outcome).Inc()
}

func (p *Prom) ScanForwarded()  { p.scansForwarded.Inc() }
func (p *Prom) ScanSuppressed() { p.scansSuppressed.Inc() }
func (p *Prom) WashStarted()    { p.washesStarted.Inc() }
func (p *Prom) WashEnded()      { p.washesEnded.Inc() }

func (p *Prom) RegistryRefresh(size int, failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	p.refreshes.WithLabelValues(result).Inc()
}

func (p *Prom) ActiveWashes(count int) {
	p.activeWashes.Set(float64(count))
}

// Handler serves the scrape endpoint for this recorder's registry.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Package metrics records run outcomes as Prometheus series on a private registry.
package metrics

import (
	"fmt"
	"time"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "applier"

var _ output.MetricsPort = (*Prometheus)(nil)

type Prometheus struct {
	registry *prometheus.Registry

	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	inFlight prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "applications_total",
				Help:      "Applications processed, by agent and final status of the attempt",
			},
			[]string{"agent", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "application_duration_seconds",
				Help:      "Time spent processing one application",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"agent"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_attempts_total",
				Help:      "Retry attempts started",
			},
			[]string{"agent"},
		),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "applications_in_flight",
			Help:      "Applications currently holding a browser page",
		}),
	}
}

func (p *Prometheus) RecordOutcome(agent string, status entity.Status) {
	p.outcomes.WithLabelValues(agent, status.String()).Inc()
}

func (p *Prometheus) ObserveDuration(agent string, d time.Duration) {
	p.duration.WithLabelValues(agent).Observe(d.Seconds())
}

func (p *Prometheus) IncRetry(agent string) {
	p.retries.WithLabelValues(agent).Inc()
}

func (p *Prometheus) AddInFlight(delta int) {
	p.inFlight.Add(float64(delta))
}

// WriteTextfile dumps every series in the text exposition format, for the node
// exporter's textfile collector.
func (p *Prometheus) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

var _ output.MetricsPort = Nop{}

type Nop struct{}

func (Nop) RecordOutcome(string, entity.Status)   {}
func (Nop) ObserveDuration(string, time.Duration) {}
func (Nop) IncRetry(string)                       {}
func (Nop) AddInFlight(int)                       {}

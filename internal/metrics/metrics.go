package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus metrics for the selection engine.
type Registry struct {
	CycleDuration  *prometheus.HistogramVec
	VenueExcluded  *prometheus.CounterVec
	VenueSelected  *prometheus.CounterVec
	CyclesTotal    *prometheus.CounterVec
	EligibleVenues prometheus.Gauge
}

// NewRegistry creates the engine metrics.
func NewRegistry() *Registry {
	return &Registry{
		CycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "venuerank_cycle_duration_seconds",
				Help:    "End-to-end duration of one evaluation cycle",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"outcome"},
		),
		VenueExcluded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuerank_venue_exclusions_total",
				Help: "Venues excluded from ranking, by venue and reason class",
			},
			[]string{"venue", "reason"},
		),
		VenueSelected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuerank_venue_selections_total",
				Help: "Cycles won, by venue",
			},
			[]string{"venue"},
		),
		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuerank_cycles_total",
				Help: "Evaluation cycles run, by outcome",
			},
			[]string{"outcome"},
		),
		EligibleVenues: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "venuerank_eligible_venues",
				Help: "Venues that passed the safety gate in the latest cycle",
			},
		),
	}
}

// Register installs all metrics on the given registerer.
func (r *Registry) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		r.CycleDuration,
		r.VenueExcluded,
		r.VenueSelected,
		r.CyclesTotal,
		r.EligibleVenues,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveCycle records one finished cycle.
func (r *Registry) ObserveCycle(outcome string, eligible int, elapsed time.Duration) {
	r.CyclesTotal.WithLabelValues(outcome).Inc()
	r.CycleDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	r.EligibleVenues.Set(float64(eligible))
}

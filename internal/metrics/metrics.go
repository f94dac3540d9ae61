// Package metrics exports Prometheus collectors for the engine, fed from
// eventbus events so the engine core stays instrumentation-free.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colgraph/colgraph/internal/eventbus"
	"github.com/colgraph/colgraph/internal/events"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	ScansTotal       *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	EntriesProcessed prometheus.Counter
	ActionsBooked    prometheus.Counter
	ActionsCompleted prometheus.Counter
}

// New registers the engine collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScansTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "colgraph_scans_total",
			Help: "Scans finished, by status.",
		}, []string{"status"}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "colgraph_scan_duration_seconds",
			Help:    "Wall time of finished scans.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		EntriesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "colgraph_entries_processed_total",
			Help: "Entries covered by successfully finished scans.",
		}),
		ActionsBooked: f.NewCounter(prometheus.CounterOpts{
			Name: "colgraph_actions_booked_total",
			Help: "Actions registered against a graph.",
		}),
		ActionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "colgraph_actions_completed_total",
			Help: "Actions whose merged result was published.",
		}),
	}
}

// Attach subscribes the collectors to the global eventbus. The returned
// function removes the subscriptions.
func (m *Metrics) Attach() (detach func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.ScanFinish) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.ScansTotal.WithLabelValues(status).Inc()
			m.ScanDuration.Observe(e.Duration.Seconds())
			if e.Err == nil {
				m.EntriesProcessed.Add(float64(e.Entries))
			}
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ActionBooked) {
			m.ActionsBooked.Inc()
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ActionDone) {
			m.ActionsCompleted.Inc()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Package metrics exports cart events as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/cartkeeper/pkg/cart"
)

const namespace = "cartkeeper"

// Write results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder implements cart.EventHandler and records every event into a
// set of Prometheus collectors.
type Recorder struct {
	cart.BaseEventHandler

	changes       *prometheus.CounterVec
	writes        *prometheus.CounterVec
	writeDuration prometheus.Histogram
	writeAttempts prometheus.Histogram
	corrupt       prometheus.Counter
	lineItems     prometheus.Gauge
	units         prometheus.Gauge
	state         prometheus.Gauge
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		changes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_changes_total",
				Help:      "Total number of cart changes by operation",
			},
			[]string{"op"},
		),
		writes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_writes_total",
				Help:      "Total number of snapshot writes by result",
			},
			[]string{"result"},
		),
		writeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_write_duration_seconds",
				Help:      "Snapshot write duration in seconds, retries included",
				Buckets:   prometheus.DefBuckets,
			},
		),
		writeAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_write_attempts",
				Help:      "Number of attempts per snapshot write",
				Buckets:   []float64{1, 2, 3, 5, 8},
			},
		),
		corrupt: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "corrupt_snapshots_total",
				Help:      "Total number of stored snapshots rejected as corrupt",
			},
		),
		lineItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cart_line_items",
				Help:      "Number of distinct products in the cart",
			},
		),
		units: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cart_units",
				Help:      "Sum of quantities in the cart",
			},
		),
		state: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "lifecycle_state",
				Help:      "Lifecycle state of the cart (0 uninitialized, 1 loading, 2 active, 3 closed)",
			},
		),
	}
}

// OnStateChange records the current lifecycle state.
func (r *Recorder) OnStateChange(event cart.StateChangeEvent) {
	r.state.Set(float64(event.Current))
}

// OnCartChange counts the change and updates the cart gauges.
func (r *Recorder) OnCartChange(event cart.CartChangeEvent) {
	r.changes.WithLabelValues(event.Op).Inc()

	units := 0
	for _, it := range event.Items {
		units += it.Quantity
	}
	r.lineItems.Set(float64(len(event.Items)))
	r.units.Set(float64(units))
}

// OnPersist records the outcome of a snapshot write.
func (r *Recorder) OnPersist(event cart.PersistEvent) {
	result := ResultSuccess
	if event.Err != nil {
		result = ResultFailure
	}
	r.writes.WithLabelValues(result).Inc()
	r.writeDuration.Observe(event.Duration.Seconds())
	r.writeAttempts.Observe(float64(event.Attempts))
}

// OnCorruptState counts a rejected snapshot.
func (r *Recorder) OnCorruptState(cart.CorruptStateEvent) {
	r.corrupt.Inc()
}

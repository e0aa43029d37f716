// Package metrics provides the Prometheus metrics exported by the note store
// and the recording pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notereel"

// Save error reasons.
const (
	ReasonQuota     = "quota"
	ReasonSerialize = "serialize"
	ReasonWrite     = "write"
)

// Metrics contains the store and recording metrics.
type Metrics struct {
	StoreSaves      prometheus.Counter
	StoreSaveErrors *prometheus.CounterVec
	SnapshotBytes   prometheus.Gauge
	FramesRendered  prometheus.Counter
	RecordingChunks prometheus.Counter
	RecordingBytes  prometheus.Counter
	RecordingState  *prometheus.GaugeVec
}

// New creates the metrics and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register notereel metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.StoreSaves = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_saves_total",
		Help:      "Total number of database snapshots written to the persistence slot",
	})

	m.StoreSaveErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_save_errors_total",
		Help:      "Total number of failed snapshot writes by reason",
	}, []string{"reason"})

	m.SnapshotBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_snapshot_bytes",
		Help:      "Encoded size of the last database snapshot",
	})

	m.FramesRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_rendered_total",
		Help:      "Total number of synthetic frames rendered",
	})

	m.RecordingChunks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recording_chunks_total",
		Help:      "Total number of recording chunks persisted",
	})

	m.RecordingBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recording_chunk_bytes_total",
		Help:      "Total bytes of recording chunks persisted",
	})

	m.RecordingState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "recording_state",
		Help:      "Current recording pipeline state (1 for the active state)",
	}, []string{"state"})
}

// ObserveSave records a successful snapshot write of size bytes.
func (m *Metrics) ObserveSave(size int) {
	if m == nil {
		return
	}
	m.StoreSaves.Inc()
	m.SnapshotBytes.Set(float64(size))
}

// ObserveSaveError records a failed snapshot write.
func (m *Metrics) ObserveSaveError(reason string) {
	if m == nil {
		return
	}
	m.StoreSaveErrors.WithLabelValues(reason).Inc()
}

// ObserveFrame records one rendered frame.
func (m *Metrics) ObserveFrame() {
	if m == nil {
		return
	}
	m.FramesRendered.Inc()
}

// ObserveChunk records one persisted recording chunk.
func (m *Metrics) ObserveChunk(size int) {
	if m == nil {
		return
	}
	m.RecordingChunks.Inc()
	m.RecordingBytes.Add(float64(size))
}

// SetRecordingState marks state as the active pipeline state.
func (m *Metrics) SetRecordingState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		m.RecordingState.WithLabelValues(s).Set(v)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.StoreSaves
	m.StoreSaveErrors.Collect(ch)
	ch <- m.SnapshotBytes
	ch <- m.FramesRendered
	ch <- m.RecordingChunks
	ch <- m.RecordingBytes
	m.RecordingState.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.StoreSaves.Desc()
	m.StoreSaveErrors.Describe(ch)
	ch <- m.SnapshotBytes.Desc()
	ch <- m.FramesRendered.Desc()
	ch <- m.RecordingChunks.Desc()
	ch <- m.RecordingBytes.Desc()
	m.RecordingState.Describe(ch)
}

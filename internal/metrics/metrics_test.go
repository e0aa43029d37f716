package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry)
	require.NoError(t, err)

	_, err = New(registry)
	assert.Error(t, err, "registering twice should fail")
}

func TestObserveSave(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveSave(100)
	m.ObserveSave(250)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.StoreSaves))
	assert.Equal(t, float64(250), testutil.ToFloat64(m.SnapshotBytes))
}

func TestObserveSaveError(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveSaveError(ReasonQuota)
	m.ObserveSaveError(ReasonQuota)
	m.ObserveSaveError(ReasonWrite)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.StoreSaveErrors.WithLabelValues(ReasonQuota)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreSaveErrors.WithLabelValues(ReasonWrite)))
}

func TestObserveChunkAndFrame(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveFrame()
	m.ObserveChunk(10)
	m.ObserveChunk(5)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FramesRendered))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RecordingChunks))
	assert.Equal(t, float64(15), testutil.ToFloat64(m.RecordingBytes))
}

func TestSetRecordingState(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	all := []string{"idle", "recording", "processing"}

	m.SetRecordingState("recording", all)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RecordingState.WithLabelValues("recording")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RecordingState.WithLabelValues("idle")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSave(1)
		m.ObserveSaveError(ReasonWrite)
		m.ObserveFrame()
		m.ObserveChunk(1)
		m.SetRecordingState("idle", []string{"idle"})
	})
}

package recording

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notereel/internal/metrics"
)

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

// fakeRecorder emits chunks on demand and one last chunk on Stop.
type fakeRecorder struct {
	mu       sync.Mutex
	onChunk  func([]byte)
	final    []byte
	stream   *MediaStream
	started  bool
	stopped  bool
	aborted  bool
	startErr error
	width    int
	height   int
}

func (r *fakeRecorder) Start(ctx context.Context, stream *MediaStream, timeslice time.Duration, onChunk func([]byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.onChunk = onChunk
	r.stream = stream
	r.started = true
	return nil
}

func (r *fakeRecorder) emit(data []byte) {
	r.mu.Lock()
	fn := r.onChunk
	r.mu.Unlock()
	fn(data)
}

func (r *fakeRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.final != nil {
		r.onChunk(r.final)
	}
	return nil
}

func (r *fakeRecorder) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborted = true
}

// fakeFactory hands out fakeRecorders and supports a fixed codec set.
type fakeFactory struct {
	mu        sync.Mutex
	supported map[Codec]bool
	recorders []*fakeRecorder
	final     []byte
	startErr  error
}

func newFakeFactory(codecs ...Codec) *fakeFactory {
	if len(codecs) == 0 {
		codecs = DefaultCodecs
	}
	f := &fakeFactory{supported: make(map[Codec]bool)}
	for _, c := range codecs {
		f.supported[c] = true
	}
	return f
}

func (f *fakeFactory) Supports(c Codec) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.supported[c]
}

func (f *fakeFactory) NewRecorder(codec Codec, width, height, fps int) (Recorder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &fakeRecorder{final: f.final, startErr: f.startErr, width: width, height: height}
	f.recorders = append(f.recorders, r)
	return r, nil
}

func (f *fakeFactory) last() *fakeRecorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recorders) == 0 {
		return nil
	}
	return f.recorders[len(f.recorders)-1]
}

// fakeMic opens silent tracks and remembers them.
type fakeMic struct {
	mu     sync.Mutex
	err    error
	tracks []*AudioTrack
}

func (m *fakeMic) Open(ctx context.Context) (*AudioTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t := NewAudioTrack(AudioFormat{SampleRate: 8000, Channels: 1}, zeroReader{})
	m.tracks = append(m.tracks, t)
	return t, nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// memorySink is an in-memory ChunkSink.
type memorySink struct {
	mu      sync.Mutex
	chunks  [][]byte
	addErr  error
	cleared int
}

func (s *memorySink) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.cleared++
	return nil
}

func (s *memorySink) AddChunk(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	s.chunks = append(s.chunks, append([]byte(nil), data...))
	return nil
}

func (s *memorySink) AllChunks(ctx context.Context) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.chunks...), nil
}

var errNoMic = errors.New("permission denied")

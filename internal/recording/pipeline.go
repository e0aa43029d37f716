// Package recording renders note text into video frames, captures them with
// optional microphone audio and buffers the encoded output in chunks until
// the recording is stopped.
package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/notereel/internal/chunks"
	"github.com/mesh-intelligence/notereel/internal/logging"
	"github.com/mesh-intelligence/notereel/internal/metrics"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// ChunkSink stores encoded chunks in order.
type ChunkSink interface {
	Clear(ctx context.Context) error
	AddChunk(ctx context.Context, data []byte) error
	AllChunks(ctx context.Context) ([][]byte, error)
}

var _ ChunkSink = (*chunks.Store)(nil)

// Pipeline defaults.
const (
	DefaultFPS       = 30
	DefaultTimeslice = time.Second
)

var allStates = []string{
	string(types.StateIdle),
	string(types.StateRecording),
	string(types.StateProcessing),
	string(types.StatePaused),
}

// Config tunes the pipeline.
type Config struct {
	FPS       int
	Timeslice time.Duration
	Codecs    []Codec
}

func (c Config) withDefaults() Config {
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Timeslice <= 0 {
		c.Timeslice = DefaultTimeslice
	}
	if len(c.Codecs) == 0 {
		c.Codecs = DefaultCodecs
	}
	return c
}

// StartOptions describes one recording.
type StartOptions struct {
	Surface   TextSurface
	Aspect    AspectHint
	WithAudio bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMicrophone sets the audio source. Without one, recordings are
// video only.
func WithMicrophone(m Microphone) Option {
	return func(p *Pipeline) { p.mic = m }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logging.Component(l, "recording") }
}

// WithMetrics sets the metrics the pipeline reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline is the recording state machine: idle, recording, processing and
// back to idle.
type Pipeline struct {
	mu      sync.Mutex
	cfg     Config
	factory RecorderFactory
	sink    ChunkSink
	mic     Microphone
	logger  *slog.Logger
	metrics *metrics.Metrics

	state   types.RecordingState
	session *session
}

// session holds the resources of one recording.
type session struct {
	cancel   context.CancelFunc
	loopDone chan struct{}
	canvas   *Canvas
	stream   *MediaStream
	recorder Recorder
	codec    Codec
	hasAudio bool
	started  time.Time

	errMu    sync.Mutex
	chunkErr error
}

// NewPipeline returns an idle pipeline.
func NewPipeline(cfg Config, factory RecorderFactory, sink ChunkSink, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg.withDefaults(),
		factory: factory,
		sink:    sink,
		logger:  logging.Component(nil, "recording"),
		state:   types.StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.metrics.SetRecordingState(string(p.state), allStates)
	return p
}

// State returns the current state.
func (p *Pipeline) State() types.RecordingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// HasAudio reports whether the active recording captures audio.
func (p *Pipeline) HasAudio() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil && p.session.hasAudio
}

// Codec returns the codec of the active recording.
func (p *Pipeline) Codec() Codec {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ""
	}
	return p.session.codec
}

// Elapsed returns how long the active recording has been running.
func (p *Pipeline) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0
	}
	return time.Since(p.session.started)
}

func (p *Pipeline) setState(s types.RecordingState) {
	p.state = s
	p.metrics.SetRecordingState(string(s), allStates)
}

// Start begins a new recording. An active recording is discarded first.
// Microphone failures fall back to video only; every other failure leaves
// the pipeline idle and returns an error matching types.ErrRecordingStart.
func (p *Pipeline) Start(ctx context.Context, opts StartOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		p.logger.Warn("discarding active recording")
		p.release(p.session, true)
		p.session = nil
		p.setState(types.StateIdle)
	}

	if err := p.sink.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clearing chunks: %w", types.ErrRecordingStart, err)
	}
	if opts.Surface == nil {
		return fmt.Errorf("%w: text surface not found", types.ErrRecordingStart)
	}

	aspect := types.AspectHorizontal
	if opts.Aspect != nil {
		if a, ok := opts.Aspect.AspectRatio(); ok {
			aspect = types.ParseAspectRatio(string(a))
		}
	}
	width, height := aspect.Resolution()

	p.setState(types.StateRecording)
	s, err := p.open(ctx, opts, width, height)
	if err != nil {
		p.setState(types.StateIdle)
		return fmt.Errorf("%w: %w", types.ErrRecordingStart, err)
	}
	p.session = s

	p.logger.Info("recording started",
		slog.String("codec", string(s.codec)),
		slog.String("mime", s.codec.MIMEType()),
		slog.Bool("audio", s.hasAudio),
		slog.Int("width", width),
		slog.Int("height", height))
	return nil
}

func (p *Pipeline) open(ctx context.Context, opts StartOptions, width, height int) (*session, error) {
	canvas, err := NewCanvas(width, height)
	if err != nil {
		return nil, fmt.Errorf("drawing context: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &session{
		cancel:   cancel,
		loopDone: make(chan struct{}),
		canvas:   canvas,
		started:  time.Now(),
	}
	p.renderFrame(canvas, opts.Surface)
	go p.frameLoop(loopCtx, s.loopDone, canvas, opts.Surface)

	s.stream = NewMediaStream(canvas.CaptureStream(p.cfg.FPS))
	if opts.WithAudio {
		if p.mic == nil {
			p.logger.Warn("no microphone configured, recording video only")
		} else if track, err := p.mic.Open(ctx); err != nil {
			p.logger.Warn("microphone unavailable, recording video only", slog.Any("error", err))
		} else {
			s.stream.AddTrack(track)
			s.hasAudio = true
		}
	}

	codec, ok := selectCodec(p.cfg.Codecs, p.factory.Supports)
	if !ok {
		p.release(s, true)
		return nil, types.ErrNoCodec
	}
	s.codec = codec

	rec, err := p.factory.NewRecorder(codec, width, height, p.cfg.FPS)
	if err != nil {
		p.release(s, true)
		return nil, fmt.Errorf("creating recorder: %w", err)
	}
	if err := rec.Start(ctx, s.stream, p.cfg.Timeslice, p.chunkHandler(s)); err != nil {
		p.release(s, true)
		return nil, fmt.Errorf("starting recorder: %w", err)
	}
	s.recorder = rec
	return s, nil
}

// chunkHandler appends every non-empty chunk to the sink.
func (p *Pipeline) chunkHandler(s *session) func([]byte) {
	return func(data []byte) {
		if len(data) == 0 {
			return
		}
		if err := p.sink.AddChunk(context.Background(), data); err != nil {
			p.logger.Error("storing chunk failed", slog.Int("bytes", len(data)), slog.Any("error", err))
			s.errMu.Lock()
			if s.chunkErr == nil {
				s.chunkErr = err
			}
			s.errMu.Unlock()
			return
		}
		p.metrics.ObserveChunk(len(data))
	}
}

func (p *Pipeline) frameLoop(ctx context.Context, done chan<- struct{}, canvas *Canvas, surface TextSurface) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(p.cfg.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.renderFrame(canvas, surface)
		}
	}
}

func (p *Pipeline) renderFrame(canvas *Canvas, surface TextSurface) {
	w, h := surface.Size()
	if _, err := canvas.Render(surface.Text(), w, h); err != nil {
		return
	}
	p.metrics.ObserveFrame()
}

// release stops the frame loop and every track of s. With abort set the
// recorder output is discarded.
func (p *Pipeline) release(s *session, abort bool) {
	s.cancel()
	<-s.loopDone
	if s.recorder != nil && abort {
		s.recorder.Abort()
	}
	if s.stream != nil {
		s.stream.Stop()
	}
	s.canvas.Release()
}

// Stop finishes the recording and returns every chunk joined into one
// blob.
func (p *Pipeline) Stop(ctx context.Context) (*types.Blob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.session
	if s == nil || s.recorder == nil {
		return nil, types.ErrNoActiveRecording
	}
	p.setState(types.StateProcessing)

	s.cancel()
	<-s.loopDone
	stopErr := s.recorder.Stop()

	chunkList, readErr := p.sink.AllChunks(ctx)

	p.release(s, false)
	p.session = nil
	p.setState(types.StateIdle)

	s.errMu.Lock()
	chunkErr := s.chunkErr
	s.errMu.Unlock()

	if err := errors.Join(stopErr, chunkErr, readErr); err != nil {
		return nil, fmt.Errorf("finalizing recording: %w", err)
	}

	blob := &types.Blob{MIMEType: BlobMIMEType, Data: chunks.Concat(chunkList)}
	p.logger.Info("recording stopped",
		slog.Int("chunks", len(chunkList)),
		slog.Int("bytes", blob.Size()),
		slog.Duration("elapsed", time.Since(s.started)))
	return blob, nil
}

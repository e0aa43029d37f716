package recording

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// TrackKind distinguishes video from audio tracks.
type TrackKind string

// Track kinds.
const (
	KindVideo TrackKind = "video"
	KindAudio TrackKind = "audio"
)

// ErrTrackStopped is returned when reading from a stopped track.
var ErrTrackStopped = errors.New("track stopped")

// Track is one live media track. Stop is idempotent.
type Track interface {
	Kind() TrackKind
	Stop()
	Stopped() bool
}

// VideoTrack exposes canvas frames at a fixed rate.
type VideoTrack struct {
	canvas  *Canvas
	fps     int
	stopped atomic.Bool
}

// CaptureStream returns a video track reading frames from c.
func (c *Canvas) CaptureStream(fps int) *VideoTrack {
	return &VideoTrack{canvas: c, fps: fps}
}

// Kind implements Track.
func (v *VideoTrack) Kind() TrackKind { return KindVideo }

// FPS returns the track frame rate.
func (v *VideoTrack) FPS() int { return v.fps }

// Size returns the frame dimensions.
func (v *VideoTrack) Size() (width, height int) { return v.canvas.Size() }

// ReadFrame copies the current frame into dst.
func (v *VideoTrack) ReadFrame(dst []byte) ([]byte, error) {
	if v.stopped.Load() {
		return dst, ErrTrackStopped
	}
	return v.canvas.CopyFrame(dst)
}

// Stop ends the track.
func (v *VideoTrack) Stop() { v.stopped.Store(true) }

// Stopped reports whether Stop was called.
func (v *VideoTrack) Stopped() bool { return v.stopped.Load() }

// AudioFormat describes interleaved signed 16-bit little-endian PCM.
type AudioFormat struct {
	SampleRate int
	Channels   int
}

// AudioTrack is a PCM stream from a capture device.
type AudioTrack struct {
	format  AudioFormat
	r       io.Reader
	once    sync.Once
	stopped atomic.Bool
	onStop  []func()
}

// NewAudioTrack wraps r. onStop runs once when the track stops.
func NewAudioTrack(format AudioFormat, r io.Reader, onStop ...func()) *AudioTrack {
	return &AudioTrack{format: format, r: r, onStop: onStop}
}

// Kind implements Track.
func (a *AudioTrack) Kind() TrackKind { return KindAudio }

// Format returns the PCM format.
func (a *AudioTrack) Format() AudioFormat { return a.format }

// Read reads PCM bytes. It returns io.EOF once the track is stopped.
func (a *AudioTrack) Read(p []byte) (int, error) {
	if a.stopped.Load() {
		return 0, io.EOF
	}
	return a.r.Read(p)
}

// Stop ends the track and runs its release hooks.
func (a *AudioTrack) Stop() {
	a.once.Do(func() {
		a.stopped.Store(true)
		for _, fn := range a.onStop {
			fn()
		}
	})
}

// Stopped reports whether Stop was called.
func (a *AudioTrack) Stopped() bool { return a.stopped.Load() }

// MediaStream combines one video track with optional audio tracks.
type MediaStream struct {
	mu     sync.Mutex
	tracks []Track
}

// NewMediaStream returns a stream over tracks.
func NewMediaStream(tracks ...Track) *MediaStream {
	return &MediaStream{tracks: tracks}
}

// AddTrack appends a track.
func (m *MediaStream) AddTrack(t Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, t)
}

// Tracks returns a copy of the track list.
func (m *MediaStream) Tracks() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Track(nil), m.tracks...)
}

// VideoTrack returns the first video track, or nil.
func (m *MediaStream) VideoTrack() *VideoTrack {
	for _, t := range m.Tracks() {
		if v, ok := t.(*VideoTrack); ok {
			return v
		}
	}
	return nil
}

// AudioTrack returns the first audio track, or nil.
func (m *MediaStream) AudioTrack() *AudioTrack {
	for _, t := range m.Tracks() {
		if a, ok := t.(*AudioTrack); ok {
			return a
		}
	}
	return nil
}

// Stop stops every track.
func (m *MediaStream) Stop() {
	for _, t := range m.Tracks() {
		t.Stop()
	}
}

package recording

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSink writes 16-bit PCM to a WAV file.
type WAVSink struct {
	mu     sync.Mutex
	f      *os.File
	enc    *wav.Encoder
	format AudioFormat
	closed bool
}

// NewWAVSink creates path and prepares a WAV encoder for format.
func NewWAVSink(path string, format AudioFormat) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &WAVSink{
		f:      f,
		enc:    wav.NewEncoder(f, format.SampleRate, 16, format.Channels, 1),
		format: format,
	}, nil
}

// Write encodes little-endian 16-bit samples. A trailing odd byte is
// ignored.
func (w *WAVSink) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, os.ErrClosed
	}
	ints := make([]int, len(p)/2)
	for i := range ints {
		ints[i] = int(int16(binary.LittleEndian.Uint16(p[2*i:])))
	}
	buf := &audio.IntBuffer{
		Data:           ints,
		Format:         &audio.Format{SampleRate: w.format.SampleRate, NumChannels: w.format.Channels},
		SourceBitDepth: 16,
	}
	if err := w.enc.Write(buf); err != nil {
		return 0, fmt.Errorf("failed to write to WAV encoder: %w", err)
	}
	return len(p), nil
}

// Close finalizes the WAV header and closes the file.
func (w *WAVSink) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	encErr := w.enc.Close()
	fileErr := w.f.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}

// TeeWAV returns a track that copies everything read from track into a
// WAV file at path. Stopping the returned track stops track and closes
// the file.
func TeeWAV(track *AudioTrack, path string) (*AudioTrack, *WAVSink, error) {
	sink, err := NewWAVSink(path, track.Format())
	if err != nil {
		return nil, nil, err
	}
	tee := NewAudioTrack(track.Format(), io.TeeReader(track, sink), func() {
		track.Stop()
		_ = sink.Close()
	})
	return tee, sink, nil
}

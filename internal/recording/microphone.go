package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"

	"github.com/mesh-intelligence/notereel/internal/logging"
)

// Microphone opens an audio capture track.
type Microphone interface {
	Open(ctx context.Context) (*AudioTrack, error)
}

// Capture defaults: 48 kHz mono, two seconds of buffering.
const (
	DefaultSampleRate = 48000
	DefaultChannels   = 1
	bytesPerSample    = 2
	bufferSeconds     = 2
	pollInterval      = 5 * time.Millisecond
)

// MalgoMicrophone captures from the default input device.
type MalgoMicrophone struct {
	format AudioFormat
	logger *slog.Logger
}

// NewMalgoMicrophone returns a microphone capturing 16-bit PCM at the
// default rate.
func NewMalgoMicrophone(logger *slog.Logger) *MalgoMicrophone {
	return &MalgoMicrophone{
		format: AudioFormat{SampleRate: DefaultSampleRate, Channels: DefaultChannels},
		logger: logging.Component(logger, "microphone"),
	}
}

// Open starts the capture device. Samples flow through a ring buffer; when
// the reader falls behind, new samples are dropped.
func (m *MalgoMicrophone) Open(ctx context.Context) (*AudioTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.logger.Debug("malgo", slog.String("message", message))
	})
	if err != nil {
		return nil, fmt.Errorf("context init failed: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(m.format.Channels)
	deviceConfig.SampleRate = uint32(m.format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	rb := ringbuffer.New(m.format.SampleRate * m.format.Channels * bytesPerSample * bufferSeconds)
	var dropped atomic.Int64

	onReceiveFrames := func(_, pSamples []byte, _ uint32) {
		if _, err := rb.Write(pSamples); err != nil {
			if errors.Is(err, ringbuffer.ErrIsFull) {
				dropped.Add(int64(len(pSamples)))
			}
		}
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onReceiveFrames})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("device init failed: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("device start failed: %w", err)
	}

	reader := &ringReader{rb: rb}
	track := NewAudioTrack(m.format, reader, func() {
		reader.stopped.Store(true)
		_ = device.Stop()
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		if n := dropped.Load(); n > 0 {
			m.logger.Warn("audio samples dropped", slog.Int64("bytes", n))
		}
	})
	m.logger.Info("microphone opened", slog.Int("sample_rate", m.format.SampleRate))
	return track, nil
}

// ringReader turns the non-blocking ring buffer into a blocking reader.
type ringReader struct {
	rb      *ringbuffer.RingBuffer
	stopped atomic.Bool
}

func (r *ringReader) Read(p []byte) (int, error) {
	for {
		n, err := r.rb.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
			return 0, err
		}
		if r.stopped.Load() {
			return 0, io.EOF
		}
		time.Sleep(pollInterval)
	}
}

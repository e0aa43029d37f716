package recording

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeeWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768}
	var pcm bytes.Buffer
	for _, s := range samples {
		require.NoError(t, binary.Write(&pcm, binary.LittleEndian, s))
	}

	format := AudioFormat{SampleRate: 16000, Channels: 1}
	track := NewAudioTrack(format, bytes.NewReader(pcm.Bytes()))
	path := filepath.Join(t.TempDir(), "narration.wav")

	tee, sink, err := TeeWAV(track, path)
	require.NoError(t, err)
	require.NotNil(t, sink)

	read, err := io.ReadAll(tee)
	require.NoError(t, err)
	assert.Equal(t, pcm.Bytes(), read)

	tee.Stop()
	assert.True(t, track.Stopped())
	assert.NoError(t, sink.Close(), "second close is a no-op")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 16000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)

	want := make([]int, len(samples))
	for i, s := range samples {
		want[i] = int(s)
	}
	assert.Equal(t, want, buf.Data)
}

func TestWAVSink_WriteAfterClose(t *testing.T) {
	sink, err := NewWAVSink(filepath.Join(t.TempDir(), "a.wav"), AudioFormat{SampleRate: 8000, Channels: 1})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	_, err = sink.Write([]byte{0, 0})
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestNewWAVSink_BadPath(t *testing.T) {
	_, err := NewWAVSink(filepath.Join(t.TempDir(), "missing", "a.wav"), AudioFormat{SampleRate: 8000, Channels: 1})
	assert.Error(t, err)
}

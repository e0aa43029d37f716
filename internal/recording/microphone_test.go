package recording

import (
	"io"
	"testing"
	"time"

	"github.com/smallnest/ringbuffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingReader(t *testing.T) {
	rb := ringbuffer.New(64)
	r := &ringReader{rb: rb}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = rb.Write([]byte{1, 2, 3})
	}()

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf[:n])

	_, _ = rb.Write([]byte{4})
	r.stopped.Store(true)
	n, err = r.Read(buf)
	require.NoError(t, err, "buffered samples drain before EOF")
	assert.Equal(t, []byte{4}, buf[:n])

	_, err = r.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewMalgoMicrophone_Format(t *testing.T) {
	m := NewMalgoMicrophone(nil)
	assert.Equal(t, AudioFormat{SampleRate: DefaultSampleRate, Channels: DefaultChannels}, m.format)
}

package recording

import (
	"context"
	"sync"
	"time"
)

// Recorder encodes a media stream and emits container bytes in chunks.
type Recorder interface {
	// Start begins encoding stream, calling onChunk with the bytes produced
	// in each timeslice. onChunk is never called concurrently.
	Start(ctx context.Context, stream *MediaStream, timeslice time.Duration, onChunk func([]byte)) error
	// Stop ends encoding and returns after the final chunk was delivered.
	Stop() error
	// Abort ends encoding and discards pending output.
	Abort()
}

// RecorderFactory creates recorders and reports codec support.
type RecorderFactory interface {
	Supports(codec Codec) bool
	NewRecorder(codec Codec, width, height, fps int) (Recorder, error)
}

// chunker buffers written bytes and hands them out one timeslice at a time.
type chunker struct {
	mu      sync.Mutex
	buf     []byte
	emitMu  sync.Mutex
	onChunk func([]byte)
	discard bool
}

func newChunker(onChunk func([]byte)) *chunker {
	return &chunker{onChunk: onChunk}
}

// Write implements io.Writer.
func (c *chunker) Write(p []byte) (int, error) {
	c.mu.Lock()
	if !c.discard {
		c.buf = append(c.buf, p...)
	}
	c.mu.Unlock()
	return len(p), nil
}

// Flush emits buffered bytes, if any, as one chunk.
func (c *chunker) Flush() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	data := c.buf
	c.buf = nil
	discard := c.discard
	c.mu.Unlock()

	if len(data) == 0 || discard {
		return
	}
	c.onChunk(data)
}

// Discard drops buffered and future bytes.
func (c *chunker) Discard() {
	c.mu.Lock()
	c.discard = true
	c.buf = nil
	c.mu.Unlock()
}

// run flushes every timeslice until ctx is done.
func (c *chunker) run(ctx context.Context, timeslice time.Duration) {
	ticker := time.NewTicker(timeslice)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}

package recording

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/notereel/internal/logging"
)

// DefaultFFmpegPath is used when no path is configured.
const DefaultFFmpegPath = "ffmpeg"

var codecEncoders = map[Codec]string{
	CodecH264: "libx264",
	CodecVP8:  "libvpx",
	CodecVP9:  "libvpx-vp9",
}

// FFmpegFactory creates recorders that pipe frames through an ffmpeg
// process.
type FFmpegFactory struct {
	path   string
	logger *slog.Logger

	once     sync.Once
	encoders map[string]bool
}

// NewFFmpegFactory returns a factory using the ffmpeg binary at path.
func NewFFmpegFactory(path string, logger *slog.Logger) *FFmpegFactory {
	if path == "" {
		path = DefaultFFmpegPath
	}
	return &FFmpegFactory{path: path, logger: logging.Component(logger, "ffmpeg")}
}

// Supports reports whether the ffmpeg build has an encoder for codec.
func (f *FFmpegFactory) Supports(codec Codec) bool {
	f.once.Do(func() {
		out, err := exec.Command(f.path, "-hide_banner", "-encoders").Output()
		if err != nil {
			f.logger.Warn("ffmpeg encoder probe failed", slog.String("path", f.path), slog.Any("error", err))
			f.encoders = map[string]bool{}
			return
		}
		f.encoders = parseEncoders(out)
	})
	enc, ok := codecEncoders[codec]
	return ok && f.encoders[enc]
}

// NewRecorder implements RecorderFactory.
func (f *FFmpegFactory) NewRecorder(codec Codec, width, height, fps int) (Recorder, error) {
	if _, ok := codecEncoders[codec]; !ok {
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
	return &FFmpegRecorder{
		path:   f.path,
		codec:  codec,
		width:  width,
		height: height,
		fps:    fps,
		logger: f.logger,
	}, nil
}

// parseEncoders reads the encoder names out of `ffmpeg -encoders`. Each
// encoder line starts with a six character flag field.
func parseEncoders(out []byte) map[string]bool {
	encoders := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		switch fields[0][0] {
		case 'V', 'A', 'S':
		default:
			continue
		}
		if fields[1] == "=" {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}

// ffmpegArgs builds the command line for one recording. Video arrives as
// raw RGBA on stdin, PCM audio on fd 3 and the container leaves on stdout.
func ffmpegArgs(codec Codec, width, height, fps int, audio *AudioFormat) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.Itoa(fps),
		"-i", "pipe:0",
	}
	if audio != nil {
		args = append(args,
			"-f", "s16le",
			"-ar", strconv.Itoa(audio.SampleRate),
			"-ac", strconv.Itoa(audio.Channels),
			"-i", "pipe:3",
		)
	}

	args = append(args, "-c:v", codecEncoders[codec], "-pix_fmt", "yuv420p")
	switch codec {
	case CodecH264:
		args = append(args, "-preset", "veryfast", "-tune", "stillimage")
	default:
		args = append(args, "-deadline", "realtime", "-b:v", "2M")
	}
	if audio != nil {
		args = append(args, "-c:a", "libopus")
	}

	// The webm muxer only accepts VP8/VP9; h264 goes into plain matroska.
	format := "webm"
	if codec == CodecH264 {
		format = "matroska"
	}
	return append(args, "-f", format, "pipe:1")
}

// FFmpegRecorder encodes one media stream with an ffmpeg child process.
type FFmpegRecorder struct {
	path   string
	codec  Codec
	width  int
	height int
	fps    int
	logger *slog.Logger

	cmd        *exec.Cmd
	cancel     context.CancelFunc
	stdin      io.WriteCloser
	audioW     *os.File
	chunks     *chunker
	stderr     bytes.Buffer
	feedCancel context.CancelFunc
	feedDone   chan struct{}
	copyDone   chan error
	tickCancel context.CancelFunc
	tickDone   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// Start implements Recorder.
func (r *FFmpegRecorder) Start(ctx context.Context, stream *MediaStream, timeslice time.Duration, onChunk func([]byte)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	video := stream.VideoTrack()
	if video == nil {
		return errors.New("stream has no video track")
	}
	audio := stream.AudioTrack()

	var format *AudioFormat
	if audio != nil {
		f := audio.Format()
		format = &f
	}

	runCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(runCtx, r.path, ffmpegArgs(r.codec, r.width, r.height, r.fps, format)...)
	cmd.Stderr = &r.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create ffmpeg stdout: %w", err)
	}

	var audioR *os.File
	if audio != nil {
		audioR, r.audioW, err = os.Pipe()
		if err != nil {
			cancel()
			return fmt.Errorf("create audio pipe: %w", err)
		}
		cmd.ExtraFiles = []*os.File{audioR}
	}

	if err := cmd.Start(); err != nil {
		cancel()
		if audioR != nil {
			audioR.Close()
			r.audioW.Close()
		}
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	if audioR != nil {
		audioR.Close()
	}

	r.cmd = cmd
	r.cancel = cancel
	r.stdin = stdin
	r.chunks = newChunker(onChunk)

	r.copyDone = make(chan error, 1)
	go func() {
		_, err := io.Copy(r.chunks, stdout)
		r.copyDone <- err
	}()

	tickCtx, tickCancel := context.WithCancel(context.Background())
	r.tickCancel = tickCancel
	r.tickDone = make(chan struct{})
	go func() {
		defer close(r.tickDone)
		r.chunks.run(tickCtx, timeslice)
	}()

	feedCtx, feedCancel := context.WithCancel(context.Background())
	r.feedCancel = feedCancel
	r.feedDone = make(chan struct{})
	go r.feedVideo(feedCtx, video)
	if audio != nil {
		go r.feedAudio(audio)
	}

	r.logger.Debug("ffmpeg started",
		slog.String("codec", string(r.codec)),
		slog.Bool("audio", audio != nil),
		slog.Int("pid", cmd.Process.Pid))
	return nil
}

func (r *FFmpegRecorder) feedVideo(ctx context.Context, video *VideoTrack) {
	defer close(r.feedDone)

	ticker := time.NewTicker(time.Second / time.Duration(r.fps))
	defer ticker.Stop()

	var frame []byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		var err error
		frame, err = video.ReadFrame(frame)
		if err != nil {
			return
		}
		if _, err := r.stdin.Write(frame); err != nil {
			r.logger.Debug("frame write failed", slog.Any("error", err))
			return
		}
	}
}

// feedAudio copies PCM until the track stops or the pipe closes.
func (r *FFmpegRecorder) feedAudio(audio *AudioTrack) {
	if _, err := io.Copy(r.audioW, audio); err != nil && !errors.Is(err, os.ErrClosed) {
		r.logger.Debug("audio copy ended", slog.Any("error", err))
	}
}

// Stop implements Recorder. It closes the inputs, waits for ffmpeg to drain
// and delivers the last chunk.
func (r *FFmpegRecorder) Stop() error {
	r.stopOnce.Do(func() {
		r.stopErr = r.shutdown()
	})
	return r.stopErr
}

// Abort implements Recorder.
func (r *FFmpegRecorder) Abort() {
	r.stopOnce.Do(func() {
		if r.chunks != nil {
			r.chunks.Discard()
		}
		if r.cancel != nil {
			r.cancel()
		}
		_ = r.shutdown()
	})
}

func (r *FFmpegRecorder) shutdown() error {
	if r.cmd == nil {
		return nil
	}

	r.feedCancel()
	<-r.feedDone
	_ = r.stdin.Close()
	if r.audioW != nil {
		_ = r.audioW.Close()
	}

	copyErr := <-r.copyDone
	waitErr := r.cmd.Wait()

	r.tickCancel()
	<-r.tickDone
	r.chunks.Flush()
	r.cancel()

	if waitErr != nil {
		return fmt.Errorf("ffmpeg exited: %w: %s", waitErr, strings.TrimSpace(r.stderr.String()))
	}
	if copyErr != nil {
		return fmt.Errorf("reading ffmpeg output: %w", copyErr)
	}
	return nil
}

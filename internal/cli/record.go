package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/internal/export"
	"github.com/mesh-intelligence/notereel/internal/recording"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

type recordOptions struct {
	vertical bool
	audio    bool
	duration time.Duration
	format   string
	filename string
	watch    string
	language string
}

// recordResult is the JSON output of the record command.
type recordResult struct {
	Recording *types.Recording `json:"recording"`
	Export    *export.Result   `json:"export"`
	Codec     string           `json:"codec"`
	Narration string           `json:"narration,omitempty"`
}

func newRecordCmd(r *runner) *cobra.Command {
	var o recordOptions
	cmd := &cobra.Command{
		Use:   "record <note-id>",
		Short: "Record the text of a note as video",
		Long: "Record renders the note text into video frames until the duration elapses,\n" +
			"the recording ceiling is reached or the command is interrupted, then\n" +
			"exports the video and attaches it to the note.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !types.Language(o.language).Valid() {
				return userError(fmt.Errorf("%w: language %q", types.ErrInvalidArgument, o.language))
			}
			if f := types.ExportFormat(o.format); !f.IsVideoFormat() {
				return userError(fmt.Errorf("%w: %q for recordings", types.ErrUnsupportedFormat, o.format))
			}
			return r.withApp(cmd, func(a *App) error {
				return r.record(cmd, a, args[0], o)
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.vertical, "vertical", false, "record 1080x1920 instead of 1920x1080")
	f.BoolVar(&o.audio, "audio", false, "capture microphone narration")
	f.DurationVar(&o.duration, "duration", 0, "stop after this long (default and maximum: recording.max_duration)")
	f.StringVar(&o.format, "format", string(types.FormatWebM), "webm or mp4")
	f.StringVar(&o.filename, "filename", "", "base file name (default: note title)")
	f.StringVar(&o.watch, "watch", "", "render this file and follow its edits instead of the stored content")
	f.StringVar(&o.language, "language", "", "narration language: chinese, english or both")
	return cmd
}

func (r *runner) record(cmd *cobra.Command, a *App, noteID string, o recordOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	note, err := a.Notes.GetNote(ctx, noteID)
	if err != nil {
		return err
	}

	var surface recording.TextSurface = recording.NewStaticSurface(note.Content)
	if o.watch != "" {
		fs, err := recording.NewFileSurface(ctx, o.watch, a.Logger)
		if err != nil {
			return userError(err)
		}
		defer fs.Close()
		surface = fs
	}

	base := o.filename
	if base == "" {
		base = export.DefaultFilename(note)
	}

	opts := []recording.Option{
		recording.WithLogger(a.Logger),
		recording.WithMetrics(a.Metrics),
	}
	var narration string
	if o.audio {
		mic := r.newMic(a)
		if a.Settings.NarrationWAV {
			narration = filepath.Join(a.Settings.ExportDir,
				export.FitName(export.Sanitize(base), "."+export.FilenameDate(time.Now())+".wav"))
			if err := os.MkdirAll(a.Settings.ExportDir, 0o755); err != nil {
				return sysError(fmt.Errorf("create export directory: %w", err))
			}
			mic = &narrationMic{inner: mic, path: narration, logger: a.Logger}
		}
		opts = append(opts, recording.WithMicrophone(mic))
	}

	pipeline := recording.NewPipeline(recording.Config{
		FPS:       a.Settings.FPS,
		Timeslice: a.Settings.Timeslice,
	}, r.newFactory(a), a.Chunks, opts...)

	aspect := recording.FixedAspect("")
	if o.vertical {
		aspect = recording.FixedAspect(types.AspectVertical)
	}
	if err := pipeline.Start(ctx, recording.StartOptions{Surface: surface, Aspect: aspect, WithAudio: o.audio}); err != nil {
		return sysError(err)
	}
	codec := pipeline.Codec()
	hasAudio := pipeline.HasAudio()
	if !hasAudio {
		narration = ""
	}

	limit := a.Settings.MaxDuration
	if o.duration > 0 && o.duration < limit {
		limit = o.duration
	}
	r.waitRecording(ctx, cmd.ErrOrStderr(), pipeline, limit)
	elapsed := pipeline.Elapsed()

	// Finalize even when interrupted.
	finishCtx := context.WithoutCancel(ctx)
	blob, err := pipeline.Stop(finishCtx)
	if err != nil {
		return sysError(err)
	}

	res, err := a.Exporter.ExportRecording(finishCtx, blob, types.ExportOptions{
		Format:      types.ExportFormat(o.format),
		AspectRatio: types.ParseAspectRatio(string(aspect)),
		Filename:    base,
	})
	if err != nil {
		return sysError(err)
	}
	if err := a.Chunks.Clear(finishCtx); err != nil {
		a.Logger.Warn("clearing chunks failed", slog.Any("error", err))
	}

	rec, err := a.Notes.AddRecording(finishCtx, note.ID, elapsed, res.Path, hasAudio, types.Language(o.language))
	if err != nil {
		return err
	}

	result := recordResult{Recording: rec, Export: res, Codec: string(codec), Narration: narration}
	return r.emit(cmd, result, func(w io.Writer) {
		fmt.Fprintf(w, "Recorded %s (%s, %s, %d bytes)\n", res.Path, rec.Duration, codec, res.Size)
		if narration != "" {
			fmt.Fprintf(w, "Narration %s\n", narration)
		}
	})
}

// waitRecording blocks until limit elapses or ctx is done, reporting
// progress once per second.
func (r *runner) waitRecording(ctx context.Context, w io.Writer, p *recording.Pipeline, limit time.Duration) {
	deadline := time.NewTimer(limit)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			if !r.flags.jsonMode {
				fmt.Fprintf(w, "recording %s / %s\n", p.Elapsed().Truncate(time.Second), limit)
			}
		}
	}
}

// narrationMic saves the microphone track to a WAV file while it is being
// recorded.
type narrationMic struct {
	inner  recording.Microphone
	path   string
	logger *slog.Logger
}

func (m *narrationMic) Open(ctx context.Context) (*recording.AudioTrack, error) {
	track, err := m.inner.Open(ctx)
	if err != nil {
		return nil, err
	}
	tee, _, err := recording.TeeWAV(track, m.path)
	if err != nil {
		m.logger.Warn("narration file unavailable", slog.String("path", m.path), slog.Any("error", err))
		return track, nil
	}
	return tee, nil
}

var _ recording.Microphone = (*narrationMic)(nil)

// Package export writes notes and recordings to files with versioned names.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/notereel/internal/logging"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Default base names.
const (
	UntitledBase  = "Untitled"
	RecordingBase = "Recording"
	NoteBase      = "Note"
)

// Note export MIME type. Content is written as is for every note format.
const TextMIMEType = "text/plain"

// Result describes one finished export.
type Result struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	Version  int    `json:"version"`
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logging.Component(l, "export") }
}

// Exporter assigns versioned file names and hands blobs to a Downloader.
// Version counters live for the lifetime of the Exporter and are shared by
// note and recording exports.
type Exporter struct {
	mu       sync.Mutex
	versions map[string]int
	dl       Downloader
	logger   *slog.Logger
}

// NewExporter returns an Exporter delivering through dl.
func NewExporter(dl Downloader, opts ...Option) *Exporter {
	e := &Exporter{
		versions: make(map[string]int),
		dl:       dl,
		logger:   logging.Component(nil, "export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// nextVersion bumps and returns the counter for base.
func (e *Exporter) nextVersion(base string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.versions[base]++
	return e.versions[base]
}

// ExportNote writes the note content as text/plain under
// <title>.v<N>.<format>.
func (e *Exporter) ExportNote(ctx context.Context, note *types.Note, format types.ExportFormat) (*Result, error) {
	if note == nil {
		return nil, fmt.Errorf("%w: nil note", types.ErrInvalidArgument)
	}
	if !format.IsNoteFormat() {
		return nil, fmt.Errorf("%w: %q for notes", types.ErrUnsupportedFormat, format)
	}

	title := note.Title
	if title == "" {
		title = UntitledBase
	}
	blob := &types.Blob{MIMEType: TextMIMEType, Data: []byte(note.Content)}
	return e.export(ctx, Sanitize(title), string(format), blob)
}

// ExportRecording writes blob under <filename>.v<N>.<ext>, re-tagged with
// the container MIME type of the requested format. Anything but mp4 is
// exported as webm.
func (e *Exporter) ExportRecording(ctx context.Context, blob *types.Blob, opts types.ExportOptions) (*Result, error) {
	if blob == nil {
		return nil, fmt.Errorf("%w: nil recording", types.ErrInvalidArgument)
	}

	ext, mime := "webm", "video/webm"
	if opts.Format == types.FormatMP4 {
		ext, mime = "mp4", "video/mp4"
	}
	base := RecordingBase
	if opts.Filename != "" {
		base = Sanitize(opts.Filename)
	}
	return e.export(ctx, base, ext, &types.Blob{MIMEType: mime, Data: blob.Data})
}

func (e *Exporter) export(ctx context.Context, base, ext string, blob *types.Blob) (*Result, error) {
	version := e.nextVersion(base)
	filename := FitName(base, fmt.Sprintf(".v%d.%s", version, ext))

	path, err := e.dl.Download(ctx, blob, filename)
	if err != nil {
		e.logger.Error("export failed", slog.String("filename", filename), slog.Any("error", err))
		return nil, fmt.Errorf("exporting %s: %w", filename, err)
	}
	e.logger.Info("exported",
		slog.String("filename", filename),
		slog.String("path", path),
		slog.String("mime", blob.MIMEType),
		slog.Int("bytes", blob.Size()))
	return &Result{
		Filename: filename,
		Path:     path,
		MIMEType: blob.MIMEType,
		Size:     blob.Size(),
		Version:  version,
	}, nil
}

// DefaultFilename returns the export base name for note, or "Note" when
// there is none.
func DefaultFilename(note *types.Note) string {
	if note == nil {
		return NoteBase
	}
	if note.Title == "" {
		return Sanitize(UntitledBase)
	}
	return Sanitize(note.Title)
}

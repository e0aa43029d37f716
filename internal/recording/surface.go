package recording

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/notereel/internal/logging"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// TextSurface is the live editor the frame loop reads from.
type TextSurface interface {
	// Text returns the current content.
	Text() string
	// Size returns the on-screen pixel size of the editor.
	Size() (width, height int)
}

// AspectHint reports the aspect ratio chosen in the export view, if any.
type AspectHint interface {
	AspectRatio() (types.AspectRatio, bool)
}

// FixedAspect is an AspectHint that always reports one ratio.
type FixedAspect types.AspectRatio

// AspectRatio implements AspectHint.
func (f FixedAspect) AspectRatio() (types.AspectRatio, bool) {
	return types.AspectRatio(f), f != ""
}

// Default editor size used when a surface has no real layout.
const (
	DefaultSurfaceWidth  = 1280
	DefaultSurfaceHeight = 720
)

// StaticSurface is a surface with text that can be replaced explicitly.
type StaticSurface struct {
	mu     sync.RWMutex
	text   string
	width  int
	height int
}

// NewStaticSurface returns a surface showing text.
func NewStaticSurface(text string) *StaticSurface {
	return &StaticSurface{text: text, width: DefaultSurfaceWidth, height: DefaultSurfaceHeight}
}

// Text implements TextSurface.
func (s *StaticSurface) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Size implements TextSurface.
func (s *StaticSurface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// SetText replaces the content.
func (s *StaticSurface) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// SetSize changes the reported editor size.
func (s *StaticSurface) SetSize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// FileSurface mirrors a text file, reloading it whenever it is written.
type FileSurface struct {
	*StaticSurface
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
	once    sync.Once
}

// NewFileSurface loads path and starts watching it until ctx is done or
// Close is called.
func NewFileSurface(ctx context.Context, path string, logger *slog.Logger) (*FileSurface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	fs := &FileSurface{
		StaticSurface: NewStaticSurface(string(data)),
		path:          filepath.Clean(path),
		watcher:       watcher,
		logger:        logging.Component(logger, "surface"),
		done:          make(chan struct{}),
	}
	go fs.run(ctx)
	return fs, nil
}

func (fs *FileSurface) run(ctx context.Context) {
	defer close(fs.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fs.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fs.reload()
			}
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (fs *FileSurface) reload() {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		fs.logger.Debug("reload failed", slog.String("path", fs.path), slog.Any("error", err))
		return
	}
	fs.SetText(string(data))
}

// Close stops watching the file.
func (fs *FileSurface) Close() error {
	var err error
	fs.once.Do(func() {
		err = fs.watcher.Close()
		<-fs.done
	})
	return err
}

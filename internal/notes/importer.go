package notes

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Importer creates notes from text files.
type Importer struct {
	svc    *Service
	logger *slog.Logger
}

// NewImporter returns an importer that writes through svc.
func NewImporter(svc *Service) *Importer {
	return &Importer{svc: svc, logger: svc.logger.With(slog.String("step", "import"))}
}

// Import creates one note per file in fsys matching pattern. The note title
// is the file name without its extension. It stops at the first failure and
// returns the notes created so far.
func (im *Importer) Import(ctx context.Context, fsys fs.FS, pattern string, folderID *string) ([]*types.Note, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", types.ErrInvalidArgument, pattern)
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}

	var created []*types.Note
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return created, fmt.Errorf("reading %s: %w", name, err)
		}
		base := path.Base(name)
		title := strings.TrimSuffix(base, path.Ext(base))
		note, err := im.svc.CreateNote(ctx, title, string(data), folderID)
		if err != nil {
			return created, fmt.Errorf("importing %s: %w", name, err)
		}
		im.logger.Debug("imported note", slog.String("file", name), slog.String("id", note.ID))
		created = append(created, note)
	}
	return created, nil
}

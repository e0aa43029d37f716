package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Downloader delivers an exported blob under a file name and returns where
// it ended up.
type Downloader interface {
	Download(ctx context.Context, blob *types.Blob, filename string) (string, error)
}

// DirDownloader saves blobs into a directory.
type DirDownloader struct {
	mu  sync.Mutex
	dir string
}

// NewDirDownloader returns a downloader writing into dir. The directory is
// created on first use.
func NewDirDownloader(dir string) *DirDownloader {
	return &DirDownloader{dir: dir}
}

// Dir returns the target directory.
func (d *DirDownloader) Dir() string { return d.dir }

// Download writes blob to a temp file in the target directory and renames
// it into place. Unsafe characters in filename are replaced but the name
// is never shortened; one over MaxFilenameLength bytes is rejected. An
// existing file is never replaced; a numeric suffix is added instead.
func (d *DirDownloader) Download(ctx context.Context, blob *types.Blob, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if blob == nil {
		return "", fmt.Errorf("%w: nil blob", types.ErrInvalidArgument)
	}
	name := replaceUnsafe(filename)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: file name %q", types.ErrInvalidArgument, filename)
	}
	if len(name) > MaxFilenameLength {
		return "", fmt.Errorf("%w: file name is %d bytes, limit %d", types.ErrInvalidArgument, len(name), MaxFilenameLength)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	target, err := freePath(d.dir, name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return target, nil
}

// freePath returns dir/name, or dir/stem-N.ext for the first N that is not
// taken. The stem is shortened when the suffix would overflow the name
// limit.
func freePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 1; ; n++ {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
		candidate = FitName(stem, "-"+strconv.Itoa(n)+ext)
	}
}

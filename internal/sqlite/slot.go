package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Slot is a named key-value persistence slot holding encoded snapshots.
type Slot interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put replaces the value under key. A capacity rejection returns an
	// error matching types.ErrQuotaExceeded.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// FileSlot stores one file per key in a directory.
type FileSlot struct {
	dir   string
	quota int64
}

// NewFileSlot returns a slot rooted at dir. A quota of zero or less
// disables the size check.
func NewFileSlot(dir string, quota int64) *FileSlot {
	return &FileSlot{dir: dir, quota: quota}
}

func (s *FileSlot) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: slot key %q", types.ErrInvalidArgument, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads the file for key.
func (s *FileSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return data, true, nil
}

// Put atomically replaces the file for key.
func (s *FileSlot) Put(ctx context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if s.quota > 0 && int64(len(value)) > s.quota {
		return fmt.Errorf("%w (%d bytes over a %d byte limit)", types.ErrQuotaExceeded, len(value), s.quota)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating slot dir: %w", err)
	}
	if err := writeFileAtomic(p, value); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("%w: %w", types.ErrQuotaExceeded, err)
		}
		return err
	}
	return nil
}

// Delete removes the file for key.
func (s *FileSlot) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

// MemorySlot keeps values in process memory. The quota bounds the total
// size of all stored values.
type MemorySlot struct {
	mu     sync.Mutex
	quota  int64
	values map[string][]byte
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot(quota int64) *MemorySlot {
	return &MemorySlot{quota: quota, values: make(map[string][]byte)}
}

// Get returns a copy of the value under key.
func (s *MemorySlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value under key.
func (s *MemorySlot) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		total := int64(len(value))
		for k, v := range s.values {
			if k != key {
				total += int64(len(v))
			}
		}
		if total > s.quota {
			return fmt.Errorf("%w (%d bytes over a %d byte limit)", types.ErrQuotaExceeded, total, s.quota)
		}
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (s *MemorySlot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

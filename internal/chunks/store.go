// Package chunks buffers the binary chunks of an in-progress recording in
// a SQLite file so long recordings do not have to fit in memory.
package chunks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// FileName is the chunk database file inside the data directory.
const FileName = "chunks.db"

const createChunks = `CREATE TABLE IF NOT EXISTS chunks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    data BLOB NOT NULL
);`

// Store is an ordered, append-only chunk buffer. Every method initializes
// the store on first use.
type Store struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// NewStore returns a store backed by FileName in dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Init opens the database and creates the table. It is idempotent.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *Store) initLocked(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating chunk dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening chunk store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createChunks); err != nil {
		db.Close()
		return fmt.Errorf("creating chunk table: %w", err)
	}
	s.db = db
	return nil
}

// AddChunk appends data.
func (s *Store) AddChunk(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO chunks (data) VALUES (?)`, data); err != nil {
		return fmt.Errorf("adding chunk: %w", err)
	}
	return nil
}

// AllChunks returns every chunk in insertion order.
func (s *Store) AllChunks(ctx context.Context) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM chunks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Clear removes every chunk.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// Close releases the database. The store reopens on next use.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Concat joins chunks into one contiguous buffer.
func Concat(chunks [][]byte) []byte {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// Package sqlite implements the persistent note store: an in-memory SQLite
// database that is re-serialized into a persistence slot after every write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	msqlite "modernc.org/sqlite"

	"github.com/mesh-intelligence/notereel/internal/logging"
	"github.com/mesh-intelligence/notereel/internal/metrics"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Statement is one SQL statement with positional parameters.
type Statement struct {
	SQL    string
	Params []any
}

// Stmt builds a Statement.
func Stmt(query string, params ...any) Statement {
	return Statement{SQL: query, Params: params}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = logging.Component(l, "store") }
}

// WithMetrics sets the metrics the store reports saves to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store owns one in-memory database and the slot its snapshots live in.
type Store struct {
	mu      sync.Mutex
	cfg     types.Config
	slot    Slot
	db      *sql.DB
	conn    *sql.Conn
	closed  bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewStore creates a store. Call Initialize before use.
func NewStore(cfg types.Config, slot Slot, opts ...Option) *Store {
	s := &Store{
		cfg:    cfg,
		slot:   slot,
		logger: logging.Component(nil, "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize opens the engine and loads the last snapshot from the slot,
// or creates the schema and saves it when the slot is empty. Calling it
// on an initialized store does nothing.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}
	if s.closed {
		return fmt.Errorf("%w: store is closed", types.ErrStoreInitialization)
	}
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreInitialization, err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("%w: open engine: %w", types.ErrStoreInitialization, err)
	}
	// Every :memory: connection is a separate database; pin one.
	db.SetMaxOpenConns(1)
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: open connection: %w", types.ErrStoreInitialization, err)
	}

	if err := s.load(ctx, conn); err != nil {
		conn.Close()
		db.Close()
		return fmt.Errorf("%w: %w", types.ErrStoreInitialization, err)
	}

	s.db = db
	s.conn = conn
	return nil
}

func (s *Store) load(ctx context.Context, conn *sql.Conn) error {
	key := s.cfg.Key()
	data, ok, err := s.slot.Get(ctx, key)
	if err != nil {
		return err
	}

	if ok {
		raw, err := DecodeSnapshot(data)
		if err != nil {
			return err
		}
		if err := restore(ctx, conn, raw); err != nil {
			return err
		}
		s.logger.Debug("loaded snapshot", slog.String("key", key), slog.Int("bytes", len(raw)))
		return nil
	}

	for _, ddl := range schemaDDL {
		if _, err := conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	s.logger.Info("created new database", slog.String("key", key))
	return s.saveConn(ctx, conn)
}

// Execute runs a read query and returns every row in result order.
func (s *Store) Execute(ctx context.Context, query string, params ...any) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, types.ErrStoreNotInitialized
	}

	rows, err := s.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Run executes one mutating statement and saves the database.
func (s *Store) Run(ctx context.Context, query string, params ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return types.ErrStoreNotInitialized
	}
	if _, err := s.conn.ExecContext(ctx, query, params...); err != nil {
		return err
	}
	return s.saveConn(ctx, s.conn)
}

// RunBatch executes stmts in one transaction and saves once after commit.
func (s *Store) RunBatch(ctx context.Context, stmts ...Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return types.ErrStoreNotInitialized
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.SQL, st.Params...); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return s.saveConn(ctx, s.conn)
}

// Save serializes the database and writes it to the slot.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return types.ErrStoreNotInitialized
	}
	return s.saveConn(ctx, s.conn)
}

func (s *Store) saveConn(ctx context.Context, conn *sql.Conn) error {
	raw, err := serialize(conn)
	if err != nil {
		s.metrics.ObserveSaveError(metrics.ReasonSerialize)
		return fmt.Errorf("serialize database: %w", err)
	}

	encoded := EncodeSnapshot(raw)
	size := len(encoded)
	if estimate := estimateSize(encoded); s.cfg.WarnBytes > 0 && estimate > s.cfg.WarnBytes {
		s.logger.Warn("database snapshot is approaching the storage limit",
			slog.Int("bytes", size),
			slog.Int64("estimated_bytes", estimate),
			slog.Int64("warn_bytes", s.cfg.WarnBytes))
	}

	if err := s.slot.Put(ctx, s.cfg.Key(), encoded); err != nil {
		if errors.Is(err, types.ErrQuotaExceeded) {
			s.metrics.ObserveSaveError(metrics.ReasonQuota)
			s.logger.Error("snapshot rejected by slot", slog.Int("bytes", size), slog.Any("error", err))
		} else {
			s.metrics.ObserveSaveError(metrics.ReasonWrite)
		}
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.metrics.ObserveSave(size)
	return nil
}

// estimateSize is the storage footprint used for the warning threshold:
// two bytes per character of the encoded snapshot, the way string storage
// is charged. It is twice the bytes a FileSlot or RedisSlot writes, so the
// warning fires at half the encoded size of warn_bytes.
func estimateSize(encoded []byte) int64 {
	return int64(len(encoded)) * 2
}

// Snapshot returns the raw serialized database.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, types.ErrStoreNotInitialized
	}
	return serialize(s.conn)
}

// Close saves one last time and releases the database. Closing twice, or
// closing a store that was never initialized, returns nil.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}

	saveErr := s.saveConn(ctx, s.conn)
	closeErr := errors.Join(s.conn.Close(), s.db.Close())
	s.conn = nil
	s.db = nil
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}

type serializer interface {
	Serialize() ([]byte, error)
}

// restorer is implemented by modernc driver connections.
type restorer interface {
	NewRestore(srcURI string) (*msqlite.Backup, error)
}

func serialize(conn *sql.Conn) ([]byte, error) {
	var out []byte
	err := conn.Raw(func(dc any) error {
		s, ok := dc.(serializer)
		if !ok {
			return errors.New("driver connection cannot serialize")
		}
		var err error
		out, err = s.Serialize()
		return err
	})
	return out, err
}

// restore copies raw, a serialized database, into conn through the
// online backup API. SQLite owns every page of the result.
func restore(ctx context.Context, conn *sql.Conn, raw []byte) error {
	tmp, err := os.CreateTemp("", "notereel-snapshot-*.db")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return conn.Raw(func(dc any) error {
		r, ok := dc.(restorer)
		if !ok {
			return errors.New("driver connection cannot restore")
		}
		bck, err := r.NewRestore(tmpName)
		if err != nil {
			return fmt.Errorf("start restore: %w", err)
		}
		if _, err := bck.Step(-1); err != nil {
			bck.Finish()
			return fmt.Errorf("restore pages: %w", err)
		}
		return bck.Finish()
	})
}

// Package notes is the note and folder domain service. It validates input,
// enforces the length limits and is the only place that writes SQL for
// notes, folders, recordings and settings.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/notereel/internal/logging"
	"github.com/mesh-intelligence/notereel/internal/sqlite"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Executor is the store surface the service needs. *sqlite.Store
// satisfies it.
type Executor interface {
	Execute(ctx context.Context, query string, params ...any) ([]sqlite.Row, error)
	Run(ctx context.Context, query string, params ...any) error
	RunBatch(ctx context.Context, stmts ...sqlite.Statement) error
}

var _ Executor = (*sqlite.Store)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.Component(l, "notes") }
}

// Service implements note, folder, recording and settings operations.
type Service struct {
	store  Executor
	now    func() time.Time
	logger *slog.Logger
}

// NewService returns a service over store.
func NewService(store Executor, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: logging.Component(nil, "notes"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const noteColumns = `id, title, content, folder_id, created_at, modified_at, archived`

// CreateNote inserts a note. Title and content are truncated to their
// limits.
func (s *Service) CreateNote(ctx context.Context, title, content string, folderID *string) (*types.Note, error) {
	if folderID != nil && !validID(*folderID) {
		return nil, fmt.Errorf("%w: folder id %q", types.ErrInvalidArgument, *folderID)
	}
	id, err := newID()
	if err != nil {
		return nil, s.fail("create note", err)
	}
	now := s.timestamp()
	note := &types.Note{
		ID:         id,
		Title:      types.Truncate(title, types.MaxTitleLength),
		Content:    types.Truncate(content, types.MaxContentLength),
		FolderID:   copyString(folderID),
		CreatedAt:  now,
		ModifiedAt: now,
	}

	err = s.store.Run(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, 0)`,
		note.ID, note.Title, note.Content, nullable(note.FolderID), toMillis(now), toMillis(now))
	if err != nil {
		return nil, s.fail("create note", err)
	}
	return note, nil
}

// UpdateNote applies changes to the note with id and bumps its
// modification time. Fields absent from changes are left as they are. A
// later change to the same field replaces an earlier one.
func (s *Service) UpdateNote(ctx context.Context, id string, changes ...types.NoteChange) error {
	if !validID(id) {
		return fmt.Errorf("%w: note id %q", types.ErrInvalidArgument, id)
	}

	var (
		columns []string
		values  []any
		index   = make(map[types.NoteField]int)
	)
	set := func(field types.NoteField, column string, v any) {
		if i, ok := index[field]; ok {
			values[i] = v
			return
		}
		index[field] = len(columns)
		columns = append(columns, column+" = ?")
		values = append(values, v)
	}

	for _, c := range changes {
		switch c.Field {
		case types.FieldTitle:
			v, ok := c.Value.(string)
			if !ok {
				return fmt.Errorf("%w: title must be a string", types.ErrInvalidArgument)
			}
			set(c.Field, "title", types.Truncate(v, types.MaxTitleLength))
		case types.FieldContent:
			v, ok := c.Value.(string)
			if !ok {
				return fmt.Errorf("%w: content must be a string", types.ErrInvalidArgument)
			}
			set(c.Field, "content", types.Truncate(v, types.MaxContentLength))
		case types.FieldFolder:
			v, ok := c.Value.(*string)
			if !ok {
				return fmt.Errorf("%w: folder must be a *string", types.ErrInvalidArgument)
			}
			if v != nil && !validID(*v) {
				return fmt.Errorf("%w: folder id %q", types.ErrInvalidArgument, *v)
			}
			set(c.Field, "folder_id", nullable(v))
		case types.FieldArchived:
			v, ok := c.Value.(bool)
			if !ok {
				return fmt.Errorf("%w: archived must be a bool", types.ErrInvalidArgument)
			}
			set(c.Field, "archived", boolInt(v))
		default:
			return fmt.Errorf("%w: unknown note field %d", types.ErrInvalidArgument, c.Field)
		}
	}

	// MAX keeps modified_at non-decreasing if the clock steps back.
	columns = append(columns, "modified_at = MAX(modified_at, ?)")
	values = append(values, toMillis(s.timestamp()), id)

	query := `UPDATE notes SET ` + strings.Join(columns, ", ") + ` WHERE id = ?`
	if err := s.store.Run(ctx, query, values...); err != nil {
		return s.fail("update note", err)
	}
	return nil
}

// GetNote returns the note with id or types.ErrNotFound.
func (s *Service) GetNote(ctx context.Context, id string) (*types.Note, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: note id %q", types.ErrInvalidArgument, id)
	}
	rows, err := s.store.Execute(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	if err != nil {
		return nil, s.fail("get note", err)
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return noteFromRow(rows[0]), nil
}

// GetAllNotes lists notes, newest modification first.
func (s *Service) GetAllNotes(ctx context.Context, includeArchived bool) ([]*types.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY modified_at DESC, id DESC`
	return s.queryNotes(ctx, "list notes", query)
}

// GetNotesByFolder lists the unarchived notes in a folder. A nil folderID
// selects notes that are in no folder.
func (s *Service) GetNotesByFolder(ctx context.Context, folderID *string) ([]*types.Note, error) {
	if folderID == nil {
		return s.queryNotes(ctx, "list notes by folder",
			`SELECT `+noteColumns+` FROM notes WHERE folder_id IS NULL AND archived = 0 ORDER BY modified_at DESC, id DESC`)
	}
	return s.queryNotes(ctx, "list notes by folder",
		`SELECT `+noteColumns+` FROM notes WHERE folder_id = ? AND archived = 0 ORDER BY modified_at DESC, id DESC`,
		*folderID)
}

func (s *Service) queryNotes(ctx context.Context, op, query string, params ...any) ([]*types.Note, error) {
	rows, err := s.store.Execute(ctx, query, params...)
	if err != nil {
		return nil, s.fail(op, err)
	}
	notes := make([]*types.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, noteFromRow(r))
	}
	return notes, nil
}

// SearchNotes finds unarchived notes whose title or content contains query,
// ignoring ASCII case. A blank query matches nothing.
func (s *Service) SearchNotes(ctx context.Context, query string) ([]types.NoteListItem, error) {
	q := strings.TrimSpace(types.Truncate(query, types.MaxSearchQueryLength))
	if q == "" {
		return []types.NoteListItem{}, nil
	}
	pattern := "%" + escapeLike(q) + "%"

	rows, err := s.store.Execute(ctx,
		`SELECT id, title, substr(content, 1, ?) AS preview, modified_at, folder_id
FROM notes
WHERE archived = 0 AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')
ORDER BY modified_at DESC, id DESC`,
		types.PreviewLength, pattern, pattern)
	if err != nil {
		return nil, s.fail("search notes", err)
	}

	items := make([]types.NoteListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, types.NoteListItem{
			ID:         asString(r["id"]),
			Title:      asString(r["title"]),
			Preview:    types.Truncate(asString(r["preview"]), types.PreviewLength),
			ModifiedAt: fromMillis(asInt64(r["modified_at"])),
			FolderID:   asStringPtr(r["folder_id"]),
		})
	}
	return items, nil
}

// DeleteNote removes a note and its recordings.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.DeleteNotes(ctx, []string{id})
}

// DeleteNotes removes notes and their recordings in one batch. Any
// malformed id rejects the whole call.
func (s *Service) DeleteNotes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	params := make([]any, len(ids))
	for i, id := range ids {
		if !validID(id) {
			return fmt.Errorf("%w: note id %q", types.ErrInvalidArgument, id)
		}
		params[i] = id
	}
	in := placeholders(len(ids))

	err := s.store.RunBatch(ctx,
		sqlite.Stmt(`DELETE FROM recordings WHERE note_id IN (`+in+`)`, params...),
		sqlite.Stmt(`DELETE FROM notes WHERE id IN (`+in+`)`, params...),
	)
	if err != nil {
		return s.fail("delete notes", err)
	}
	return nil
}

// ArchiveNote sets the archived flag. The modification time is left
// unchanged.
func (s *Service) ArchiveNote(ctx context.Context, id string, archived bool) error {
	if !validID(id) {
		return fmt.Errorf("%w: note id %q", types.ErrInvalidArgument, id)
	}
	if err := s.store.Run(ctx, `UPDATE notes SET archived = ? WHERE id = ?`, boolInt(archived), id); err != nil {
		return s.fail("archive note", err)
	}
	return nil
}

// fail logs a storage failure and wraps it. Quota errors keep their own
// identity so callers can tell the user what to do.
func (s *Service) fail(op string, err error) error {
	s.logger.Error("operation failed", slog.String("op", op), slog.Any("error", err))
	if errors.Is(err, types.ErrQuotaExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, types.ErrStorage, err)
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes the LIKE wildcards so q matches literally.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

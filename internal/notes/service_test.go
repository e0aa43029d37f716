package notes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notereel/internal/sqlite"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	cfg := types.DefaultConfig("")
	cfg.SlotBackend = types.SlotMemory
	store := sqlite.NewStore(cfg, sqlite.NewMemorySlot(0))
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { store.Close(context.Background()) })

	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Second}
	return NewService(store, WithClock(clock.Now)), store
}

func strPtr(s string) *string { return &s }

func TestCreateNote_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{name: "plain", title: "Groceries", content: "milk\neggs"},
		{name: "empty", title: "", content: ""},
		{name: "unicode", title: "日记 ✏️", content: "今天天气很好"},
		{name: "quotes", title: `it's "quoted"`, content: `a'b"c;--`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := svc.CreateNote(ctx, tt.title, tt.content, nil)
			require.NoError(t, err)
			_, err = uuid.Parse(created.ID)
			require.NoError(t, err)

			got, err := svc.GetNote(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.title, got.Title)
			assert.Equal(t, tt.content, got.Content)
			assert.Nil(t, got.FolderID)
			assert.False(t, got.Archived)
			assert.True(t, got.CreatedAt.Equal(got.ModifiedAt))
			assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
		})
	}
}

func TestCreateNote_Truncation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	note, err := svc.CreateNote(ctx, strings.Repeat("x", 1000), strings.Repeat("y", 2_000_000), nil)
	require.NoError(t, err)

	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, utf8.RuneCountInString(got.Title))
	assert.Equal(t, 1_000_000, utf8.RuneCountInString(got.Content))
}

func TestCreateNote_TruncatesByCharacter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	note, err := svc.CreateNote(ctx, strings.Repeat("é", 60), "", nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), note.Title)
}

func TestCreateNote_InFolder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	folder, err := svc.CreateFolder(ctx, "Work", nil)
	require.NoError(t, err)

	note, err := svc.CreateNote(ctx, "t", "c", &folder.ID)
	require.NoError(t, err)
	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, folder.ID, *got.FolderID)

	_, err = svc.CreateNote(ctx, "t", "c", strPtr("not-a-uuid"))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestGetNote_Missing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetNote(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateNote_MonotonicModifiedAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	note, err := svc.CreateNote(ctx, "a", "b", nil)
	require.NoError(t, err)
	prev := note.ModifiedAt

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.UpdateNote(ctx, note.ID, types.SetContent(strings.Repeat("z", i))))
		got, err := svc.GetNote(ctx, note.ID)
		require.NoError(t, err)
		assert.True(t, got.ModifiedAt.After(prev), "update %d should advance modified_at", i)
		assert.True(t, got.CreatedAt.Equal(note.CreatedAt), "created_at never changes")
		prev = got.ModifiedAt
	}
}

func TestUpdateNote_ClockStepsBack(t *testing.T) {
	ctx := context.Background()
	cfg := types.DefaultConfig("")
	cfg.SlotBackend = types.SlotMemory
	store := sqlite.NewStore(cfg, sqlite.NewMemorySlot(0))
	require.NoError(t, store.Initialize(ctx))
	t.Cleanup(func() { store.Close(ctx) })

	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), step: -time.Minute}
	svc := NewService(store, WithClock(clock.Now))

	note, err := svc.CreateNote(ctx, "a", "b", nil)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateNote(ctx, note.ID, types.SetTitle("c")))

	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "c", got.Title)
	assert.True(t, got.ModifiedAt.Equal(note.ModifiedAt), "modified_at must not move backwards")
}

func TestUpdateNote_PartialFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	folder, err := svc.CreateFolder(ctx, "F", nil)
	require.NoError(t, err)
	note, err := svc.CreateNote(ctx, "title", "content", &folder.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		changes []types.NoteChange
		check   func(t *testing.T, n *types.Note)
	}{
		{
			name:    "title only",
			changes: []types.NoteChange{types.SetTitle("new title")},
			check: func(t *testing.T, n *types.Note) {
				assert.Equal(t, "new title", n.Title)
				assert.Equal(t, "content", n.Content)
				require.NotNil(t, n.FolderID)
			},
		},
		{
			name:    "empty content is a real change",
			changes: []types.NoteChange{types.SetContent("")},
			check: func(t *testing.T, n *types.Note) {
				assert.Equal(t, "", n.Content)
				assert.Equal(t, "new title", n.Title)
			},
		},
		{
			name:    "clear folder",
			changes: []types.NoteChange{types.ClearFolder()},
			check: func(t *testing.T, n *types.Note) {
				assert.Nil(t, n.FolderID)
			},
		},
		{
			name:    "move back to folder and archive",
			changes: []types.NoteChange{types.MoveToFolder(folder.ID), types.SetArchived(true)},
			check: func(t *testing.T, n *types.Note) {
				require.NotNil(t, n.FolderID)
				assert.Equal(t, folder.ID, *n.FolderID)
				assert.True(t, n.Archived)
			},
		},
		{
			name:    "last change wins",
			changes: []types.NoteChange{types.SetTitle("one"), types.SetTitle("two")},
			check: func(t *testing.T, n *types.Note) {
				assert.Equal(t, "two", n.Title)
			},
		},
		{
			name:    "title truncated",
			changes: []types.NoteChange{types.SetTitle(strings.Repeat("t", 80))},
			check: func(t *testing.T, n *types.Note) {
				assert.Equal(t, 50, utf8.RuneCountInString(n.Title))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, svc.UpdateNote(ctx, note.ID, tt.changes...))
			got, err := svc.GetNote(ctx, note.ID)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestUpdateNote_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	note, err := svc.CreateNote(ctx, "a", "b", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		changes []types.NoteChange
	}{
		{name: "empty id", id: ""},
		{name: "malformed id", id: "abc"},
		{name: "wrong title type", id: note.ID, changes: []types.NoteChange{{Field: types.FieldTitle, Value: 5}}},
		{name: "wrong folder type", id: note.ID, changes: []types.NoteChange{{Field: types.FieldFolder, Value: "x"}}},
		{name: "malformed folder id", id: note.ID, changes: []types.NoteChange{types.MoveToFolder("nope")}},
		{name: "unknown field", id: note.ID, changes: []types.NoteChange{{Field: 99, Value: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateNote(ctx, tt.id, tt.changes...)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
}

func TestGetAllNotes_Order(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.CreateNote(ctx, "a", "", nil)
	require.NoError(t, err)
	b, err := svc.CreateNote(ctx, "b", "", nil)
	require.NoError(t, err)
	c, err := svc.CreateNote(ctx, "c", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateNote(ctx, a.ID, types.SetContent("touched")))
	require.NoError(t, svc.ArchiveNote(ctx, b.ID, true))

	notes, err := svc.GetAllNotes(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(notes))

	notes, err = svc.GetAllNotes(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(notes))
}

func TestArchiveNote_KeepsModifiedAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	note, err := svc.CreateNote(ctx, "a", "b", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveNote(ctx, note.ID, true))

	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.True(t, got.ModifiedAt.Equal(note.ModifiedAt))

	require.NoError(t, svc.ArchiveNote(ctx, note.ID, false))
	got, err = svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived)

	assert.ErrorIs(t, svc.ArchiveNote(ctx, "bad", true), types.ErrInvalidArgument)
}

func TestGetNotesByFolder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.CreateFolder(ctx, "F", nil)
	require.NoError(t, err)
	inFolder, err := svc.CreateNote(ctx, "in", "", &f.ID)
	require.NoError(t, err)
	archived, err := svc.CreateNote(ctx, "archived", "", &f.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveNote(ctx, archived.ID, true))
	loose, err := svc.CreateNote(ctx, "loose", "", nil)
	require.NoError(t, err)

	notes, err := svc.GetNotesByFolder(ctx, &f.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{inFolder.ID}, ids(notes))

	notes, err = svc.GetNotesByFolder(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{loose.ID}, ids(notes))
}

func TestSearchNotes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	hello, err := svc.CreateNote(ctx, "Greeting", "Hello World", nil)
	require.NoError(t, err)
	titled, err := svc.CreateNote(ctx, "hello there", "body", nil)
	require.NoError(t, err)
	hidden, err := svc.CreateNote(ctx, "hello archived", "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveNote(ctx, hidden.ID, true))
	pct, err := svc.CreateNote(ctx, "discount", "50% off_today", nil)
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, "other", "500 off today", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty", query: "", want: []string{}},
		{name: "whitespace", query: "   \t", want: []string{}},
		{name: "case insensitive", query: "hello", want: []string{titled.ID, hello.ID}},
		{name: "upper case query", query: "WORLD", want: []string{hello.ID}},
		{name: "trimmed", query: "  world  ", want: []string{hello.ID}},
		{name: "percent is literal", query: "0%", want: []string{pct.ID}},
		{name: "underscore is literal", query: "off_", want: []string{pct.ID}},
		{name: "no match", query: "zebra", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := svc.SearchNotes(ctx, tt.query)
			require.NoError(t, err)
			require.NotNil(t, items)
			got := make([]string, 0, len(items))
			for _, it := range items {
				got = append(got, it.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchNotes_Preview(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	content := "needle " + strings.Repeat("界", 200)
	note, err := svc.CreateNote(ctx, "t", content, nil)
	require.NoError(t, err)

	items, err := svc.SearchNotes(ctx, "needle")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, note.ID, items[0].ID)
	assert.Equal(t, types.PreviewLength, utf8.RuneCountInString(items[0].Preview))
	assert.True(t, strings.HasPrefix(content, items[0].Preview))
	assert.True(t, items[0].ModifiedAt.Equal(note.ModifiedAt))
}

func TestDeleteNote_CascadesRecordings(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	note, err := svc.CreateNote(ctx, "a", "b", nil)
	require.NoError(t, err)
	other, err := svc.CreateNote(ctx, "c", "d", nil)
	require.NoError(t, err)
	_, err = svc.AddRecording(ctx, note.ID, 12*time.Second, "a.webm", true, types.LanguageEnglish)
	require.NoError(t, err)
	_, err = svc.AddRecording(ctx, note.ID, 3*time.Second, "b.webm", false, "")
	require.NoError(t, err)
	_, err = svc.AddRecording(ctx, other.ID, time.Second, "c.webm", false, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(ctx, note.ID))

	_, err = svc.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	rows, err := store.Execute(ctx, `SELECT id FROM recordings WHERE note_id = ?`, note.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	recs, err := svc.GetRecordings(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "other notes keep their recordings")
}

func TestDeleteNotes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.CreateNote(ctx, "a", "", nil)
	require.NoError(t, err)
	b, err := svc.CreateNote(ctx, "b", "", nil)
	require.NoError(t, err)
	c, err := svc.CreateNote(ctx, "c", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNotes(ctx, nil))

	err = svc.DeleteNotes(ctx, []string{a.ID, "bogus"})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	notes, err := svc.GetAllNotes(ctx, true)
	require.NoError(t, err)
	assert.Len(t, notes, 3, "a rejected batch deletes nothing")

	require.NoError(t, svc.DeleteNotes(ctx, []string{a.ID, b.ID}))
	notes, err = svc.GetAllNotes(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids(notes))

	assert.ErrorIs(t, svc.DeleteNote(ctx, ""), types.ErrInvalidArgument)
}

func TestService_QuotaPassesThrough(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingExecutor{err: types.ErrQuotaExceeded})

	_, err := svc.CreateNote(ctx, "a", "b", nil)
	assert.ErrorIs(t, err, types.ErrQuotaExceeded)
	assert.False(t, errors.Is(err, types.ErrStorage))
}

func TestService_StorageErrorsWrapped(t *testing.T) {
	ctx := context.Background()
	raw := errors.New("disk on fire")
	svc := NewService(failingExecutor{err: raw})

	_, err := svc.GetAllNotes(ctx, false)
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.ErrorIs(t, err, raw)

	err = svc.DeleteNote(ctx, uuid.NewString())
	assert.ErrorIs(t, err, types.ErrStorage)
}

func TestService_ValidationBeforeStorage(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingExecutor{err: errors.New("must not be called")})

	assert.ErrorIs(t, svc.UpdateNote(ctx, "x"), types.ErrInvalidArgument)
	_, err := svc.CreateFolder(ctx, "  ", nil)
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

// failingExecutor fails every store call with err.
type failingExecutor struct {
	err error
}

func (f failingExecutor) Execute(ctx context.Context, query string, params ...any) ([]sqlite.Row, error) {
	return nil, f.err
}

func (f failingExecutor) Run(ctx context.Context, query string, params ...any) error {
	return f.err
}

func (f failingExecutor) RunBatch(ctx context.Context, stmts ...sqlite.Statement) error {
	return f.err
}

func ids(notes []*types.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

package notes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

func TestAddRecording(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	note, err := svc.CreateNote(ctx, "a", "b", nil)
	require.NoError(t, err)

	first, err := svc.AddRecording(ctx, note.ID, 1500*time.Millisecond, "first.webm", true, types.LanguageChinese)
	require.NoError(t, err)
	second, err := svc.AddRecording(ctx, note.ID, 90*time.Second, "second.webm", false, "")
	require.NoError(t, err)

	recs, err := svc.GetRecordings(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, second.ID, recs[0].ID, "newest first")
	assert.Equal(t, 90*time.Second, recs[0].Duration)
	assert.False(t, recs[0].HasAudio)
	assert.Equal(t, types.Language(""), recs[0].Language)

	assert.Equal(t, first.ID, recs[1].ID)
	assert.Equal(t, 2*time.Second, recs[1].Duration)
	assert.True(t, recs[1].HasAudio)
	assert.Equal(t, types.LanguageChinese, recs[1].Language)
	assert.Equal(t, "first.webm", recs[1].FilePath)
	assert.Equal(t, note.ID, recs[1].NoteID)
}

func TestAddRecording_Invalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	id := uuid.NewString()

	tests := []struct {
		name     string
		noteID   string
		duration time.Duration
		path     string
		lang     types.Language
	}{
		{name: "bad note id", noteID: "x", path: "a"},
		{name: "negative duration", noteID: id, duration: -time.Second, path: "a"},
		{name: "empty path", noteID: id},
		{name: "bad language", noteID: id, path: "a", lang: "klingon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddRecording(ctx, tt.noteID, tt.duration, tt.path, false, tt.lang)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
}

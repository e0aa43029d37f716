package notes

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		in       string
		color    *string
		wantName string
		wantErr  error
	}{
		{name: "simple", in: "Work", wantName: "Work"},
		{name: "trimmed", in: "  Home  ", wantName: "Home"},
		{name: "with color", in: "Red", color: strPtr("#ff0000"), wantName: "Red"},
		{name: "truncated", in: strings.Repeat("f", 150), wantName: strings.Repeat("f", 100)},
		{name: "empty", in: "", wantErr: types.ErrEmptyName},
		{name: "blank", in: " \n\t ", wantErr: types.ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := svc.CreateFolder(ctx, tt.in, tt.color)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := svc.GetFolder(ctx, f.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.color, got.Color)
			assert.True(t, got.CreatedAt.Equal(f.CreatedAt))
		})
	}
}

func TestUpdateFolder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.CreateFolder(ctx, "Old", strPtr("blue"))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateFolder(ctx, f.ID, " New ", nil))
	got, err := svc.GetFolder(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Nil(t, got.Color)

	assert.ErrorIs(t, svc.UpdateFolder(ctx, f.ID, "   ", nil), types.ErrEmptyName)
	assert.ErrorIs(t, svc.UpdateFolder(ctx, "bad-id", "x", nil), types.ErrInvalidArgument)
}

func TestDeleteFolder_ReassignsNotes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.CreateFolder(ctx, "F", nil)
	require.NoError(t, err)
	keep, err := svc.CreateFolder(ctx, "Keep", nil)
	require.NoError(t, err)
	n1, err := svc.CreateNote(ctx, "n1", "", &f.ID)
	require.NoError(t, err)
	n2, err := svc.CreateNote(ctx, "n2", "", &f.ID)
	require.NoError(t, err)
	n3, err := svc.CreateNote(ctx, "n3", "", &keep.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFolder(ctx, f.ID))

	for _, id := range []string{n1.ID, n2.ID} {
		got, err := svc.GetNote(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got.FolderID)
	}
	got, err := svc.GetNote(ctx, n3.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, keep.ID, *got.FolderID)

	folders, err := svc.GetAllFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, keep.ID, folders[0].ID)

	_, err = svc.GetFolder(ctx, f.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetAllFolders_SortedByName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, n := range []string{"charlie", "alpha", "bravo"} {
		_, err := svc.CreateFolder(ctx, n, nil)
		require.NoError(t, err)
	}

	folders, err := svc.GetAllFolders(ctx)
	require.NoError(t, err)
	var names []string
	for _, f := range folders {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, names)
}

func TestGetFolder_Invalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.GetFolder(ctx, "x")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = svc.GetFolder(ctx, uuid.NewString())
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteFolder(ctx, ""), types.ErrInvalidArgument)
}

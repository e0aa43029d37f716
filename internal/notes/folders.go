package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/notereel/internal/sqlite"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

const folderColumns = `id, name, color, created_at`

func folderName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", types.ErrEmptyName
	}
	return types.Truncate(n, types.MaxFolderNameLength), nil
}

// CreateFolder inserts a folder. The name is trimmed and must not be empty.
func (s *Service) CreateFolder(ctx context.Context, name string, color *string) (*types.Folder, error) {
	n, err := folderName(name)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, s.fail("create folder", err)
	}
	folder := &types.Folder{
		ID:        id,
		Name:      n,
		Color:     copyString(color),
		CreatedAt: s.timestamp(),
	}
	err = s.store.Run(ctx,
		`INSERT INTO folders (`+folderColumns+`) VALUES (?, ?, ?, ?)`,
		folder.ID, folder.Name, nullable(folder.Color), toMillis(folder.CreatedAt))
	if err != nil {
		return nil, s.fail("create folder", err)
	}
	return folder, nil
}

// UpdateFolder renames a folder and sets its color. A nil color clears it.
func (s *Service) UpdateFolder(ctx context.Context, id, name string, color *string) error {
	if !validID(id) {
		return fmt.Errorf("%w: folder id %q", types.ErrInvalidArgument, id)
	}
	n, err := folderName(name)
	if err != nil {
		return err
	}
	if err := s.store.Run(ctx, `UPDATE folders SET name = ?, color = ? WHERE id = ?`, n, nullable(color), id); err != nil {
		return s.fail("update folder", err)
	}
	return nil
}

// DeleteFolder moves the folder's notes to no folder and removes it.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: folder id %q", types.ErrInvalidArgument, id)
	}
	err := s.store.RunBatch(ctx,
		sqlite.Stmt(`UPDATE notes SET folder_id = NULL WHERE folder_id = ?`, id),
		sqlite.Stmt(`DELETE FROM folders WHERE id = ?`, id),
	)
	if err != nil {
		return s.fail("delete folder", err)
	}
	return nil
}

// GetFolder returns the folder with id or types.ErrNotFound.
func (s *Service) GetFolder(ctx context.Context, id string) (*types.Folder, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: folder id %q", types.ErrInvalidArgument, id)
	}
	rows, err := s.store.Execute(ctx, `SELECT `+folderColumns+` FROM folders WHERE id = ?`, id)
	if err != nil {
		return nil, s.fail("get folder", err)
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return folderFromRow(rows[0]), nil
}

// GetAllFolders lists folders by name.
func (s *Service) GetAllFolders(ctx context.Context) ([]*types.Folder, error) {
	rows, err := s.store.Execute(ctx, `SELECT `+folderColumns+` FROM folders ORDER BY name ASC`)
	if err != nil {
		return nil, s.fail("list folders", err)
	}
	folders := make([]*types.Folder, 0, len(rows))
	for _, r := range rows {
		folders = append(folders, folderFromRow(r))
	}
	return folders, nil
}

package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

const recordingColumns = `id, note_id, duration, file_path, has_audio, language, created_at`

// AddRecording stores metadata for an exported recording of a note.
// Duration is kept in whole seconds.
func (s *Service) AddRecording(ctx context.Context, noteID string, duration time.Duration, filePath string, hasAudio bool, language types.Language) (*types.Recording, error) {
	if !validID(noteID) {
		return nil, fmt.Errorf("%w: note id %q", types.ErrInvalidArgument, noteID)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", types.ErrInvalidArgument)
	}
	if filePath == "" {
		return nil, fmt.Errorf("%w: empty file path", types.ErrInvalidArgument)
	}
	if !language.Valid() {
		return nil, fmt.Errorf("%w: language %q", types.ErrInvalidArgument, language)
	}

	id, err := newID()
	if err != nil {
		return nil, s.fail("add recording", err)
	}
	rec := &types.Recording{
		ID:        id,
		NoteID:    noteID,
		Duration:  duration.Round(time.Second),
		FilePath:  filePath,
		HasAudio:  hasAudio,
		Language:  language,
		CreatedAt: s.timestamp(),
	}

	var lang any
	if language != "" {
		lang = string(language)
	}
	err = s.store.Run(ctx,
		`INSERT INTO recordings (`+recordingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.NoteID, int64(rec.Duration/time.Second), rec.FilePath, boolInt(rec.HasAudio), lang, toMillis(rec.CreatedAt))
	if err != nil {
		return nil, s.fail("add recording", err)
	}
	return rec, nil
}

// GetRecordings lists a note's recordings, newest first.
func (s *Service) GetRecordings(ctx context.Context, noteID string) ([]*types.Recording, error) {
	if !validID(noteID) {
		return nil, fmt.Errorf("%w: note id %q", types.ErrInvalidArgument, noteID)
	}
	rows, err := s.store.Execute(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE note_id = ? ORDER BY created_at DESC, id DESC`, noteID)
	if err != nil {
		return nil, s.fail("list recordings", err)
	}
	recs := make([]*types.Recording, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, recordingFromRow(r))
	}
	return recs, nil
}

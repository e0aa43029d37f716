package notes

import (
	"strconv"
	"time"

	"github.com/mesh-intelligence/notereel/internal/sqlite"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

func noteFromRow(r sqlite.Row) *types.Note {
	return &types.Note{
		ID:         asString(r["id"]),
		Title:      asString(r["title"]),
		Content:    asString(r["content"]),
		FolderID:   asStringPtr(r["folder_id"]),
		CreatedAt:  fromMillis(asInt64(r["created_at"])),
		ModifiedAt: fromMillis(asInt64(r["modified_at"])),
		Archived:   asInt64(r["archived"]) != 0,
	}
}

func folderFromRow(r sqlite.Row) *types.Folder {
	return &types.Folder{
		ID:        asString(r["id"]),
		Name:      asString(r["name"]),
		Color:     asStringPtr(r["color"]),
		CreatedAt: fromMillis(asInt64(r["created_at"])),
	}
}

func recordingFromRow(r sqlite.Row) *types.Recording {
	var lang types.Language
	if p := asStringPtr(r["language"]); p != nil {
		lang = types.Language(*p)
	}
	return &types.Recording{
		ID:        asString(r["id"]),
		NoteID:    asString(r["note_id"]),
		Duration:  time.Duration(asInt64(r["duration"])) * time.Second,
		FilePath:  asString(r["file_path"]),
		HasAudio:  asInt64(r["has_audio"]) != 0,
		Language:  lang,
		CreatedAt: fromMillis(asInt64(r["created_at"])),
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	return &s
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	case bool:
		return boolInt(x)
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

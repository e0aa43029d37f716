package types

import (
	"time"
)

// Input length limits, counted in characters.
const (
	MaxTitleLength       = 50
	MaxContentLength     = 1_000_000
	MaxFolderNameLength  = 100
	MaxSearchQueryLength = 500
	PreviewLength        = 100
)

// Note is a single text note.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FolderID   *string   `json:"folder_id"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Archived   bool      `json:"archived"`
}

// Folder groups notes. Deleting a folder moves its notes to no folder.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteListItem is the search result projection of a note.
type NoteListItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Preview    string    `json:"preview"`
	ModifiedAt time.Time `json:"modified_at"`
	FolderID   *string   `json:"folder_id"`
}

// NoteField names a mutable note column.
type NoteField int

// Mutable note fields.
const (
	FieldTitle NoteField = iota + 1
	FieldContent
	FieldFolder
	FieldArchived
)

// NoteChange is one tagged change in a partial note update. Fields that do
// not appear in a change list are left untouched; ClearFolder is the only way
// to remove a note from its folder.
type NoteChange struct {
	Field NoteField
	Value any
}

// SetTitle changes the note title.
func SetTitle(title string) NoteChange {
	return NoteChange{Field: FieldTitle, Value: title}
}

// SetContent changes the note body.
func SetContent(content string) NoteChange {
	return NoteChange{Field: FieldContent, Value: content}
}

// MoveToFolder assigns the note to a folder.
func MoveToFolder(folderID string) NoteChange {
	return NoteChange{Field: FieldFolder, Value: &folderID}
}

// ClearFolder removes the note from its folder.
func ClearFolder() NoteChange {
	return NoteChange{Field: FieldFolder, Value: (*string)(nil)}
}

// SetArchived sets the archived flag.
func SetArchived(archived bool) NoteChange {
	return NoteChange{Field: FieldArchived, Value: archived}
}

// Truncate returns at most n characters of s without splitting a code point.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

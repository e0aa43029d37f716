package sqlite

// Schema DDL for the note store tables. Timestamps are unix milliseconds.
const (
	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    folder_id TEXT,
    created_at INTEGER NOT NULL,
    modified_at INTEGER NOT NULL,
    archived INTEGER DEFAULT 0,
    FOREIGN KEY (folder_id) REFERENCES folders(id)
);`

	createFolders = `CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT,
    created_at INTEGER NOT NULL
);`

	createRecordings = `CREATE TABLE IF NOT EXISTS recordings (
    id TEXT PRIMARY KEY,
    note_id TEXT NOT NULL,
    duration INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    has_audio INTEGER DEFAULT 0,
    language TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (note_id) REFERENCES notes(id)
);`

	createSettings = `CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxNotesFolder    = `CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);`
	idxNotesModified  = `CREATE INDEX IF NOT EXISTS idx_notes_modified ON notes(modified_at DESC);`
	idxRecordingsNote = `CREATE INDEX IF NOT EXISTS idx_recordings_note ON recordings(note_id);`
)

// schemaDDL lists all CREATE TABLE statements in the order they are applied.
var schemaDDL = []string{
	createNotes,
	createFolders,
	createRecordings,
	createSettings,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxNotesFolder,
	idxNotesModified,
	idxRecordingsNote,
}

package types

import "time"

// Language tags the spoken language of a recording's narration.
type Language string

// Recording languages. The empty Language is stored as NULL.
const (
	LanguageChinese Language = "chinese"
	LanguageEnglish Language = "english"
	LanguageBoth    Language = "both"
)

// Valid reports whether l is empty or one of the known languages.
func (l Language) Valid() bool {
	switch l {
	case "", LanguageChinese, LanguageEnglish, LanguageBoth:
		return true
	}
	return false
}

// Recording is the persisted metadata of an exported recording.
type Recording struct {
	ID        string        `json:"id"`
	NoteID    string        `json:"note_id"`
	Duration  time.Duration `json:"duration"`
	FilePath  string        `json:"file_path"`
	HasAudio  bool          `json:"has_audio"`
	Language  Language      `json:"language"`
	CreatedAt time.Time     `json:"created_at"`
}

// RecordingState is the recording pipeline state.
type RecordingState string

// Pipeline states. StatePaused is declared for completeness; the pipeline
// never enters it.
const (
	StateIdle       RecordingState = "idle"
	StateRecording  RecordingState = "recording"
	StateProcessing RecordingState = "processing"
	StatePaused     RecordingState = "paused"
)

// MaxRecordingDuration is the recording length ceiling enforced by callers.
const MaxRecordingDuration = 1800 * time.Second

// AspectRatio selects the output frame orientation.
type AspectRatio string

// Aspect ratios.
const (
	AspectHorizontal AspectRatio = "horizontal"
	AspectVertical   AspectRatio = "vertical"
)

// Resolution returns the frame size for the aspect ratio. Anything other
// than vertical is horizontal.
func (a AspectRatio) Resolution() (width, height int) {
	if a == AspectVertical {
		return 1080, 1920
	}
	return 1920, 1080
}

// ParseAspectRatio maps a hint attribute to an AspectRatio, defaulting to
// horizontal.
func ParseAspectRatio(s string) AspectRatio {
	if AspectRatio(s) == AspectVertical {
		return AspectVertical
	}
	return AspectHorizontal
}

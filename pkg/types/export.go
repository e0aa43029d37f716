package types

// Blob is an in-memory binary artifact with a MIME type.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Size returns the blob length in bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// ExportFormat is a file format for exported notes and recordings.
type ExportFormat string

// Export formats.
const (
	FormatMarkdown ExportFormat = "md"
	FormatText     ExportFormat = "txt"
	FormatMP4      ExportFormat = "mp4"
	FormatWebM     ExportFormat = "webm"
)

// IsNoteFormat reports whether f applies to note exports.
func (f ExportFormat) IsNoteFormat() bool {
	return f == FormatMarkdown || f == FormatText
}

// IsVideoFormat reports whether f applies to recording exports.
func (f ExportFormat) IsVideoFormat() bool {
	return f == FormatMP4 || f == FormatWebM
}

// Quality is the requested recording export quality.
type Quality string

// Export qualities.
const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// ExportOptions controls a recording export.
type ExportOptions struct {
	Format      ExportFormat
	AspectRatio AspectRatio
	Quality     Quality
	Filename    string
}

package recording

// Codec is a video encoding the recorder can produce.
type Codec string

// Supported codecs.
const (
	CodecH264 Codec = "h264"
	CodecVP8  Codec = "vp8"
	CodecVP9  Codec = "vp9"
)

// DefaultCodecs is the preference order: the widely compatible codec
// first, then two fallbacks.
var DefaultCodecs = []Codec{CodecH264, CodecVP8, CodecVP9}

// MIMEType returns the container type with codec parameter.
func (c Codec) MIMEType() string {
	return "video/webm;codecs=" + string(c)
}

// BlobMIMEType is the type of the finished recording.
const BlobMIMEType = "video/webm"

// selectCodec returns the first codec in prefs that supported accepts.
func selectCodec(prefs []Codec, supported func(Codec) bool) (Codec, bool) {
	for _, c := range prefs {
		if supported(c) {
			return c, true
		}
	}
	return "", false
}

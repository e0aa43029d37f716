package export

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxFilenameLength caps file names in bytes, the usual filesystem limit.
const MaxFilenameLength = 255

// Sanitize turns name into a filesystem-safe file name. The name is NFC
// normalized, reserved characters and control characters become '_',
// every whitespace run becomes a single '_' and the result is cut to
// MaxFilenameLength bytes without splitting a character.
func Sanitize(name string) string {
	return truncateBytes(replaceUnsafe(name), MaxFilenameLength)
}

// FitName returns base followed by suffix, shortening base so the whole
// name stays within MaxFilenameLength bytes.
func FitName(base, suffix string) string {
	return truncateBytes(base, MaxFilenameLength-len(suffix)) + suffix
}

func replaceUnsafe(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		case r < 0x20, strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
		inSpace = false
	}
	return b.String()
}

// truncateBytes cuts s to at most n bytes on a character boundary.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for cut < len(s) {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > n {
			break
		}
		cut += size
	}
	return s[:cut]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

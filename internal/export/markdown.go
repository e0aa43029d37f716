package export

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	reHeader     = regexp.MustCompile(`#{1,6}\s+`)
	reBoldStar   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reBoldUnder  = regexp.MustCompile(`__(.*?)__`)
	reItalStar   = regexp.MustCompile(`\*(.*?)\*`)
	reItalUnder  = regexp.MustCompile(`_(.*?)_`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reCodeBlock  = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reBullet     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	reNumbered   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
)

// PlainText strips common markdown syntax from s: headers, emphasis, links,
// code and list markers. Runs of blank lines collapse to one.
func PlainText(s string) string {
	s = reHeader.ReplaceAllString(s, "")
	s = reBoldStar.ReplaceAllString(s, "$1")
	s = reBoldUnder.ReplaceAllString(s, "$1")
	s = reItalStar.ReplaceAllString(s, "$1")
	s = reItalUnder.ReplaceAllString(s, "$1")
	s = reLink.ReplaceAllString(s, "$1")
	s = reCodeBlock.ReplaceAllString(s, "")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reBullet.ReplaceAllString(s, "")
	s = reNumbered.ReplaceAllString(s, "")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Preview returns the plain text of content cut to n characters, with an
// ellipsis when something was cut.
func Preview(content string, n int) string {
	plain := PlainText(content)
	if utf8.RuneCountInString(plain) <= n {
		return plain
	}
	return truncateRunes(plain, n) + "..."
}

// FilenameDate formats t for use in file names, e.g. 2024-03-09_14-05.
func FilenameDate(t time.Time) string {
	return t.Format("2006-01-02_15-04")
}

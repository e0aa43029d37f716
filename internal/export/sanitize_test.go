package export

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Draft", want: "Draft"},
		{name: "reserved", in: `a<b>c:d"e/f\g|h?i*j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "control", in: "a\x00b\x1fc", want: "a_b_c"},
		{name: "whitespace runs", in: "a \t\n b", want: "a_b"},
		{name: "unicode space", in: "a\u00a0b", want: "a_b"},
		{name: "nfc", in: "Cafe\u0301", want: "Caf\u00e9"},
		{name: "cjk kept", in: "笔记 一", want: "笔记_一"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Length(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
	}{
		{name: "ascii", in: strings.Repeat("a", 300), wantLen: 255},
		{name: "two byte runes", in: strings.Repeat("é", 300), wantLen: 254},
		{name: "three byte runes", in: strings.Repeat("日", 120), wantLen: 255},
		{name: "short name untouched", in: "Draft", wantLen: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			assert.Len(t, got, tt.wantLen)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestFitName(t *testing.T) {
	tests := []struct {
		name string
		base string
		suf  string
		want string
	}{
		{name: "fits", base: "Draft", suf: ".v1.md", want: "Draft.v1.md"},
		{name: "ascii shortened", base: strings.Repeat("a", 255), suf: ".v12.webm", want: strings.Repeat("a", 246) + ".v12.webm"},
		{name: "cut on rune boundary", base: strings.Repeat("日", 85), suf: ".v1.mp4", want: strings.Repeat("日", 82) + ".v1.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitName(tt.base, tt.suf)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxFilenameLength)
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "header", in: "## Title", want: "Title"},
		{name: "bold and italic", in: "**bold** and *it* and __b__ and _i_", want: "bold and it and b and i"},
		{name: "link", in: "see [docs](https://example.com)", want: "see docs"},
		{name: "code block", in: "before\n```\ncode\n```\nafter", want: "before\n\nafter"},
		{name: "inline code", in: "run `make`", want: "run make"},
		{name: "lists", in: "- one\n* two\n1. three", want: "one\ntwo\nthree"},
		{name: "blank lines", in: "a\n\n\n\nb", want: "a\n\nb"},
		{name: "list marker eats preceding blank line", in: "a\n\n- b", want: "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("# short", 100))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
	assert.Equal(t, "笔记...", Preview("笔记本", 2))
}

func TestFilenameDate(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 59, 0, time.UTC)
	assert.Equal(t, "2024-03-09_14-05", FilenameDate(ts))
}

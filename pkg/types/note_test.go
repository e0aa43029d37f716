package types

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "shorter than limit", in: "hello", n: 10, want: "hello"},
		{name: "exact limit", in: "hello", n: 5, want: "hello"},
		{name: "ascii cut", in: "hello world", n: 5, want: "hello"},
		{name: "multibyte kept whole", in: "日本語のノート", n: 3, want: "日本語"},
		{name: "zero limit", in: "hello", n: 0, want: ""},
		{name: "empty input", in: "", n: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestTruncateLargeInput(t *testing.T) {
	got := Truncate(strings.Repeat("y", 2_000_000), MaxContentLength)
	assert.Equal(t, MaxContentLength, utf8.RuneCountInString(got))
}

func TestNoteChanges(t *testing.T) {
	t.Run("MoveToFolder carries a folder id", func(t *testing.T) {
		c := MoveToFolder("f1")
		assert.Equal(t, FieldFolder, c.Field)
		id, ok := c.Value.(*string)
		require.True(t, ok)
		require.NotNil(t, id)
		assert.Equal(t, "f1", *id)
	})

	t.Run("ClearFolder carries an explicit nil", func(t *testing.T) {
		c := ClearFolder()
		assert.Equal(t, FieldFolder, c.Field)
		id, ok := c.Value.(*string)
		require.True(t, ok)
		assert.Nil(t, id)
	})

	t.Run("SetArchived carries a bool", func(t *testing.T) {
		c := SetArchived(true)
		assert.Equal(t, FieldArchived, c.Field)
		assert.Equal(t, true, c.Value)
	})

	t.Run("SetTitle and SetContent carry strings", func(t *testing.T) {
		assert.Equal(t, NoteChange{Field: FieldTitle, Value: "t"}, SetTitle("t"))
		assert.Equal(t, NoteChange{Field: FieldContent, Value: "c"}, SetContent("c"))
	})
}

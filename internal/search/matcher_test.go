package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bracketHighlighter = HighlighterFunc(func(match string) string {
	return "[" + match + "]"
})

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMatcher_MatchFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pattern string
		want    []models.SearchResult
	}{
		{
			name:    "matches on two lines",
			content: "hello world\nfoo hello\n",
			pattern: "hello",
			want: []models.SearchResult{
				{LineNumber: 0, MatchText: "[hello] world", Line: "hello world", Column: 0, Length: 5},
				{LineNumber: 1, MatchText: "foo [hello]", Line: "foo hello", Column: 4, Length: 5},
			},
		},
		{
			name:    "only first occurrence per line",
			content: "abc abc abc\n",
			pattern: "abc",
			want: []models.SearchResult{
				{LineNumber: 0, MatchText: "[abc] abc abc", Line: "abc abc abc", Column: 0, Length: 3},
			},
		},
		{
			name:    "line numbers are zero based and skip non matching lines",
			content: "a\nb\nneedle here\nc\nanother needle\n",
			pattern: "needle",
			want: []models.SearchResult{
				{LineNumber: 2, MatchText: "[needle] here", Line: "needle here", Column: 0, Length: 6},
				{LineNumber: 4, MatchText: "another [needle]", Line: "another needle", Column: 8, Length: 6},
			},
		},
		{
			name:    "case sensitive",
			content: "Hello\nhello\n",
			pattern: "hello",
			want: []models.SearchResult{
				{LineNumber: 1, MatchText: "[hello]", Line: "hello", Column: 0, Length: 5},
			},
		},
		{
			name:    "regex metacharacters are literal",
			content: "a.c\nabc\n",
			pattern: "a.c",
			want: []models.SearchResult{
				{LineNumber: 0, MatchText: "[a.c]", Line: "a.c", Column: 0, Length: 3},
			},
		},
		{
			name:    "overlapping occurrences report first offset",
			content: "aaaa\n",
			pattern: "aa",
			want: []models.SearchResult{
				{LineNumber: 0, MatchText: "[aa]aa", Line: "aaaa", Column: 0, Length: 2},
			},
		},
		{
			name:    "multibyte text keeps byte offsets",
			content: "héllo wörld\n",
			pattern: "wörld",
			want: []models.SearchResult{
				{LineNumber: 0, MatchText: "héllo [wörld]", Line: "héllo wörld", Column: 7, Length: 6},
			},
		},
		{
			name:    "invalid line skipped without renumbering",
			content: "x\n\xff needle\nneedle\n",
			pattern: "needle",
			want: []models.SearchResult{
				{LineNumber: 2, MatchText: "[needle]", Line: "needle", Column: 0, Length: 6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "input.txt", tt.content)

			result := NewMatcher(bracketHighlighter).MatchFile(path, tt.pattern)
			require.NotNil(t, result)
			assert.Equal(t, path, result.FileName)
			assert.Equal(t, tt.want, result.SearchResults)
		})
	}
}

func TestMatcher_NoResult(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "b.log", "nothing here\n")

	m := NewMatcher(nil)

	assert.Nil(t, m.MatchFile(path, "hello"), "no occurrences")
	assert.Nil(t, m.MatchFile(filepath.Join(tmpDir, "missing.txt"), "hello"), "missing file")
	assert.Nil(t, m.MatchFile(tmpDir, "hello"), "directory")
	assert.Nil(t, m.MatchFile(path, ""), "empty pattern")
}

func TestMatcher_ResultCountEqualsMatchingLines(t *testing.T) {
	var sb strings.Builder
	want := 0
	for i := 0; i < 200; i++ {
		if i%7 == 0 {
			sb.WriteString("token token\n")
			want++
		} else {
			sb.WriteString("filler\n")
		}
	}
	path := writeFile(t, t.TempDir(), "many.txt", sb.String())

	result := NewMatcher(nil).MatchFile(path, "token")
	require.NotNil(t, result)
	require.Len(t, result.SearchResults, want)

	for i := 1; i < len(result.SearchResults); i++ {
		assert.Less(t, result.SearchResults[i-1].LineNumber, result.SearchResults[i].LineNumber)
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", "hello world\nfoo hello\nbar\n")
	m := NewMatcher(bracketHighlighter)

	first := m.MatchFile(path, "hello")
	second := m.MatchFile(path, "hello")
	assert.Equal(t, first, second)
}

func TestHighlighters(t *testing.T) {
	assert.Equal(t, "x", PlainHighlighter{}.Highlight("x"))
	assert.Equal(t, "x", NewColorHighlighter(false).Highlight("x"))

	colored := NewColorHighlighter(true).Highlight("x")
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "x")
}

package search

import (
	"strings"

	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
)

// FileMatcher searches a single file for a literal pattern.
// Implementations must not return errors: unreadable files simply yield nil.
type FileMatcher interface {
	MatchFile(path, pattern string) *models.FileSearchResult
}

// MatcherFunc adapts a plain function to FileMatcher.
type MatcherFunc func(path, pattern string) *models.FileSearchResult

// MatchFile calls f(path, pattern).
func (f MatcherFunc) MatchFile(path, pattern string) *models.FileSearchResult {
	return f(path, pattern)
}

// Matcher is the default FileMatcher. It reads the file lazily and reports
// the first occurrence of the pattern on each line.
type Matcher struct {
	highlighter Highlighter
}

// NewMatcher creates a Matcher. A nil highlighter leaves matches undecorated.
func NewMatcher(h Highlighter) *Matcher {
	if h == nil {
		h = PlainHighlighter{}
	}
	return &Matcher{highlighter: h}
}

// MatchFile scans path line by line and returns every line containing
// pattern, in line order. It returns nil when nothing matched, when the
// file could not be read, or when pattern is empty.
func (m *Matcher) MatchFile(path, pattern string) *models.FileSearchResult {
	if pattern == "" {
		return nil
	}

	var matches []models.SearchResult
	for line := range fileutil.ReadLines(path) {
		if result, ok := m.matchLine(line, pattern); ok {
			matches = append(matches, result)
		}
	}

	if len(matches) == 0 {
		return nil
	}

	return &models.FileSearchResult{
		FileName:      path,
		SearchResults: matches,
	}
}

// matchLine reports the first occurrence of pattern in line, if any.
func (m *Matcher) matchLine(line fileutil.Line, pattern string) (models.SearchResult, bool) {
	index := strings.Index(line.Text, pattern)
	if index < 0 {
		return models.SearchResult{}, false
	}

	before := line.Text[:index]
	after := line.Text[index+len(pattern):]

	return models.SearchResult{
		LineNumber: line.Number,
		MatchText:  before + m.highlighter.Highlight(pattern) + after,
		Line:       line.Text,
		Column:     index,
		Length:     len(pattern),
	}, true
}

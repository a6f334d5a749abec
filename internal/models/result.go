package models

import (
	"fmt"
	"strings"
)

// SearchResult is a single matching line within a file.
// It is created by the matcher and never mutated afterwards.
type SearchResult struct {
	LineNumber int    // Zero-based physical line index
	MatchText  string // Line with the first occurrence of the pattern emphasised
	Line       string // Raw line text without emphasis
	Column     int    // Byte offset of the first occurrence within Line
	Length     int    // Byte length of the matched pattern
}

// String renders the result as "<line_number>: <match_text>".
func (r SearchResult) String() string {
	return fmt.Sprintf("%d: %s", r.LineNumber, r.MatchText)
}

// Before returns the raw text preceding the match.
func (r SearchResult) Before() string {
	return r.Line[:r.Column]
}

// Match returns the raw matched text.
func (r SearchResult) Match() string {
	return r.Line[r.Column : r.Column+r.Length]
}

// After returns the raw text following the match.
func (r SearchResult) After() string {
	return r.Line[r.Column+r.Length:]
}

// FileSearchResult groups every match found in one file, in line order.
// A FileSearchResult is only built when at least one match exists.
type FileSearchResult struct {
	FileName      string
	SearchResults []SearchResult
}

// MatchCount returns the number of matching lines in the file.
func (f FileSearchResult) MatchCount() int {
	return len(f.SearchResults)
}

// String renders the file name followed by one line per match.
func (f FileSearchResult) String() string {
	var sb strings.Builder
	sb.WriteString(f.FileName)
	sb.WriteString("\n")
	for _, result := range f.SearchResults {
		sb.WriteString(result.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Candidate is a file selected for searching.
// Index is the candidate's position in selection order and is used to
// restore a stable presentation order after concurrent completion.
type Candidate struct {
	Index int
	Path  string
}

// Outcome is the result of searching one candidate.
// A nil Result means the file produced no matches (or could not be read).
type Outcome struct {
	Candidate Candidate
	Result    *FileSearchResult
}

// Matched reports whether the outcome carries a result.
func (o Outcome) Matched() bool {
	return o.Result != nil
}

// Summary holds aggregate counters for a completed search run.
type Summary struct {
	Candidates   int // Files that were searched
	FilesMatched int // Files with at least one match
	TotalMatches int // Matching lines across all files
}

// Summarize computes counters for a run from its aggregated results.
func Summarize(candidates int, results []FileSearchResult) Summary {
	s := Summary{Candidates: candidates, FilesMatched: len(results)}
	for _, r := range results {
		s.TotalMatches += r.MatchCount()
	}
	return s
}

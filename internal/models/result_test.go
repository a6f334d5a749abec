package models

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchResult_String(t *testing.T) {
	r := SearchResult{LineNumber: 3, MatchText: "foo [bar] baz"}
	assert.Equal(t, "3: foo [bar] baz", r.String())
}

func TestSearchResult_Parts(t *testing.T) {
	r := SearchResult{Line: "say hello world", Column: 4, Length: 5}

	assert.Equal(t, "say ", r.Before())
	assert.Equal(t, "hello", r.Match())
	assert.Equal(t, " world", r.After())
}

func TestFileSearchResult_String(t *testing.T) {
	f := FileSearchResult{
		FileName: "a.txt",
		SearchResults: []SearchResult{
			{LineNumber: 0, MatchText: "hello world"},
			{LineNumber: 1, MatchText: "foo hello"},
		},
	}

	assert.Equal(t, "a.txt\n0: hello world\n1: foo hello\n", f.String())
	assert.Equal(t, 2, f.MatchCount())
}

func TestOutcome_Matched(t *testing.T) {
	assert.False(t, Outcome{Candidate: Candidate{Path: "x"}}.Matched())
	assert.True(t, Outcome{Result: &FileSearchResult{FileName: "x"}}.Matched())
}

func TestSummarize(t *testing.T) {
	results := []FileSearchResult{
		{FileName: "a", SearchResults: make([]SearchResult, 2)},
		{FileName: "b", SearchResults: make([]SearchResult, 3)},
	}

	s := Summarize(7, results)
	assert.Equal(t, Summary{Candidates: 7, FilesMatched: 2, TotalMatches: 5}, s)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("threads", "must be greater than 0, got %d", 0)

	assert.Equal(t, "invalid configuration: threads: must be greater than 0, got 0", err.Error())
	assert.True(t, IsConfigurationError(err))
	assert.True(t, IsConfigurationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsDirectoryAccessError(err))
}

func TestDirectoryAccessError(t *testing.T) {
	err := NewDirectoryAccessError("/missing", os.ErrNotExist)

	assert.Contains(t, err.Error(), "/missing")
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, IsDirectoryAccessError(fmt.Errorf("select: %w", err)))
	assert.False(t, IsConfigurationError(err))
}

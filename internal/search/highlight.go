package search

import (
	"github.com/fatih/color"
)

// Highlighter decorates the matched portion of a line.
type Highlighter interface {
	Highlight(match string) string
}

// HighlighterFunc adapts a plain function to the Highlighter interface.
type HighlighterFunc func(match string) string

// Highlight calls f(match).
func (f HighlighterFunc) Highlight(match string) string {
	return f(match)
}

// PlainHighlighter leaves matches undecorated.
type PlainHighlighter struct{}

// Highlight returns match unchanged.
func (PlainHighlighter) Highlight(match string) string {
	return match
}

// ColorHighlighter renders matches in bold red.
// Escape codes are only emitted when colour output is enabled.
type ColorHighlighter struct {
	c *color.Color
}

// NewColorHighlighter creates a ColorHighlighter.
// When enabled is false the highlighter never emits escape codes, even on a TTY.
func NewColorHighlighter(enabled bool) *ColorHighlighter {
	c := color.New(color.FgRed, color.Bold)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &ColorHighlighter{c: c}
}

// Highlight wraps match in the highlighter's colour.
func (h *ColorHighlighter) Highlight(match string) string {
	return h.c.Sprint(match)
}

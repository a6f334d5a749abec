package display

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/harrison/scout/internal/models"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Format selects how a report is rendered.
type Format string

const (
	// FormatText prints each file followed by "<line>: <annotated line>" rows.
	FormatText Format = "text"
	// FormatMarkdown prints a heading per file and a bullet per match.
	FormatMarkdown Format = "markdown"
	// FormatHTML renders the markdown report to a standalone HTML page.
	FormatHTML Format = "html"
)

// ParseFormat converts a user-supplied format name. An empty string
// selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", models.NewConfigurationError("format", "unknown format %q, must be one of: %s, %s, %s", s, FormatText, FormatMarkdown, FormatHTML)
	}
}

// Document is everything a Reporter needs to render one search run.
type Document struct {
	Directory string
	Pattern   string
	Results   []models.FileSearchResult
	Summary   models.Summary
}

// Reporter renders search results in a single format.
type Reporter struct {
	format   Format
	markdown goldmark.Markdown
}

// NewReporter creates a Reporter for format.
func NewReporter(format Format) *Reporter {
	return &Reporter{
		format:   format,
		// File content is escaped by renderMarkdown; the only raw HTML
		// left is the <strong> emphasis around each match.
		markdown: goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe())),
	}
}

// Format returns the reporter's output format.
func (r *Reporter) Format() Format {
	return r.format
}

// Render returns the rendered report.
func (r *Reporter) Render(doc Document) ([]byte, error) {
	switch r.format {
	case FormatMarkdown:
		return []byte(renderMarkdown(doc)), nil
	case FormatHTML:
		return r.renderHTML(doc)
	default:
		return []byte(renderText(doc)), nil
	}
}

// Write renders doc and writes it to w.
func (r *Reporter) Write(w io.Writer, doc Document) error {
	data, err := r.Render(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// renderText joins each file block with a blank line. Match text is used
// as-is so terminal highlighting survives.
func renderText(doc Document) string {
	blocks := make([]string, 0, len(doc.Results))
	for _, result := range doc.Results {
		blocks = append(blocks, result.String())
	}
	return strings.Join(blocks, "\n")
}

func renderMarkdown(doc Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Search results for %s\n\n", escapeMarkdown(doc.Pattern))
	fmt.Fprintf(&b, "Directory: %s\n\n", escapeMarkdown(doc.Directory))
	fmt.Fprintf(&b, "%d match(es) in %d of %d file(s)\n",
		doc.Summary.TotalMatches, doc.Summary.FilesMatched, doc.Summary.Candidates)

	for _, result := range doc.Results {
		fmt.Fprintf(&b, "\n## %s\n\n", escapeMarkdown(result.FileName))
		for _, match := range result.SearchResults {
			// An inline tag keeps the emphasis when the match starts or
			// ends with punctuation or whitespace, where ** would not.
			fmt.Fprintf(&b, "- %d: %s<strong>%s</strong>%s\n",
				match.LineNumber,
				escapeMarkdown(match.Before()),
				escapeMarkdown(match.Match()),
				escapeMarkdown(match.After()),
			)
		}
	}

	return b.String()
}

func (r *Reporter) renderHTML(doc Document) ([]byte, error) {
	var body bytes.Buffer
	if err := r.markdown.Convert([]byte(renderMarkdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>scout: %s</title>\n", html.EscapeString(doc.Pattern))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), nil
}

// escapeMarkdown backslash-escapes ASCII punctuation so arbitrary file
// content renders literally, including raw HTML.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && isASCIIPunct(byte(r)) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

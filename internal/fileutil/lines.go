package fileutil

import (
	"bufio"
	"io"
	"iter"
	"os"
	"strings"
	"unicode/utf8"
)

// Line is one line of text together with its physical zero-based index.
type Line struct {
	Number int
	Text   string
}

// ReadLines returns a lazy sequence of the lines in the file at path.
//
// The file is opened when iteration starts and closed when it ends, so
// creating the sequence is cheap. If the file cannot be opened the
// sequence is empty; callers treat "could not read" the same as "nothing
// found". Lines that are not valid UTF-8 are skipped without affecting
// the numbering of later lines. A read error ends the sequence.
func ReadLines(path string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()

		scanLines(f, yield)
	}
}

// scanLines reads r line by line without a line length ceiling.
func scanLines(r io.Reader, yield func(Line) bool) {
	reader := bufio.NewReader(r)
	for number := 0; ; number++ {
		raw, err := reader.ReadString('\n')
		if len(raw) > 0 && (err == nil || err == io.EOF) {
			text := strings.TrimSuffix(raw, "\n")
			text = strings.TrimSuffix(text, "\r")
			if utf8.ValidString(text) {
				if !yield(Line{Number: number, Text: text}) {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

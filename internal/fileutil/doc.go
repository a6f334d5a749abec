// Package fileutil provides the file system side of a search run: choosing
// which files to search and reading their lines.
//
// # Candidate Selection
//
// SelectFiles lists the immediate children of a directory (no recursion)
// and keeps the regular files whose path contains a literal filter
// substring. The filter "*" accepts every file. An optional glob, matched
// against the base name, narrows the selection further:
//
//	candidates, err := fileutil.SelectFiles("./logs", fileutil.SelectOptions{
//	    Filter: ".log",
//	    Glob:   "app-*",
//	})
//	if err != nil {
//	    // *models.DirectoryAccessError: the run cannot continue
//	}
//
// Candidates keep directory order and carry their index so results can be
// put back into that order after concurrent processing.
//
// # Line Reading
//
// ReadLines returns an iter.Seq that opens the file on first use:
//
//	for line := range fileutil.ReadLines(path) {
//	    fmt.Println(line.Number, line.Text)
//	}
//
// Reading never fails. A file that cannot be opened yields nothing, and a
// line that is not valid UTF-8 is skipped while the remaining lines keep
// their physical line numbers.
package fileutil

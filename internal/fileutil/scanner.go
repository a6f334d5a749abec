package fileutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/harrison/scout/internal/models"
)

// WildcardFilter is the filter value that accepts every file name.
const WildcardFilter = "*"

// SelectOptions configures candidate selection
type SelectOptions struct {
	// Filter is a literal substring the file's path must contain.
	// WildcardFilter or an empty string accepts every file.
	Filter string
	// Glob is an optional shell-style pattern matched against the base name.
	// When set it is applied in addition to Filter.
	Glob string
}

// SelectFiles lists the immediate children of dir and returns the regular
// files that pass the filter, in directory order.
//
// Subdirectories are never entered. Symlinks are followed; an entry whose
// target cannot be resolved is not a regular file and is skipped.
//
// A failure to list dir, or to read any of its entries, is returned as a
// *models.DirectoryAccessError and no candidates are returned.
func SelectFiles(dir string, opts SelectOptions) ([]models.Candidate, error) {
	accept, err := opts.Matcher()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, models.NewDirectoryAccessError(dir, err)
	}

	candidates := make([]models.Candidate, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if !isRegularFile(entry, path) {
			continue
		}
		if !accept(path) {
			continue
		}

		candidates = append(candidates, models.Candidate{
			Index: len(candidates),
			Path:  path,
		})
	}

	return candidates, nil
}

// Matcher compiles the options into a predicate over file paths. It does
// not look at the file system, so it also suits paths reported by a
// watcher for files that no longer exist.
func (o SelectOptions) Matcher() (func(path string) bool, error) {
	var g glob.Glob
	if o.Glob != "" {
		compiled, err := glob.Compile(o.Glob)
		if err != nil {
			return nil, models.NewConfigurationError("glob", "invalid pattern %q: %v", o.Glob, err)
		}
		g = compiled
	}

	return func(path string) bool {
		if !matchesFilter(path, o.Filter) {
			return false
		}
		return g == nil || g.Match(filepath.Base(path))
	}, nil
}

// isRegularFile reports whether the entry is, or links to, a regular file.
func isRegularFile(entry os.DirEntry, path string) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&os.ModeSymlink == 0 {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// matchesFilter applies the literal substring filter to the textual path.
func matchesFilter(path, filter string) bool {
	if filter == "" || filter == WildcardFilter {
		return true
	}
	return strings.Contains(path, filter)
}

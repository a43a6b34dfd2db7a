package docpub

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oasis-open/docpub/internal/fileutil"
)

// ResolveSource locates the single source file with the given extension in
// dir, searching non-recursively. The directory path is sanitized before
// probing. Zero matches fail with ErrSourceNotFound. Multiple matches are
// not rejected: the lexicographically-first file is selected and a warning
// is emitted through warnf. Callers that expect strictness must enforce a
// single-file layout themselves.
func ResolveSource(dir, ext string, warnf func(format string, args ...any)) (string, error) {
	dir = fileutil.SanitizePath(dir)
	if dir == "" {
		return "", fmt.Errorf("%w: empty source directory", ErrSourceNotFound)
	}
	if !fileutil.DirExists(dir) {
		return "", fmt.Errorf("%w: directory %s does not exist", ErrSourceNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading directory %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by filename, so the first match is
	// the lexicographically-first one.
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no %s file in %s", ErrSourceNotFound, ext, dir)
	case 1:
		return matches[0], nil
	default:
		if warnf != nil {
			warnf("found %d %s files in %s, using %s", len(matches), ext, dir, matches[0])
		}
		return matches[0], nil
	}
}

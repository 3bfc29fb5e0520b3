// Package scanner resolves configured target glob patterns to the set of
// source files that should currently be indexed.
package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	rperrors "github.com/repocks/repocks/internal/errors"
)

// ResolveTargets expands each glob pattern and returns the union of matching
// regular files as absolute paths, deduplicated and sorted ascending.
// Patterns support `**` for recursive matching and `~/` for the home
// directory. A pattern that matches nothing contributes nothing; it is not
// an error, so a fresh machine with no documents resolves to an empty set.
func ResolveTargets(patterns []string, workdir string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		expanded, err := expandHome(pattern)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(workdir, expanded)
		}

		slashed := filepath.ToSlash(expanded)
		if !doublestar.ValidatePattern(slashed) {
			return nil, rperrors.ValidationError("invalid target pattern: "+pattern, nil)
		}

		base, rest := doublestar.SplitPattern(slashed)

		// A missing base simply matches nothing; any other problem with the
		// base or the walk skips the pattern with a logged reason.
		if info, serr := os.Stat(base); serr != nil {
			if !os.IsNotExist(serr) {
				logPatternSkip(pattern, base, serr.Error())
			}
			continue
		} else if !info.IsDir() {
			logPatternSkip(pattern, base, "base is not a directory")
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(base), rest,
			doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			logPatternSkip(pattern, base, err.Error())
			continue
		}

		for _, m := range matches {
			path := filepath.Join(base, filepath.FromSlash(m))
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[path] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)

	return files, nil
}

func logPatternSkip(pattern, base, reason string) {
	slog.Warn("target_pattern_skipped",
		slog.String("pattern", pattern),
		slog.String("base", base),
		slog.String("error", reason))
}

// expandHome replaces a leading ~/ with the current user's home directory.
func expandHome(pattern string) (string, error) {
	if pattern == "~" || strings.HasPrefix(pattern, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if pattern == "~" {
			return home, nil
		}
		return filepath.Join(home, pattern[2:]), nil
	}
	return pattern, nil
}

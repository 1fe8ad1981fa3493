// Package batch discovers the Markdown documents under a root, draws the
// tier sample and validates the worklist with a bounded worker pool.
package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ErrRootNotDirectory is returned when the batch root is not a directory.
var ErrRootNotDirectory = errors.New("root is not a directory")

// Discover walks root and returns the slash-separated, root-relative paths
// of every *.md file, sorted. Paths matching an exclude pattern are
// skipped, as is everything under the skip directories (absolute or
// root-relative), which keeps a report directory inside root from being
// scanned.
func Discover(fsys afero.Fs, root string, exclude []string, skip ...string) ([]string, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("batch root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("batch root %s: %w", root, ErrRootNotDirectory)
	}

	skipRel := skipPaths(root, skip)
	var paths []string
	err = afero.Walk(fsys, root, func(full string, info os.FileInfo, err error) error {
		if err != nil {
			if full == root {
				return err
			}
			// Unreadable subtrees are left out rather than aborting the run.
			return skipEntry(info)
		}
		rel, err := filepath.Rel(root, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if skipRel[rel] || excludedDir(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(path.Ext(rel), ".md") || excludedFile(rel, exclude) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func skipEntry(info fs.FileInfo) error {
	if info != nil && info.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

// skipPaths converts skip directories to root-relative slash paths,
// dropping those outside root.
func skipPaths(root string, skip []string) map[string]bool {
	out := make(map[string]bool, len(skip))
	for _, dir := range skip {
		if dir == "" {
			continue
		}
		rel := dir
		if filepath.IsAbs(dir) {
			r, err := filepath.Rel(root, dir)
			if err != nil {
				continue
			}
			rel = r
		}
		rel = filepath.ToSlash(filepath.Clean(rel))
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		out[rel] = true
	}
	return out
}

// excludedFile reports whether rel or its base name matches a pattern.
func excludedFile(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if match(pattern, rel) || match(pattern, path.Base(rel)) {
			return true
		}
	}
	return false
}

// excludedDir reports whether a pattern names the directory rel or would
// exclude everything inside it, so "**/vendor/**" prunes the subtree.
func excludedDir(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if match(pattern, rel) || match(pattern, path.Base(rel)) || match(pattern, rel+"/*") {
			return true
		}
	}
	return false
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

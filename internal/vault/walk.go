// Package vault indexes a directory of markdown documents into immutable
// snapshots that answer link-target and reference queries.
package vault

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/mdvault/internal/paths"
)

// DefaultIgnoredDirs are never descended into.
var DefaultIgnoredDirs = []string{".git", ".mdvault", ".trash", ".obsidian", "node_modules"}

// WalkResult describes one markdown file found by WalkMarkdownFiles.
type WalkResult struct {
	Path         string
	RelativePath string
	FileMtime    int64 // Unix nanoseconds
	Size         int64
	Error        error
}

// WalkMarkdownFiles walks all markdown files in a vault and calls the handler
// for each. It skips ignored directories and non-markdown files. Per-file
// errors are reported through the handler rather than stopping the walk.
func WalkMarkdownFiles(vaultPath string, ignore []string, handler func(result WalkResult) error) error {
	skip := make(map[string]bool, len(DefaultIgnoredDirs)+len(ignore))
	for _, name := range DefaultIgnoredDirs {
		skip[name] = true
	}
	for _, name := range ignore {
		skip[strings.Trim(filepath.ToSlash(name), "/")] = true
	}

	return filepath.WalkDir(vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			relativePath, _ := paths.RelPath(vaultPath, path)
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		if d.IsDir() {
			if path == vaultPath {
				return nil
			}
			relativePath, _ := paths.RelPath(vaultPath, path)
			if skip[d.Name()] || skip[relativePath] {
				return filepath.SkipDir
			}
			return nil
		}

		if !paths.IsDocument(path) {
			return nil
		}

		relativePath, err := paths.RelPath(vaultPath, path)
		if err != nil {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		return handler(WalkResult{
			Path:         path,
			RelativePath: relativePath,
			FileMtime:    info.ModTime().UnixNano(),
			Size:         info.Size(),
		})
	})
}

// Package paths provides canonical helpers for vault-relative document paths:
// - normalizing slashes and leading "./"
// - deriving a document's stem (the name links use to refer to it)
// - converting between absolute paths and vault-relative paths
package paths

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// DocumentExt is the extension of every indexed document.
const DocumentExt = ".md"

// ErrOutsideVault is returned when an absolute path does not live under the vault root.
var ErrOutsideVault = errors.New("path is outside the vault")

// NormalizeRelPath normalizes a vault-relative path-like value:
// - converts OS separators to '/'
// - trims leading "./" and leading "/"
// - collapses repeated '/'
func NormalizeRelPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// IsDocument reports whether p names a markdown document.
func IsDocument(p string) bool {
	return strings.EqualFold(path.Ext(p), DocumentExt)
}

// StripDocumentExt removes a trailing ".md" (case-insensitive).
func StripDocumentExt(p string) string {
	if IsDocument(p) {
		return p[:len(p)-len(DocumentExt)]
	}
	return p
}

// Stem returns the filename of p without directories or the document extension.
//
// Examples:
// - "daily/2024-01-01.md" -> "2024-01-01"
// - "bar baz.md"          -> "bar baz"
func Stem(p string) string {
	return StripDocumentExt(path.Base(NormalizeRelPath(p)))
}

// RelPath converts an absolute path to a slash-separated path relative to root.
func RelPath(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ErrOutsideVault
	}
	return NormalizeRelPath(rel), nil
}

// AbsPath joins a vault-relative path onto root.
func AbsPath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(NormalizeRelPath(rel)))
}

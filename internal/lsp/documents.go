package lsp

import (
	"sort"
	"sync"
)

// DocumentManager tracks documents open in the editor, keyed by vault-relative path.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// Document represents an open document in the editor. Its text lives in the
// vault store.
type Document struct {
	Path    string
	Version int32
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[string]*Document),
	}
}

// Open registers a newly opened document.
func (dm *DocumentManager) Open(path string, version int32) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.documents[path] = &Document{Path: path, Version: version}
}

// Update records a new version of an open document. It reports false for
// documents that are not open and for versions older than the last one seen.
func (dm *DocumentManager) Update(path string, version int32) bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[path]
	if !ok || version < doc.Version {
		return false
	}
	doc.Version = version
	return true
}

// Close removes a document from tracking.
func (dm *DocumentManager) Close(path string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	delete(dm.documents, path)
}

// IsOpen reports whether the editor owns the document's content.
func (dm *DocumentManager) IsOpen(path string) bool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	_, ok := dm.documents[path]
	return ok
}

// Paths returns the paths of all open documents, sorted.
func (dm *DocumentManager) Paths() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	paths := make([]string, 0, len(dm.documents))
	for p := range dm.documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Package hover resolves the link under the cursor and previews its target.
package hover

import (
	"github.com/aidanlsb/mdvault/internal/vault"
)

// Index is what hover reads. *vault.Snapshot implements it.
type Index interface {
	ReferenceAt(path string, pos vault.Position) (vault.Reference, bool)
	Resolve(ref vault.Reference) []vault.Referenceable
}

// Previewer renders a target.
type Previewer interface {
	Preview(r vault.Referenceable) (string, bool)
}

// Result is a hover answer.
type Result struct {
	Reference vault.Reference
	Target    vault.Referenceable
	Markdown  string
}

// Resolve previews the target of the link at pos. It reports false when the
// cursor is not on a link or nothing can be rendered for its target.
func Resolve(index Index, previewer Previewer, path string, pos vault.Position) (Result, bool) {
	ref, ok := index.ReferenceAt(path, pos)
	if !ok || !ref.IsLink() {
		return Result{}, false
	}
	for _, target := range index.Resolve(ref) {
		md, ok := previewer.Preview(target)
		if !ok {
			continue
		}
		return Result{Reference: ref, Target: target, Markdown: md}, true
	}
	return Result{}, false
}

// Package preview renders the short markdown excerpt shown for a link target.
package preview

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/mdvault/internal/vault"
)

// Section headings by target kind.
const (
	FileHeading    = "File Preview:"
	HeadingHeading = "Heading Preview:"
	BlockHeading   = "Block Preview:"
	GenericHeading = "Preview:"
)

// Index is what previews read from. *vault.Snapshot implements it.
type Index interface {
	Line(path string, n int) (string, bool)
	AnchorRange(r vault.Referenceable) (vault.Range, bool)
	ReferencesTo(r vault.Referenceable) []vault.Reference
}

// Renderer builds previews from an index.
type Renderer struct {
	Index Index
	// Lines is how many lines past the anchor are included.
	Lines int
}

// New returns a Renderer showing lines past each anchor.
func New(index Index, lines int) *Renderer {
	return &Renderer{Index: index, Lines: lines}
}

// Body returns the anchor lines of r plus the configured number of following
// lines, each newline terminated. Lines past the end of the document are
// skipped. Unresolved targets have no body.
func (p *Renderer) Body(r vault.Referenceable) (string, bool) {
	anchor, ok := p.Index.AnchorRange(r)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	for n := anchor.Start.Line; n <= anchor.End.Line+p.Lines; n++ {
		line, ok := p.Index.Line(r.Path, n)
		if !ok {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String(), true
}

// Preview renders the full markdown preview for r.
func (p *Renderer) Preview(r vault.Referenceable) (string, bool) {
	if r.IsUnresolved() {
		n := len(p.Index.ReferencesTo(r))
		noun := "links"
		if n == 1 {
			noun = "link"
		}
		return document(GenericHeading, fmt.Sprintf("`%s` does not exist yet (%d %s).\n", describe(r), n, noun)), true
	}
	body, ok := p.Body(r)
	if !ok {
		return "", false
	}
	return document(Heading(r.Kind), body), true
}

// Heading returns the preview heading for a target kind.
func Heading(k vault.Kind) string {
	switch k {
	case vault.KindFile:
		return FileHeading
	case vault.KindHeading:
		return HeadingHeading
	case vault.KindBlock:
		return BlockHeading
	default:
		return GenericHeading
	}
}

func document(heading, body string) string {
	return heading + "\n---\n\n" + body
}

func describe(r vault.Referenceable) string {
	switch r.Kind {
	case vault.KindUnresolvedHeading:
		return r.Name + "#" + r.Heading
	case vault.KindUnresolvedBlock:
		return r.Name + "#^" + r.Index
	}
	return r.Name
}

package vault

import (
	"sort"
	"sync"

	"github.com/aidanlsb/mdvault/internal/parser"
)

// Snapshot is an immutable view of every parsed document in a vault.
// It is safe for concurrent use. Derived indexes (targets, incoming links,
// resolution tables) are built on first query and shared afterwards.
type Snapshot struct {
	root  string
	docs  map[string]*parser.Document
	order []string

	once sync.Once
	idx  *derived
}

type derived struct {
	byRelPath map[string]string
	byStem    map[string][]string
	bySlug    map[string][]string

	refs     map[string][]Reference
	allRefs  []Reference
	incoming map[Referenceable][]Reference

	byPath map[string][]Referenceable
	all    []Referenceable
}

// NewSnapshot builds a snapshot from parsed documents keyed by their Path.
func NewSnapshot(root string, docs []*parser.Document) *Snapshot {
	m := make(map[string]*parser.Document, len(docs))
	for _, d := range docs {
		m[d.Path] = d
	}
	return newSnapshot(root, m)
}

func newSnapshot(root string, docs map[string]*parser.Document) *Snapshot {
	order := make([]string, 0, len(docs))
	for p := range docs {
		order = append(order, p)
	}
	sort.Strings(order)
	return &Snapshot{root: root, docs: docs, order: order}
}

// Root returns the absolute vault directory.
func (s *Snapshot) Root() string {
	return s.root
}

// Paths returns every document path in sorted order.
func (s *Snapshot) Paths() []string {
	return append([]string(nil), s.order...)
}

// Document returns the parsed document at path.
func (s *Snapshot) Document(path string) (*parser.Document, bool) {
	d, ok := s.docs[path]
	return d, ok
}

// Line returns line n (0-indexed) of the document at path.
func (s *Snapshot) Line(path string, n int) (string, bool) {
	d, ok := s.docs[path]
	if !ok || n < 0 || n >= len(d.Lines) {
		return "", false
	}
	return d.Lines[n], true
}

// Referenceables enumerates link targets. With an empty path every target in
// the vault is returned, unresolved ones last; otherwise only the document at
// path and its headings and blocks. Order is deterministic.
func (s *Snapshot) Referenceables(path string) []Referenceable {
	d := s.derived()
	if path == "" {
		return d.all
	}
	return d.byPath[path]
}

// References enumerates references, for one document or (with an empty path)
// the whole vault, in document then position order.
func (s *Snapshot) References(path string) []Reference {
	d := s.derived()
	if path == "" {
		return d.allRefs
	}
	return d.refs[path]
}

// ReferenceAt returns the reference in the document at path whose range
// contains pos.
func (s *Snapshot) ReferenceAt(path string, pos Position) (Reference, bool) {
	for _, ref := range s.derived().refs[path] {
		if ref.Range.Contains(pos) {
			return ref, true
		}
	}
	return Reference{}, false
}

// ReferencesTo returns every reference in the vault that resolves to r.
func (s *Snapshot) ReferencesTo(r Referenceable) []Reference {
	return s.derived().incoming[r]
}

// Resolve returns the targets ref points at. A link always resolves to
// exactly one target, possibly an unresolved one; tags resolve to nothing.
func (s *Snapshot) Resolve(ref Reference) []Referenceable {
	target, ok := s.resolve(s.derived(), ref)
	if !ok {
		return nil
	}
	return []Referenceable{target}
}

// AnchorRange returns the line range a resolved target starts at: line 0 for
// a file, the heading or block line otherwise.
func (s *Snapshot) AnchorRange(r Referenceable) (Range, bool) {
	doc, ok := s.docs[r.Path]
	if !ok || r.IsUnresolved() {
		return Range{}, false
	}
	switch r.Kind {
	case KindFile:
		return Range{}, true
	case KindHeading:
		for _, h := range doc.Headings {
			if h.Text == r.Heading {
				return lineRange(doc, h.Line), true
			}
		}
	case KindBlock:
		for _, b := range doc.Blocks {
			if b.Index == r.Index {
				return lineRange(doc, b.Line), true
			}
		}
	}
	return Range{}, false
}

func lineRange(doc *parser.Document, line int) Range {
	return Range{
		Start: Position{Line: line},
		End:   Position{Line: line, Character: len([]rune(doc.Lines[line]))},
	}
}

func (s *Snapshot) derived() *derived {
	s.once.Do(func() {
		s.idx = s.build()
	})
	return s.idx
}

func (s *Snapshot) build() *derived {
	d := &derived{
		byRelPath: make(map[string]string, len(s.order)),
		byStem:    make(map[string][]string),
		bySlug:    make(map[string][]string),
		refs:      make(map[string][]Reference, len(s.order)),
		incoming:  make(map[Referenceable][]Reference),
		byPath:    make(map[string][]Referenceable, len(s.order)),
	}

	for _, p := range s.order {
		d.addFile(p)

		doc := s.docs[p]
		own := []Referenceable{File(p)}
		headings := make(map[string]bool, len(doc.Headings))
		for _, h := range doc.Headings {
			if headings[h.Text] {
				continue
			}
			headings[h.Text] = true
			own = append(own, Heading(p, h.Text))
		}
		for _, b := range doc.Blocks {
			own = append(own, IndexedBlock(p, b.Index))
		}
		d.byPath[p] = own
		d.all = append(d.all, own...)
	}

	var unresolved []Referenceable
	seen := make(map[Referenceable]bool)
	for _, p := range s.order {
		refs := documentReferences(s.docs[p])
		d.refs[p] = refs
		d.allRefs = append(d.allRefs, refs...)

		for _, ref := range refs {
			target, ok := s.resolve(d, ref)
			if !ok {
				continue
			}
			d.incoming[target] = append(d.incoming[target], ref)
			if target.IsUnresolved() && !seen[target] {
				seen[target] = true
				unresolved = append(unresolved, target)
			}
		}
	}
	d.all = append(d.all, unresolved...)

	return d
}

func documentReferences(doc *parser.Document) []Reference {
	refs := make([]Reference, 0, len(doc.Refs)+len(doc.Tags))
	for _, r := range doc.Refs {
		refs = append(refs, referenceFromMatch(doc.Path, r.Line, r.Match))
	}
	for _, t := range doc.Tags {
		refs = append(refs, referenceFromTag(doc.Path, t.Line, t.Tag))
	}
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i].Range.Start, refs[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return refs
}

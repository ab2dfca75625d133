package vault

import (
	"github.com/aidanlsb/mdvault/internal/links"
	"github.com/aidanlsb/mdvault/internal/paths"
)

// Position is a zero-based line and rune offset.
type Position struct {
	Line      int
	Character int
}

// LineRange is a half-open rune range on a single line.
type LineRange struct {
	Line  int
	Start int
	End   int
}

// Len returns the number of runes covered.
func (r LineRange) Len() int {
	return r.End - r.Start
}

// Range spans two positions. Reference ranges never span lines.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether p lies within r. Line and character bounds are
// both inclusive, so a cursor sitting just after a link still hits it.
func (r Range) Contains(p Position) bool {
	return r.Start.Line <= p.Line && p.Line <= r.End.Line &&
		r.Start.Character <= p.Character && p.Character <= r.End.Character
}

// Kind discriminates Referenceable variants.
type Kind int

const (
	KindFile Kind = iota
	KindHeading
	KindBlock
	KindUnresolvedFile
	KindUnresolvedHeading
	KindUnresolvedBlock
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindHeading:
		return "heading"
	case KindBlock:
		return "block"
	case KindUnresolvedFile:
		return "unresolved file"
	case KindUnresolvedHeading:
		return "unresolved heading"
	case KindUnresolvedBlock:
		return "unresolved block"
	default:
		return "unknown"
	}
}

// Referenceable is anything a link can target. It is comparable: two values
// are equal when their kind and identifying fields are equal, so it can key
// maps directly.
type Referenceable struct {
	Kind Kind
	// Path is the vault-relative document path of resolved targets.
	Path string
	// Name is the target name of unresolved targets, as written in the link
	// without the document extension.
	Name    string
	Heading string
	Index   string
}

// File returns the Referenceable for a whole document.
func File(path string) Referenceable {
	return Referenceable{Kind: KindFile, Path: path}
}

// Heading returns the Referenceable for a heading in a document.
func Heading(path, heading string) Referenceable {
	return Referenceable{Kind: KindHeading, Path: path, Heading: heading}
}

// IndexedBlock returns the Referenceable for a ^index block in a document.
func IndexedBlock(path, index string) Referenceable {
	return Referenceable{Kind: KindBlock, Path: path, Index: index}
}

// UnresolvedFile returns the Referenceable for a link to a missing document.
func UnresolvedFile(name string) Referenceable {
	return Referenceable{Kind: KindUnresolvedFile, Name: name}
}

// UnresolvedHeading returns the Referenceable for a link to a missing heading.
func UnresolvedHeading(name, heading string) Referenceable {
	return Referenceable{Kind: KindUnresolvedHeading, Name: name, Heading: heading}
}

// UnresolvedIndexedBlock returns the Referenceable for a link to a missing block.
func UnresolvedIndexedBlock(name, index string) Referenceable {
	return Referenceable{Kind: KindUnresolvedBlock, Name: name, Index: index}
}

// IsUnresolved reports whether r names a target that does not exist.
func (r Referenceable) IsUnresolved() bool {
	return r.Kind >= KindUnresolvedFile
}

// Stem is the name links use for r's document: the file stem for resolved
// targets and the written name for unresolved ones.
func (r Referenceable) Stem() string {
	if r.IsUnresolved() {
		return r.Name
	}
	return paths.Stem(r.Path)
}

// ReferenceKind discriminates Reference variants.
type ReferenceKind int

const (
	FileLink ReferenceKind = iota
	HeadingLink
	BlockLink
	Tag
)

// Reference is one link or tag occurrence in a document.
type Reference struct {
	Kind   ReferenceKind
	Syntax links.Syntax
	// Source is the vault-relative path of the document containing the reference.
	Source string
	// Target is the file part of the link; empty for links into Source itself.
	// For tags it is the tag name.
	Target string
	// Infile is the heading text or block index (without '^').
	Infile  string
	Display string
	Text    string
	Range   Range
}

// IsLink reports whether the reference is a link rather than a tag.
func (r Reference) IsLink() bool {
	return r.Kind != Tag
}

func referenceFromMatch(source string, line int, m links.Match) Reference {
	kind := FileLink
	infile := m.Infile
	switch {
	case m.IsBlock():
		kind = BlockLink
		infile = m.BlockIndex()
	case m.IsHeading():
		kind = HeadingLink
	}
	return Reference{
		Kind:    kind,
		Syntax:  m.Syntax,
		Source:  source,
		Target:  m.Target,
		Infile:  infile,
		Display: m.Display,
		Text:    m.Literal,
		Range: Range{
			Start: Position{Line: line, Character: m.Start},
			End:   Position{Line: line, Character: m.End},
		},
	}
}

func referenceFromTag(source string, line int, t links.Tag) Reference {
	return Reference{
		Kind:   Tag,
		Source: source,
		Target: t.Name,
		Text:   "#" + t.Name,
		Range: Range{
			Start: Position{Line: line, Character: t.Start},
			End:   Position{Line: line, Character: t.End},
		},
	}
}

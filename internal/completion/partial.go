package completion

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aidanlsb/mdvault/internal/links"
	"github.com/aidanlsb/mdvault/internal/vault"
)

// markdownPartialRe matches an unfinished markdown link ending at the cursor:
// [display](path or [display](path#infile
var markdownPartialRe = regexp.MustCompile(`\[(?P<display>[^\[\]\(\)]*)\]\((?P<path>[^\[\]\(\)\#]*)(\#(?P<infileref>[^\[\]\(\)]*))?$`)

var (
	displayGroup = markdownPartialRe.SubexpIndex("display")
	pathGroup    = markdownPartialRe.SubexpIndex("path")
	infileGroup  = markdownPartialRe.SubexpIndex("infileref")
)

// Fragment is a piece of typed text and where it sits on the line.
type Fragment struct {
	Text  string
	Range vault.LineRange
}

// InfileKind classifies the text after '#' in a link target.
type InfileKind int

const (
	HeadingRef InfileKind = iota + 1
	BlockRef
)

// InfileRef is the typed "#heading" or "#^block" part of a partial link.
// For block refs Text excludes the '^'.
type InfileRef struct {
	Kind InfileKind
	Fragment
}

// MarkdownPartial is an unfinished "[display](path#infile" link at the cursor.
type MarkdownPartial struct {
	Path    string
	Cursor  vault.Position
	Display Fragment
	Target  Fragment
	Infile  *InfileRef
	Match   Fragment
	// Replace is the span an accepted completion overwrites.
	Replace vault.LineRange
}

// FilterText is what the user has typed for the link destination.
func (p MarkdownPartial) FilterText() string {
	if p.Infile == nil {
		return p.Target.Text
	}
	if p.Infile.Kind == BlockRef {
		return p.Target.Text + "#^" + p.Infile.Text
	}
	return p.Target.Text + "#" + p.Infile.Text
}

// ParseMarkdown recognizes an unfinished markdown link ending exactly at the
// cursor. When the cursor sits inside an existing complete markdown link, the
// whole link becomes the replacement span; otherwise a ')' right at the
// cursor is swallowed by the replacement.
func ParseMarkdown(docPath, line string, cursor vault.Position) (MarkdownPartial, bool) {
	runes := []rune(line)
	c := cursor.Character
	if c < 0 || c > len(runes) {
		return MarkdownPartial{}, false
	}

	prefix := string(runes[:c])
	m := markdownPartialRe.FindStringSubmatchIndex(prefix)
	if m == nil {
		return MarkdownPartial{}, false
	}

	frag := func(group int) (Fragment, bool) {
		if m[2*group] < 0 {
			return Fragment{}, false
		}
		return Fragment{
			Text: prefix[m[2*group]:m[2*group+1]],
			Range: vault.LineRange{
				Line:  cursor.Line,
				Start: runeOffset(prefix, m[2*group]),
				End:   runeOffset(prefix, m[2*group+1]),
			},
		}, true
	}

	p := MarkdownPartial{Path: docPath, Cursor: cursor}
	p.Match, _ = frag(0)
	p.Display, _ = frag(displayGroup)
	p.Target, _ = frag(pathGroup)
	if f, ok := frag(infileGroup); ok {
		ref := &InfileRef{Kind: HeadingRef, Fragment: f}
		if strings.HasPrefix(f.Text, "^") {
			ref.Kind = BlockRef
			ref.Text = strings.TrimPrefix(f.Text, "^")
		}
		p.Infile = ref
	}

	p.Replace = p.Match.Range
	switch occ, ok := overlapping(line, c); {
	case ok && occ.markdown:
		p.Replace.Start, p.Replace.End = occ.start, occ.end
	case ok:
		// Overlaps a wiki link or tag: keep the raw match.
	case c < len(runes) && runes[c] == ')':
		p.Replace.End++
	}

	return p, true
}

type occurrence struct {
	start, end int
	markdown   bool
}

// overlapping finds the first complete link or tag on the line whose range
// contains offset (inclusive at both ends).
func overlapping(line string, offset int) (occurrence, bool) {
	for _, m := range links.FindAll(line) {
		if m.Contains(offset) {
			return occurrence{start: m.Start, end: m.End, markdown: m.Syntax == links.Markdown}, true
		}
	}
	for _, t := range links.FindTags(line) {
		if t.Start <= offset && offset <= t.End {
			return occurrence{start: t.Start, end: t.End}, true
		}
	}
	return occurrence{}, false
}

// WikiPartial is an unfinished "[[fragment" link at the cursor.
type WikiPartial struct {
	Path   string
	Cursor vault.Position
	// Open is the offset of the first '[' of the "[[" marker.
	Open int
	// Fragment is every rune between "[[" and the cursor.
	Fragment string
	// Filter is the fragment up to a '|', Display what follows it.
	Filter     string
	Display    string
	HasDisplay bool
}

// Replace is the span from just after "[[" to the cursor.
func (p WikiPartial) Replace() vault.LineRange {
	return vault.LineRange{Line: p.Cursor.Line, Start: p.Open + 2, End: p.Cursor.Character}
}

// ParseWiki finds the nearest "[[" before the cursor. It fails when there is
// none or when a ']' lies between the marker and the cursor.
func ParseWiki(docPath, line string, cursor vault.Position) (WikiPartial, bool) {
	runes := []rune(line)
	c := cursor.Character
	if c < 0 || c > len(runes) {
		return WikiPartial{}, false
	}

	second := -1
	for k := c - 1; k >= 1; k-- {
		if runes[k] == '[' && runes[k-1] == '[' {
			second = k
			break
		}
	}
	if second < 0 {
		return WikiPartial{}, false
	}

	fragment := string(runes[second+1 : c])
	if strings.ContainsRune(fragment, ']') {
		return WikiPartial{}, false
	}

	p := WikiPartial{
		Path:     docPath,
		Cursor:   cursor,
		Open:     second - 1,
		Fragment: fragment,
		Filter:   fragment,
	}
	if filter, display, ok := strings.Cut(fragment, "|"); ok {
		p.Filter, p.Display, p.HasDisplay = filter, display, true
	}
	return p, true
}

func runeOffset(s string, byteOffset int) int {
	return utf8.RuneCountInString(s[:byteOffset])
}

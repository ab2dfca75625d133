// Package parser handles parsing markdown documents into the pieces a vault
// indexes: headings, indexed blocks, link references and tags.
package parser

import (
	"regexp"
	"strings"

	"github.com/aidanlsb/mdvault/internal/links"
)

// Document is a parsed markdown document. All line numbers are 0-indexed and
// all character offsets are rune offsets.
type Document struct {
	Path     string    `json:"path"` // vault-relative, slash-separated
	Lines    []string  `json:"lines"`
	Headings []Heading `json:"headings,omitempty"`
	Blocks   []Block   `json:"blocks,omitempty"`
	Refs     []Ref     `json:"refs,omitempty"`
	Tags     []TagRef  `json:"tags,omitempty"`
}

// Block is an indexed block: a line ending with a "^id" anchor.
type Block struct {
	Index string `json:"index"`
	Line  int    `json:"line"`
}

// Ref is a link occurrence on a given line.
type Ref struct {
	Line int `json:"line"`
	links.Match
}

// TagRef is a tag occurrence on a given line.
type TagRef struct {
	Line int `json:"line"`
	links.Tag
}

var blockRe = regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9-]+)\s*$`)

// Parse parses a markdown document. It never fails: malformed markdown simply
// yields fewer headings, blocks or references.
func Parse(path, content string) *Document {
	lines := SplitLines(content)
	doc := &Document{
		Path:  path,
		Lines: lines,
	}

	start := bodyStart(lines)
	doc.Headings = ExtractHeadings(blankLines(lines, start))

	state := FenceState{}
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if state.UpdateFenceState(line) || state.InFence {
			continue
		}

		if m := blockRe.FindStringSubmatch(line); m != nil {
			doc.Blocks = append(doc.Blocks, Block{Index: m[1], Line: i})
		}

		sanitized := RemoveInlineCode(line)
		for _, match := range links.FindAll(sanitized) {
			match.Literal = sliceRunes(line, match.Start, match.End)
			doc.Refs = append(doc.Refs, Ref{Line: i, Match: match})
		}
		for _, tag := range links.FindTags(stripLinks(sanitized)) {
			doc.Tags = append(doc.Tags, TagRef{Line: i, Tag: tag})
		}
	}

	return doc
}

// SplitLines splits content on '\n' and drops a trailing '\r' from each line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Heading returns the heading at the given line, if any.
func (d *Document) Heading(line int) (Heading, bool) {
	for _, h := range d.Headings {
		if h.Line == line {
			return h, true
		}
	}
	return Heading{}, false
}

// blankLines rejoins lines, replacing those before start with empty lines so
// goldmark does not read frontmatter as a setext heading while line numbers
// stay aligned with the original content.
func blankLines(lines []string, start int) string {
	if start == 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	copy(out[start:], lines[start:])
	return strings.Join(out, "\n")
}

// stripLinks blanks link literals so "#heading" fragments inside links are
// not read as tags.
func stripLinks(line string) string {
	matches := links.FindAll(line)
	if len(matches) == 0 {
		return line
	}
	runes := []rune(line)
	for _, m := range matches {
		for k := m.Start; k < m.End && k < len(runes); k++ {
			runes[k] = ' '
		}
	}
	return string(runes)
}

func sliceRunes(s string, start, end int) string {
	r := []rune(s)
	if start < 0 || end > len(r) || start > end {
		return ""
	}
	return string(r[start:end])
}

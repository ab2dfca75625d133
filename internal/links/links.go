// Package links provides canonical scanning of complete link occurrences in a
// single line of markdown.
//
// Two link grammars are recognized:
//
//	[display](target#infile)      markdown link, target may be wrapped in <...>
//	[[target#infile|display]]     wiki link
//
// Notes:
//   - Offsets are rune offsets into the line, end exclusive.
//   - Images (![alt](src)) and URL targets (https://..., mailto:...) are skipped.
//   - This package does NOT understand code fences or inline code; the parser
//     decides which regions are scanned.
package links

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Syntax identifies which link grammar produced a match.
type Syntax int

const (
	Markdown Syntax = iota
	Wiki
)

func (s Syntax) String() string {
	if s == Wiki {
		return "wiki"
	}
	return "markdown"
}

// Match is one complete link occurrence.
type Match struct {
	Syntax Syntax `json:"syntax"`
	// Target is the file part of the link with "<>" and URL escapes removed.
	// It is empty for links into the same document, e.g. [x](#heading).
	Target string `json:"target"`
	// Infile is the text after '#', including a leading '^' for block links.
	Infile  string `json:"infile,omitempty"`
	Display string `json:"display,omitempty"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Literal string `json:"literal"`
}

// IsBlock reports whether the link points at an indexed block (#^id).
func (m Match) IsBlock() bool {
	return strings.HasPrefix(m.Infile, "^")
}

// IsHeading reports whether the link points at a heading.
func (m Match) IsHeading() bool {
	return m.Infile != "" && !m.IsBlock()
}

// BlockIndex returns the block id without its '^' marker.
func (m Match) BlockIndex() string {
	return strings.TrimPrefix(m.Infile, "^")
}

// Contains reports whether the rune offset lies within the match, both ends inclusive.
func (m Match) Contains(offset int) bool {
	return m.Start <= offset && offset <= m.End
}

var (
	wikiRe     = regexp.MustCompile(`\[\[([^\[\]|#]*)(?:#([^\[\]|]*))?(?:\|([^\[\]]*))?\]\]`)
	markdownRe = regexp.MustCompile(`(!?)\[([^\[\]]*)\]\((<[^<>]*>|[^\s()<>]*)\)`)
	schemeRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// FindAll finds every complete markdown and wiki link in line, ordered by start offset.
func FindAll(line string) []Match {
	out := FindWiki(line)
	out = append(out, FindMarkdown(line)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// FindWiki finds wiki links in a single line.
func FindWiki(line string) []Match {
	var out []Match
	for _, m := range wikiRe.FindAllStringSubmatchIndex(line, -1) {
		target := strings.TrimSpace(group(line, m, 1))
		infile := strings.TrimSpace(group(line, m, 2))
		if target == "" && infile == "" {
			continue
		}
		out = append(out, Match{
			Syntax:  Wiki,
			Target:  target,
			Infile:  infile,
			Display: strings.TrimSpace(group(line, m, 3)),
			Start:   runeOffset(line, m[0]),
			End:     runeOffset(line, m[1]),
			Literal: line[m[0]:m[1]],
		})
	}
	return out
}

// FindMarkdown finds markdown links in a single line.
func FindMarkdown(line string) []Match {
	var out []Match
	for _, m := range markdownRe.FindAllStringSubmatchIndex(line, -1) {
		if group(line, m, 1) == "!" {
			continue
		}
		raw := group(line, m, 3)
		target, infile := SplitTarget(raw)
		if target == "" && infile == "" {
			continue
		}
		if schemeRe.MatchString(target) {
			continue
		}
		// The image marker is part of the regex match; step past it.
		start := m[0] + len(group(line, m, 1))
		out = append(out, Match{
			Syntax:  Markdown,
			Target:  target,
			Infile:  infile,
			Display: group(line, m, 2),
			Start:   runeOffset(line, start),
			End:     runeOffset(line, m[1]),
			Literal: line[start:m[1]],
		})
	}
	return out
}

// SplitTarget splits a raw markdown link destination into its file part and
// infile fragment. Angle brackets are removed and URL escapes decoded.
func SplitTarget(raw string) (target, infile string) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	target, infile, _ = strings.Cut(raw, "#")
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	return strings.TrimSpace(target), strings.TrimSpace(infile)
}

func group(s string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

func runeOffset(s string, byteOffset int) int {
	return utf8.RuneCountInString(s[:byteOffset])
}

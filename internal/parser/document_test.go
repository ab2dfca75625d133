package parser

import (
	"testing"
)

func TestParseHeadings(t *testing.T) {
	content := `---
title: Notes
---
# Project *Alpha*

Intro text.

## Open ` + "`questions`" + `
Setext Heading
--------------
`
	doc := Parse("notes.md", content)

	want := []Heading{
		{Level: 1, Text: "Project Alpha", Line: 3},
		{Level: 2, Text: "Open questions", Line: 7},
		{Level: 2, Text: "Setext Heading", Line: 8},
	}
	if len(doc.Headings) != len(want) {
		t.Fatalf("got %d headings, want %d: %#v", len(doc.Headings), len(want), doc.Headings)
	}
	for i, h := range want {
		if doc.Headings[i] != h {
			t.Errorf("heading %d = %#v, want %#v", i, doc.Headings[i], h)
		}
	}
}

func TestParseBlocks(t *testing.T) {
	content := "first paragraph ^intro\n\n- item ^item-2\n\n```\ncode ^nope\n```\nnot^ablock\n"
	doc := Parse("b.md", content)

	want := []Block{{Index: "intro", Line: 0}, {Index: "item-2", Line: 2}}
	if len(doc.Blocks) != len(want) {
		t.Fatalf("got blocks %#v, want %#v", doc.Blocks, want)
	}
	for i, b := range want {
		if doc.Blocks[i] != b {
			t.Errorf("block %d = %#v, want %#v", i, doc.Blocks[i], b)
		}
	}
}

func TestParseRefsSkipsCode(t *testing.T) {
	content := "See [[alpha]] and [b](beta.md#Intro).\n" +
		"Inline `[[not-a-link]]` then [[gamma#^blk]]\n" +
		"```\n[[fenced]]\n```\n" +
		"> - ```\n> [[quoted-fence]]\n> ```\n"
	doc := Parse("r.md", content)

	type ref struct {
		line   int
		target string
		infile string
	}
	want := []ref{
		{0, "alpha", ""},
		{0, "beta.md", "Intro"},
		{1, "gamma", "^blk"},
	}
	if len(doc.Refs) != len(want) {
		t.Fatalf("got %d refs, want %d: %#v", len(doc.Refs), len(want), doc.Refs)
	}
	for i, w := range want {
		got := doc.Refs[i]
		if got.Line != w.line || got.Target != w.target || got.Infile != w.infile {
			t.Errorf("ref %d = line %d %q#%q, want line %d %q#%q",
				i, got.Line, got.Target, got.Infile, w.line, w.target, w.infile)
		}
	}
	if doc.Refs[2].Start != 29 {
		t.Errorf("gamma ref start = %d, want 29", doc.Refs[2].Start)
	}
}

func TestParseTags(t *testing.T) {
	doc := Parse("t.md", "# Heading\nTodo #review see [[note#section]]\n")

	if len(doc.Tags) != 1 {
		t.Fatalf("got tags %#v, want one", doc.Tags)
	}
	if doc.Tags[0].Name != "review" || doc.Tags[0].Line != 1 || doc.Tags[0].Start != 5 {
		t.Errorf("unexpected tag %#v", doc.Tags[0])
	}
}

func TestRemoveInlineCodePreservesRuneOffsets(t *testing.T) {
	line := "a `héllo` [[x]]"
	got := RemoveInlineCode(line)
	if len([]rune(got)) != len([]rune(line)) {
		t.Fatalf("rune length changed: %q -> %q", line, got)
	}
	if got != "a         [[x]]" {
		t.Fatalf("RemoveInlineCode = %q", got)
	}
}

func TestFenceState(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantOpen []bool
	}{
		{
			name:     "simple fenced block",
			lines:    []string{"before", "```python", "[[x]]", "```", "after"},
			wantOpen: []bool{false, true, true, false, false},
		},
		{
			name:     "nested backticks require more",
			lines:    []string{"````", "```", "still inside", "````"},
			wantOpen: []bool{true, true, true, false},
		},
		{
			name:     "list item with fence",
			lines:    []string{"- ```", "  [[x]]", "  ```", "after"},
			wantOpen: []bool{true, true, false, false},
		},
		{
			name:     "tilde does not close backtick",
			lines:    []string{"```", "~~~", "```"},
			wantOpen: []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := FenceState{}
			for i, line := range tt.lines {
				state.UpdateFenceState(line)
				if state.InFence != tt.wantOpen[i] {
					t.Fatalf("line %d (%q): InFence = %v, want %v", i, line, state.InFence, tt.wantOpen[i])
				}
			}
		})
	}
}

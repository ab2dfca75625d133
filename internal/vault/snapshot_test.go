package vault

import (
	"testing"

	"github.com/aidanlsb/mdvault/internal/parser"
)

func testSnapshot(files map[string]string) *Snapshot {
	var docs []*parser.Document
	for p, content := range files {
		docs = append(docs, parser.Parse(p, content))
	}
	return NewSnapshot("/vault", docs)
}

func TestReferenceablesOrder(t *testing.T) {
	s := testSnapshot(map[string]string{
		"b.md": "# Beta\n\npara ^blk\n[[missing]] [x](a.md#Nope)\n",
		"a.md": "# Alpha\n## Sub\n",
	})

	want := []Referenceable{
		File("a.md"),
		Heading("a.md", "Alpha"),
		Heading("a.md", "Sub"),
		File("b.md"),
		Heading("b.md", "Beta"),
		IndexedBlock("b.md", "blk"),
		UnresolvedFile("missing"),
		UnresolvedHeading("a", "Nope"),
	}
	got := s.Referenceables("")
	if len(got) != len(want) {
		t.Fatalf("got %d referenceables, want %d: %#v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("referenceable %d = %#v, want %#v", i, got[i], want[i])
		}
	}

	own := s.Referenceables("a.md")
	if len(own) != 3 || own[0] != File("a.md") {
		t.Fatalf("Referenceables(a.md) = %#v", own)
	}
}

func TestResolve(t *testing.T) {
	s := testSnapshot(map[string]string{
		"notes/bar baz.md": "# Weekly Standup\nline ^abc\n",
		"src.md": "[a](<bar baz.md>) [b](notes/bar%20baz.md#weekly-standup) [[bar baz#^abc]]\n" +
			"[[Bar Baz#Weekly Standup]] [c](#Top) [[nowhere#^x]] #tag\n" +
			"# Top\n",
	})

	refs := s.References("src.md")
	want := []Referenceable{
		File("notes/bar baz.md"),
		Heading("notes/bar baz.md", "Weekly Standup"),
		IndexedBlock("notes/bar baz.md", "abc"),
		Heading("notes/bar baz.md", "Weekly Standup"),
		Heading("src.md", "Top"),
		UnresolvedIndexedBlock("nowhere", "x"),
	}
	if len(refs) != len(want)+1 {
		t.Fatalf("got %d references, want %d", len(refs), len(want)+1)
	}
	for i, w := range want {
		got := s.Resolve(refs[i])
		if len(got) != 1 || got[0] != w {
			t.Errorf("Resolve(%q) = %#v, want %#v", refs[i].Text, got, w)
		}
	}

	tag := refs[len(refs)-1]
	if tag.IsLink() || len(s.Resolve(tag)) != 0 {
		t.Errorf("tag reference should not resolve: %#v", tag)
	}
}

func TestReferenceAtAndReferencesTo(t *testing.T) {
	s := testSnapshot(map[string]string{
		"a.md": "see [x](missing) now\n",
		"b.md": "[[missing]] and [[a]]\n",
	})

	ref, ok := s.ReferenceAt("a.md", Position{Line: 0, Character: 8})
	if !ok || ref.Target != "missing" {
		t.Fatalf("ReferenceAt = %#v, %v", ref, ok)
	}
	if _, ok := s.ReferenceAt("a.md", Position{Line: 0, Character: 2}); ok {
		t.Fatalf("expected no reference before the link")
	}
	// End bound is inclusive.
	if _, ok := s.ReferenceAt("a.md", Position{Line: 0, Character: 16}); !ok {
		t.Fatalf("expected reference at link end")
	}

	if n := len(s.ReferencesTo(UnresolvedFile("missing"))); n != 2 {
		t.Fatalf("ReferencesTo(missing) = %d, want 2", n)
	}
	if n := len(s.ReferencesTo(File("a.md"))); n != 1 {
		t.Fatalf("ReferencesTo(a.md) = %d, want 1", n)
	}
}

func TestLineAndAnchorRange(t *testing.T) {
	s := testSnapshot(map[string]string{
		"a.md": "intro\n## Héading\ntext ^b1\n",
	})

	if line, ok := s.Line("a.md", 1); !ok || line != "## Héading" {
		t.Fatalf("Line = %q, %v", line, ok)
	}
	if _, ok := s.Line("a.md", 10); ok {
		t.Fatalf("expected out of range line to fail")
	}

	r, ok := s.AnchorRange(Heading("a.md", "Héading"))
	if !ok || r.Start.Line != 1 || r.End.Character != 10 {
		t.Fatalf("AnchorRange(heading) = %#v, %v", r, ok)
	}
	r, ok = s.AnchorRange(IndexedBlock("a.md", "b1"))
	if !ok || r.Start.Line != 2 {
		t.Fatalf("AnchorRange(block) = %#v, %v", r, ok)
	}
	if _, ok := s.AnchorRange(UnresolvedFile("a")); ok {
		t.Fatalf("unresolved targets have no anchor")
	}
}

func TestMissingAnchorNamedByFileStem(t *testing.T) {
	s := testSnapshot(map[string]string{
		"sub/Note.md": "# Present\n",
		"a.md":        "[x](note#Missing) [y](Note#Missing)\n[[sub/Note.md#^gone]] [[note#^gone]]\n",
	})

	heading := UnresolvedHeading("Note", "Missing")
	if n := len(s.ReferencesTo(heading)); n != 2 {
		t.Fatalf("ReferencesTo(%#v) = %d, want 2", heading, n)
	}
	block := UnresolvedIndexedBlock("Note", "gone")
	if n := len(s.ReferencesTo(block)); n != 2 {
		t.Fatalf("ReferencesTo(%#v) = %d, want 2", block, n)
	}

	var unresolved []Referenceable
	for _, r := range s.Referenceables("") {
		if r.IsUnresolved() {
			unresolved = append(unresolved, r)
		}
	}
	if len(unresolved) != 2 || unresolved[0] != heading || unresolved[1] != block {
		t.Fatalf("unresolved = %#v, want [%#v %#v]", unresolved, heading, block)
	}
}

func TestDuplicateHeadingsListedOnce(t *testing.T) {
	s := testSnapshot(map[string]string{
		"g.md": "# A\n\n# A\n## B\n",
	})

	want := []Referenceable{File("g.md"), Heading("g.md", "A"), Heading("g.md", "B")}
	got := s.Referenceables("g.md")
	if len(got) != len(want) {
		t.Fatalf("Referenceables(g.md) = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("referenceable %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

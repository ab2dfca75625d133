package hover

import (
	"strings"
	"testing"

	"github.com/aidanlsb/mdvault/internal/parser"
	"github.com/aidanlsb/mdvault/internal/preview"
	"github.com/aidanlsb/mdvault/internal/vault"
)

func setup(files map[string]string) (*vault.Snapshot, *preview.Renderer) {
	var docs []*parser.Document
	for p, content := range files {
		docs = append(docs, parser.Parse(p, content))
	}
	snap := vault.NewSnapshot("/vault", docs)
	return snap, preview.New(snap, 10)
}

func TestResolveLinkBounds(t *testing.T) {
	snap, pv := setup(map[string]string{
		"a.md":      "see [[target#Sec]] and [t](target.md) #tag",
		"target.md": "intro\n## Sec\nbody\n",
	})

	tests := []struct {
		name    string
		char    int
		wantOK  bool
		heading string
	}{
		{name: "before link", char: 3},
		{name: "link start", char: 4, wantOK: true, heading: "Heading Preview:"},
		{name: "link end inclusive", char: 18, wantOK: true, heading: "Heading Preview:"},
		{name: "markdown link", char: 25, wantOK: true, heading: "File Preview:"},
		{name: "tag is not a link", char: 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := Resolve(snap, pv, "a.md", vault.Position{Line: 0, Character: tt.char})
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !strings.HasPrefix(res.Markdown, tt.heading+"\n---\n\n") {
				t.Errorf("markdown = %q", res.Markdown)
			}
		})
	}
}

func TestResolveHeadingBody(t *testing.T) {
	snap, pv := setup(map[string]string{
		"a.md":      "[[target#Sec]]",
		"target.md": "intro\n## Sec\nbody\n",
	})
	res, ok := Resolve(snap, pv, "a.md", vault.Position{Character: 2})
	if !ok {
		t.Fatal("no hover")
	}
	if want := "Heading Preview:\n---\n\n## Sec\nbody\n\n"; res.Markdown != want {
		t.Errorf("markdown = %q, want %q", res.Markdown, want)
	}
	if res.Target != vault.Heading("target.md", "Sec") {
		t.Errorf("target = %+v", res.Target)
	}
}

func TestResolveUnresolved(t *testing.T) {
	snap, pv := setup(map[string]string{"a.md": "[[nowhere]]"})
	res, ok := Resolve(snap, pv, "a.md", vault.Position{Character: 3})
	if !ok {
		t.Fatal("no hover")
	}
	if !strings.HasPrefix(res.Markdown, "Preview:\n---\n\n`nowhere` does not exist yet (1 link).") {
		t.Errorf("markdown = %q", res.Markdown)
	}
}

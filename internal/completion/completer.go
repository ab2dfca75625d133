// Package completion turns a cursor inside a partially typed link into
// ranked LSP completion items.
package completion

import (
	"os"
	"path/filepath"
	"time"

	"go.lsp.dev/protocol"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/vault"
)

// Index is the read-only view of the vault completion works against.
// *vault.Snapshot implements it.
type Index interface {
	Root() string
	Line(path string, n int) (string, bool)
	Referenceables(path string) []vault.Referenceable
	ReferenceAt(path string, pos vault.Position) (vault.Reference, bool)
	Resolve(ref vault.Reference) []vault.Referenceable
	ReferencesTo(r vault.Referenceable) []vault.Reference
}

// Previewer renders documentation for a target.
type Previewer interface {
	Preview(r vault.Referenceable) (string, bool)
}

// Context is everything a single completion request needs.
type Context struct {
	Index    Index
	Path     string
	Position vault.Position
	// OpenFiles are the vault-relative paths of documents open in the editor.
	OpenFiles []string
	Settings  config.Settings
	// Previewer is optional; without it items carry no documentation.
	Previewer Previewer
	// Now defaults to time.Now.
	Now func() time.Time
	// ModTime defaults to stat'ing the file under the index root.
	ModTime func(path string) (time.Time, error)
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Context) modTime(path string) (time.Time, error) {
	if c.ModTime != nil {
		return c.ModTime(path)
	}
	info, err := os.Stat(filepath.Join(c.Index.Root(), filepath.FromSlash(path)))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Completer is one link syntax's view of the cursor.
type Completer interface {
	// Filter is the typed text candidates are ranked against.
	Filter() string
	// Candidates enumerates what could be linked from here.
	Candidates() []LinkCompletion
	// Item synthesizes the editor item for a candidate.
	Item(c LinkCompletion) protocol.CompletionItem
}

// New picks the completer for the cursor. Markdown syntax is tried first.
// It returns nil when the cursor is not inside a partial link.
func New(ctx *Context) Completer {
	line, ok := ctx.Index.Line(ctx.Path, ctx.Position.Line)
	if !ok {
		return nil
	}
	if p, ok := ParseMarkdown(ctx.Path, line, ctx.Position); ok {
		return &MarkdownLink{ctx: ctx, partial: p}
	}
	if p, ok := ParseWiki(ctx.Path, line, ctx.Position); ok {
		return &WikiLink{ctx: ctx, partial: p}
	}
	return nil
}

// Complete returns the ranked items for the cursor, or nil.
func Complete(ctx *Context) []protocol.CompletionItem {
	c := New(ctx)
	if c == nil {
		return nil
	}
	return Items(c, ctx.Settings.MinScore)
}

// Items ranks c's candidates against its filter and builds their items.
func Items(c Completer, minScore int) []protocol.CompletionItem {
	ranked := Rank(c.Filter(), c.Candidates(), minScore)
	items := make([]protocol.CompletionItem, 0, len(ranked))
	for _, lc := range ranked {
		items = append(items, c.Item(lc))
	}
	return items
}

// MarkdownLink completes "[display](target" links.
type MarkdownLink struct {
	ctx     *Context
	partial MarkdownPartial
}

// Partial returns the parsed link.
func (m *MarkdownLink) Partial() MarkdownPartial {
	return m.partial
}

func (m *MarkdownLink) Filter() string {
	return m.partial.FilterText()
}

func (m *MarkdownLink) Candidates() []LinkCompletion {
	return linkCompletions(m.ctx)
}

// WikiLink completes "[[target|display" links.
type WikiLink struct {
	ctx     *Context
	partial WikiPartial
}

// Partial returns the parsed link.
func (w *WikiLink) Partial() WikiPartial {
	return w.partial
}

func (w *WikiLink) Filter() string {
	return w.partial.Filter
}

// Candidates falls back to headings and blocks of recently edited open
// documents while nothing has been typed yet.
func (w *WikiLink) Candidates() []LinkCompletion {
	if w.partial.Fragment == "" {
		return recentCompletions(w.ctx)
	}
	return linkCompletions(w.ctx)
}

package completion

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/aidanlsb/mdvault/internal/paths"
	"github.com/aidanlsb/mdvault/internal/vault"
)

// UnresolvedDetail marks items whose target does not exist yet.
const UnresolvedDetail = "Unresolved"

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// Item builds a snippet that rewrites the whole partial link as
// "[display](target)", leaving the cursor on the display placeholder.
func (m *MarkdownLink) Item(c LinkCompletion) protocol.CompletionItem {
	display := m.partial.Display.Text
	if display == "" {
		display = defaultDisplay(c.Target)
	}

	target := markdownTarget(c)
	if strings.Contains(target, " ") {
		target = "<" + target + ">"
	}

	item := baseItem(m.ctx, c)
	item.FilterText = "[" + m.partial.Display.Text + "](" + c.MatchString
	item.InsertTextFormat = protocol.InsertTextFormatSnippet
	item.TextEdit = &protocol.TextEdit{
		Range:   toProtocol(m.partial.Replace),
		NewText: "[${1:" + snippetEscaper.Replace(display) + "}](" + snippetEscaper.Replace(target) + ")",
	}
	return item
}

// Item inserts the reference name between "[[" and the cursor, keeping any
// typed "|display".
func (w *WikiLink) Item(c LinkCompletion) protocol.CompletionItem {
	text := c.RefName
	if w.partial.HasDisplay {
		text += "|" + w.partial.Display
	}

	item := baseItem(w.ctx, c)
	item.FilterText = c.MatchString
	item.InsertTextFormat = protocol.InsertTextFormatPlainText
	item.TextEdit = &protocol.TextEdit{
		Range:   toProtocol(w.partial.Replace()),
		NewText: text,
	}
	return item
}

func baseItem(ctx *Context, c LinkCompletion) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:    c.MatchString,
		Kind:     itemKind(c.Kind),
		SortText: c.SortText,
	}
	if c.Kind == CandidateUnresolved {
		item.Detail = UnresolvedDetail
	}
	if ctx.Previewer != nil {
		if doc, ok := ctx.Previewer.Preview(c.Target); ok {
			item.Documentation = protocol.MarkupContent{Kind: protocol.Markdown, Value: doc}
		}
	}
	return item
}

func itemKind(k CandidateKind) protocol.CompletionItemKind {
	switch k {
	case CandidateHeading, CandidateBlock:
		return protocol.CompletionItemKindReference
	case CandidateUnresolved:
		return protocol.CompletionItemKindKeyword
	case CandidateDailyNote:
		return protocol.CompletionItemKindEvent
	default:
		return protocol.CompletionItemKindFile
	}
}

// defaultDisplay is the link text used when none was typed.
func defaultDisplay(r vault.Referenceable) string {
	switch r.Kind {
	case vault.KindHeading, vault.KindUnresolvedHeading:
		return r.Heading
	case vault.KindUnresolvedBlock:
		return "^" + r.Index
	}
	return ""
}

// markdownTarget is the link destination: a file name for existing
// documents, the written name for unresolved ones.
func markdownTarget(c LinkCompletion) string {
	r := c.Target
	if r.IsUnresolved() {
		return c.RefName
	}
	file := r.Stem() + paths.DocumentExt
	switch r.Kind {
	case vault.KindHeading:
		return file + "#" + r.Heading
	case vault.KindBlock:
		return file + "#^" + r.Index
	}
	return file
}

func toProtocol(r vault.LineRange) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Line), Character: uint32(r.Start)},
		End:   protocol.Position{Line: uint32(r.Line), Character: uint32(r.End)},
	}
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"github.com/aidanlsb/mdvault/internal/completion"
	"github.com/aidanlsb/mdvault/internal/preview"
	"github.com/aidanlsb/mdvault/internal/ui"
)

// now is swapped in tests to pin daily note keywords.
var now = time.Now

type completionResult struct {
	Path      string           `json:"path"`
	Line      int              `json:"line"`
	Character int              `json:"character"`
	Syntax    string           `json:"syntax,omitempty"`
	Filter    string           `json:"filter"`
	Items     []completionJSON `json:"items"`
}

type completionJSON struct {
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insert_text"`
	FilterText string `json:"filter_text"`
	SortText   string `json:"sort_text,omitempty"`
	Snippet    bool   `json:"snippet"`
}

var completeCmd = &cobra.Command{
	Use:   "complete <file> <line> <char>",
	Short: "List link completions at a position",
	Long: `Runs link completion for a cursor in a vault document, the way an editor
would through the language server. Line and character are zero-based.

Examples:
  mdv complete notes/today.md 4 12
  mdv complete notes/today.md 4 12 --json`,
	Args: cobra.ExactArgs(3),
	RunE: runComplete,
}

func init() {
	addJSONFlag(completeCmd.Flags())
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	start := time.Now()
	vaultPath := getVaultPath()

	doc, err := parseDocumentArgs(vaultPath, args)
	if err != nil {
		return handleError(documentErrorCode(err), err, "")
	}
	ws, err := openDocument(cmd.Context(), vaultPath, doc)
	if err != nil {
		return handleError(documentErrorCode(err), err, "")
	}
	defer ws.Close()

	snap := ws.Store.Snapshot()
	ctx := &completion.Context{
		Index:     snap,
		Path:      doc.Path,
		Position:  doc.Position,
		OpenFiles: []string{doc.Path},
		Settings:  ws.Settings,
		Previewer: preview.New(snap, ws.Settings.PreviewLines),
		Now:       now,
	}

	result := completionResult{
		Path:      doc.Path,
		Line:      doc.Position.Line,
		Character: doc.Position.Character,
		Items:     []completionJSON{},
	}
	var items []protocol.CompletionItem
	if c := completion.New(ctx); c != nil {
		result.Syntax = syntaxName(c)
		result.Filter = c.Filter()
		items = completion.Items(c, ws.Settings.MinScore)
	}
	for _, item := range items {
		result.Items = append(result.Items, toCompletionJSON(item))
	}

	if isJSONOutput() {
		outputSuccess(result, &Meta{Count: len(result.Items), QueryTimeMs: time.Since(start).Milliseconds()})
		return nil
	}

	if len(result.Items) == 0 {
		fmt.Fprintln(stdout, ui.Hint("No completions."))
		return nil
	}
	tbl := ui.NewResultsTable(ui.NewDisplayContext(), ui.CompletionLayout)
	for i, item := range result.Items {
		tbl.AddRow(ui.FormatRowNum(i+1, len(result.Items)), item.Label, item.Kind, item.InsertText)
	}
	fmt.Fprintln(stdout, tbl.Render())
	return nil
}

func syntaxName(c completion.Completer) string {
	switch c.(type) {
	case *completion.MarkdownLink:
		return "markdown"
	case *completion.WikiLink:
		return "wiki"
	default:
		return ""
	}
}

func toCompletionJSON(item protocol.CompletionItem) completionJSON {
	out := completionJSON{
		Label:      item.Label,
		Kind:       item.Kind.String(),
		Detail:     item.Detail,
		FilterText: item.FilterText,
		SortText:   item.SortText,
		Snippet:    item.InsertTextFormat == protocol.InsertTextFormatSnippet,
	}
	if item.TextEdit != nil {
		out.InsertText = item.TextEdit.NewText
	}
	return out
}

package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/mdvault/internal/hover"
	"github.com/aidanlsb/mdvault/internal/preview"
	"github.com/aidanlsb/mdvault/internal/ui"
)

type hoverResult struct {
	Path      string     `json:"path"`
	Line      int        `json:"line"`
	Character int        `json:"character"`
	Found     bool       `json:"found"`
	Link      string     `json:"link,omitempty"`
	Target    string     `json:"target,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Range     *rangeJSON `json:"range,omitempty"`
	Markdown  string     `json:"markdown,omitempty"`
}

type rangeJSON struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

var hoverRaw bool

var hoverCmd = &cobra.Command{
	Use:   "hover <file> <line> <char>",
	Short: "Preview the target of the link at a position",
	Long: `Resolves the link under a cursor and prints the preview an editor would show
on hover. Line and character are zero-based.

On a terminal the preview is rendered; otherwise the markdown is printed as is.

Examples:
  mdv hover notes/today.md 4 12
  mdv hover notes/today.md 4 12 --raw
  mdv hover notes/today.md 4 12 --json`,
	Args: cobra.ExactArgs(3),
	RunE: runHover,
}

func init() {
	addJSONFlag(hoverCmd.Flags())
	hoverCmd.Flags().BoolVar(&hoverRaw, "raw", false, "Print markdown without terminal rendering")
	rootCmd.AddCommand(hoverCmd)
}

func runHover(cmd *cobra.Command, args []string) error {
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
	result := hoverResult{Path: doc.Path, Line: doc.Position.Line, Character: doc.Position.Character}

	res, ok := hover.Resolve(snap, preview.New(snap, ws.Settings.PreviewLines), doc.Path, doc.Position)
	if ok {
		r := res.Reference.Range
		result.Found = true
		result.Link = res.Reference.Text
		result.Target = describeTarget(res.Target.Stem(), res.Target.Heading, res.Target.Index)
		result.Kind = res.Target.Kind.String()
		result.Range = &rangeJSON{Line: r.Start.Line, Start: r.Start.Character, End: r.End.Character}
		result.Markdown = res.Markdown
	}

	if isJSONOutput() {
		outputSuccess(result, nil)
		return nil
	}

	if !result.Found {
		fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("No link target at %s:%d:%d.", doc.Path, doc.Position.Line, doc.Position.Character)))
		return nil
	}

	if hoverRaw || !isTerminal() {
		fmt.Fprint(stdout, result.Markdown)
		return nil
	}
	rendered, err := ui.RenderMarkdown(result.Markdown, ui.NewDisplayContext().MarkdownWidth())
	if err != nil {
		return handleError(ErrInternal, fmt.Errorf("failed to render preview: %w", err), "Use --raw to print markdown")
	}
	fmt.Fprint(stdout, rendered)
	return nil
}

// describeTarget formats a target the way a wiki link would name it.
func describeTarget(stem, heading, index string) string {
	switch {
	case heading != "":
		return stem + "#" + heading
	case index != "":
		return stem + "#^" + index
	default:
		return stem
	}
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

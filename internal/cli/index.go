package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/index"
	"github.com/aidanlsb/mdvault/internal/ui"
	"github.com/aidanlsb/mdvault/internal/workspace"
)

type indexResult struct {
	VaultPath   string    `json:"vault_path"`
	Enabled     bool      `json:"enabled"`
	Rebuilt     bool      `json:"rebuilt"`
	Files       int       `json:"files"`
	Cached      int       `json:"cached"`
	Parsed      int       `json:"parsed"`
	Errors      int       `json:"errors"`
	Pruned      []string  `json:"pruned,omitempty"`
	Indexed     int       `json:"indexed"`
	Bytes       int64     `json:"bytes"`
	LastIndexed time.Time `json:"last_indexed,omitempty"`
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Refresh the parse cache",
	Long: `Parses changed markdown files and stores them in .mdvault/index.db so the
language server starts without reparsing the whole vault. Entries for
deleted files are pruned.

Use --rebuild to discard the cache and parse everything.

Examples:
  mdv index
  mdv index --rebuild
  mdv index --json`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("rebuild", false, "Discard the cache and parse every file")
	addJSONFlag(indexCmd.Flags())
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	vaultPath := getVaultPath()
	rebuild, _ := cmd.Flags().GetBool("rebuild")

	var spinner *ui.Spinner
	if !jsonOutput {
		spinner = ui.NewSpinner("Indexing " + vaultPath)
		spinner.Start()
	}
	ws, err := workspace.Open(cmd.Context(), vaultPath, workspace.Options{Rebuild: rebuild})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	defer ws.Close()

	stats := ws.Store.Stats()
	result := indexResult{
		VaultPath: vaultPath,
		Enabled:   ws.DB != nil,
		Rebuilt:   ws.Rebuilt,
		Files:     stats.Files,
		Cached:    stats.Cached,
		Parsed:    stats.Parsed,
		Errors:    stats.Errors,
		Pruned:    ws.Pruned,
	}

	if ws.DB == nil {
		msg := fmt.Sprintf("index cache is disabled in %s", config.VaultConfigFile)
		if ws.Settings.IndexCache {
			msg = fmt.Sprintf("index cache at %s could not be opened", index.Path(vaultPath))
		}
		return handleErrorMsg(ErrDatabaseError, msg, "Set index_cache: true and make sure no other mdv process is rebuilding it")
	}

	dbStats, err := ws.DB.Stats()
	if err != nil {
		return handleError(ErrDatabaseError, fmt.Errorf("failed to read index stats: %w", err), "Run 'mdv index --rebuild'")
	}
	result.Indexed = dbStats.FileCount
	result.Bytes = dbStats.Bytes
	result.LastIndexed = dbStats.LastIndexed

	if isJSONOutput() {
		outputSuccess(result, &Meta{Count: result.Files})
		return nil
	}

	if result.Rebuilt {
		fmt.Fprintln(stdout, ui.Info("Index cache rebuilt."))
	}
	fmt.Fprintln(stdout, ui.Successf("Indexed %s", ui.FilePath(vaultPath)))

	tbl := ui.NewTable(2)
	tbl.AddRow("files", ui.Count(result.Files, "document", "documents"))
	tbl.AddRow("parsed", fmt.Sprintf("%d", result.Parsed))
	tbl.AddRow("cached", fmt.Sprintf("%d", result.Cached))
	if result.Errors > 0 {
		tbl.AddRow("errors", fmt.Sprintf("%d", result.Errors))
	}
	tbl.AddRow("pruned", fmt.Sprintf("%d", len(result.Pruned)))
	tbl.AddRow("size", humanize.Bytes(uint64(result.Bytes)))
	if !result.LastIndexed.IsZero() {
		tbl.AddRow("updated", humanize.Time(result.LastIndexed))
	}
	fmt.Fprint(stdout, tbl.String())
	return nil
}

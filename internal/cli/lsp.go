package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/logging"
	"github.com/aidanlsb/mdvault/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Language Server Protocol server",
	Long: `Start a Language Server Protocol (LSP) server for the vault.

It provides:
- Completion for [markdown](links) and [[wiki links]] to files, headings,
  blocks, links that do not exist yet and relative daily notes
- Hover previews of link targets

The server communicates over stdin/stdout using JSON-RPC and logs JSON to
stderr. Without --vault or --vault-path the vault is the workspace root the
editor sends.

Examples:
  # Start LSP server (for editor integration)
  mdv lsp

  # Start with debug logging to stderr
  mdv lsp --debug

  # Start for a specific vault
  mdv lsp --vault-path /path/to/vault`,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
}

func runLSP(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := logging.New(getConfig().LogLevel, debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// An explicit vault wins over the editor's workspace root.
	var vaultPath string
	if vaultPathFlag != "" || vaultName != "" {
		vaultPath = getVaultPath()
	}

	server := lsp.NewServer(lsp.Options{
		VaultPath: vaultPath,
		Logger:    logger,
		Version:   currentVersionInfo().Short(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting language server", zap.String("vault", vaultPath), zap.Bool("debug", debug))
	if err := server.Run(ctx, lsp.Stdio()); err != nil && ctx.Err() == nil {
		logger.Error("language server stopped", zap.Error(err))
		return err
	}
	return nil
}

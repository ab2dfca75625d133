// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/ui"
)

var (
	// Global flags
	vaultName     string // Named vault from config
	vaultPathFlag string // Explicit path
	configPath    string

	// Resolved values
	resolvedVaultPath  string
	resolvedConfigPath string
	cfg                *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mdv",
	Short: "Link completion and previews for a markdown vault",
	Long: `mdv is a language server for a folder of cross-linked markdown notes.

It completes [markdown](links.md) and [[wiki links]] to files, headings,
block anchors, links that do not exist yet and relative daily notes, and
previews the target of the link under the cursor.

The complete and hover commands run the same engine from the shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "init", "completion", "help", "version":
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		resolvedVaultPath, err = resolveVaultPath(cfg, vaultPathFlag, vaultName)
		if err != nil {
			return err
		}

		if info, err := os.Stat(resolvedVaultPath); err != nil || !info.IsDir() {
			return fmt.Errorf("vault not found: %s\n\nRun 'mdv init %s' to create it", resolvedVaultPath, resolvedVaultPath)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&vaultName, "vault", "v", "", "Named vault from config")
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault-path", "", "Explicit path to vault directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}

// resolveVaultPath picks the vault: explicit path > named vault > default
// vault > current directory. The result is absolute.
func resolveVaultPath(c *config.Config, explicitPath, name string) (string, error) {
	var path string
	switch {
	case explicitPath != "":
		path = explicitPath
	case name != "":
		p, err := c.GetVaultPath(name)
		if err != nil {
			return "", fmt.Errorf("%w\n\nAdd it under [vaults] in %s", err, resolvedConfigPathOrDefault())
		}
		path = p
	case c.DefaultVault != "":
		p, err := c.GetVaultPath("")
		if err != nil {
			return "", fmt.Errorf("default %w", err)
		}
		path = p
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("no vault specified and current directory unavailable: %w", err)
		}
		path = wd
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// getVaultPath returns the resolved vault path.
func getVaultPath() string {
	return resolvedVaultPath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func resolvedConfigPathOrDefault() string {
	if resolvedConfigPath != "" {
		return resolvedConfigPath
	}
	return config.DefaultPath()
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = config.DefaultPath()
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", err
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	return loaded, path, nil
}

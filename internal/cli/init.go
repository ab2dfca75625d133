package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/index"
	"github.com/aidanlsb/mdvault/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new vault",
	Long: `Creates a vault at the specified path with default configuration files.

Creates:
  - mdvault.yaml (vault settings)
  - .mdvault/    (parse cache directory)
  - .gitignore   (ignores the cache)

With --name the vault is also registered in the global config, and becomes the
default vault if none is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "Register the vault under this name in config.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")

	fmt.Fprintf(stdout, "Initializing vault at: %s\n", ui.FilePath(path))

	if err := os.MkdirAll(filepath.Join(path, index.Dir), 0o755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", index.Dir, err)
	}

	gitignoreStatus, err := ensureGitignore(path)
	if err != nil {
		return err
	}

	createdConfig, err := config.CreateDefaultVaultConfig(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", config.VaultConfigFile, err)
	}

	if createdConfig {
		fmt.Fprintln(stdout, ui.Successf("Created %s (vault settings)", config.VaultConfigFile))
	} else {
		fmt.Fprintln(stdout, ui.Kept(config.VaultConfigFile+" already exists (kept)"))
	}
	fmt.Fprintln(stdout, ui.Successf("Ensured %s/ directory exists", index.Dir))

	switch gitignoreStatus {
	case "created":
		fmt.Fprintln(stdout, ui.Success("Created .gitignore"))
	case "updated":
		fmt.Fprintln(stdout, ui.Success("Updated .gitignore"))
	default:
		fmt.Fprintln(stdout, ui.Kept(".gitignore already ignores "+index.Dir+"/"))
	}

	if name != "" {
		cfgPath := strings.TrimSpace(configPath)
		if cfgPath == "" {
			cfgPath = config.DefaultPath()
		}
		registered, err := config.RegisterVault(cfgPath, name, path)
		if err != nil {
			return fmt.Errorf("failed to register vault: %w", err)
		}
		msg := fmt.Sprintf("Registered vault '%s' in %s", name, cfgPath)
		if registered.DefaultVault == name {
			msg += " (default)"
		}
		fmt.Fprintln(stdout, ui.Success(msg))
	}

	if createdConfig {
		fmt.Fprintln(stdout, "\nVault initialized! Point your editor's markdown language server at 'mdv lsp'.")
	} else {
		fmt.Fprintln(stdout, "\nExisting vault detected. Configuration preserved.")
	}
	return nil
}

// ensureGitignore makes sure the cache directory is ignored and reports
// "created", "updated" or "unchanged".
func ensureGitignore(vaultPath string) (string, error) {
	gitignorePath := filepath.Join(vaultPath, ".gitignore")
	entry := index.Dir + "/"

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}
	for _, line := range strings.Split(existing, "\n") {
		if strings.TrimSpace(line) == entry {
			return "unchanged", nil
		}
	}

	status := "created"
	content := "# mdvault parse cache (rebuilt with 'mdv index')\n" + entry + "\n"
	if existing != "" {
		status = "updated"
		content = strings.TrimRight(existing, "\n") + "\n\n" + content
	}
	if err := os.WriteFile(gitignorePath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return status, nil
}

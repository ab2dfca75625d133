package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mdvault/internal/buildinfo"
)

var currentVersionInfo = buildinfo.Current

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show mdv version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Fprintf(stdout, "mdv %s\n", info.Version)
		fmt.Fprintf(stdout, "module: %s\n", info.ModulePath)
		if info.Commit != "" {
			fmt.Fprintf(stdout, "commit: %s\n", info.Commit)
		}
		if info.CommitTime != "" {
			fmt.Fprintf(stdout, "commit_time: %s\n", info.CommitTime)
		}
		fmt.Fprintf(stdout, "go: %s\n", info.GoVersion)
		fmt.Fprintf(stdout, "platform: %s/%s\n", info.GOOS, info.GOARCH)
		fmt.Fprintf(stdout, "modified: %t\n", info.Modified)
		return nil
	},
}

func init() {
	addJSONFlag(versionCmd.Flags())
	rootCmd.AddCommand(versionCmd)
}

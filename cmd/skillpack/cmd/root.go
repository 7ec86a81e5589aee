package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "skillpack",
	Short: "Package marketplace skills for agents and for upload",
	Long: `skillpack reads a plugin marketplace manifest and materializes every skill
it lists: into an agent skills directory (symlink or copy), or into one zip
archive per skill for web upload.

A skill that cannot be resolved or written is reported and skipped; the
remaining skills are still processed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skillpack %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default: .skillpack.yaml in the current directory)")
	pf.BoolP("verbose", "v", false, "List every artifact and log at debug level")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Cancelling ctx stops a run between skills.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

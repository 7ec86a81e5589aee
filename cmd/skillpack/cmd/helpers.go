package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// addSourceFlags registers the flags that locate the manifest and its skills.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("marketplace", "m", "", "Marketplace manifest (default: .claude-plugin/marketplace.json)")
	cmd.Flags().String("plugins", "", "Directory plugin sources are relative to (default: current directory)")
	cmd.Flags().String("resolve", "plugin", "How skill paths resolve: plugin (<plugins>/<source>/skills/<name>) or direct (path as written)")
	cmd.Flags().Bool("prefix", false, "Name outputs <plugin>-<skill> to avoid collisions")
}

// addRunFlags registers the flags shared by sync and package.
func addRunFlags(cmd *cobra.Command) {
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output directory")
	cmd.Flags().Bool("dry-run", false, "Validate every skill without writing anything")
	cmd.Flags().StringSlice("exclude", nil, "Glob of skill files to leave out, e.g. '**/.DS_Store' (repeatable)")
	cmd.Flags().IntP("jobs", "j", 1, "Number of skills processed in parallel")
	cmd.Flags().Bool("strict", false, "Exit with status 1 when any skill fails")
	cmd.Flags().Bool("progress", false, "Show a live progress bar (terminal only)")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

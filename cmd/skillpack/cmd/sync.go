package cmd

import (
	"github.com/barysiuk/skillpack/internal/core/target"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync skills into an agent skills directory",
	Long: `Materialize every skill in the marketplace manifest as
<output>/<skill-name>/. By default each skill is a symlink to its source
directory so edits show up immediately; --copy writes a full copy instead.

Without --output, skills go to ~/.claude/skills, or to ./.claude/skills
with --project. Any existing artifact of the same name is replaced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}

		root, err := d.settings.SyncRoot()
		if err != nil {
			return err
		}
		mode := target.ModeSymlink
		if d.settings.Copy {
			mode = target.ModeCopy
		}

		return runDistribution(cmd, d, "Syncing", func(opts ...target.Option) target.Target {
			return target.NewFilesystem(root, mode, opts...)
		})
	},
}

func init() {
	addRunFlags(syncCmd)
	syncCmd.Flags().Bool("project", false, "Sync into ./.claude/skills instead of ~/.claude/skills")
	syncCmd.Flags().Bool("copy", false, "Copy skill directories instead of symlinking them")
	rootCmd.AddCommand(syncCmd)
}

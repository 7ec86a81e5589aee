package cmd

import (
	"github.com/barysiuk/skillpack/internal/config"
	"github.com/barysiuk/skillpack/internal/core/target"
	"github.com/spf13/cobra"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Build one zip archive per skill",
	Long: `Write <output>/<skill-name>.zip for every skill in the marketplace manifest.
Every entry in an archive sits under <skill-name>/, the layout skill upload
forms expect. Archives are rebuilt from scratch on every run.

Without --output, archives go to ./dist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}

		root := d.settings.Output
		if root == "" {
			root = config.DefaultPackageOutput
		}

		return runDistribution(cmd, d, "Packaging", func(opts ...target.Option) target.Target {
			return target.NewArchive(root, opts...)
		})
	},
}

func init() {
	addRunFlags(packageCmd)
	rootCmd.AddCommand(packageCmd)
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/barysiuk/skillpack/internal/core/manifest"
	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills in the marketplace manifest",
	Long: `List every plugin and skill in the marketplace manifest with the output
name it would get, whether it resolves, and its SKILL.md description.
Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}
		m, err := manifest.Load(d.settings.Marketplace)
		if err != nil {
			return err
		}
		resolver, err := d.resolver()
		if err != nil {
			return err
		}

		walker, err := skill.NewWalker(nil)
		if err != nil {
			return err
		}
		printManifest(cmd.OutOrStdout(), m, resolver, walker)
		return nil
	},
}

// listRow is one skill line of the list output.
type listRow struct {
	output string
	status string
	files  string
	detail string
}

func printManifest(w io.Writer, m *manifest.Manifest, resolver *skill.Resolver, walker *skill.Walker) {
	title := m.Name
	if title == "" {
		title = "marketplace"
	}
	fmt.Fprintf(w, "%s: %d plugin(s), %d skill(s)\n", title, len(m.Plugins), m.SkillCount())

	for _, p := range m.Plugins {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Source)
		if len(p.Skills) == 0 {
			fmt.Fprintln(w, "  (no skills)")
			continue
		}

		rows := make([]listRow, 0, len(p.Skills))
		width := 0
		for _, raw := range p.Skills {
			row := describeSkill(resolver, walker, p, raw)
			width = max(width, ansi.StringWidth(row.output))
			rows = append(rows, row)
		}
		for _, row := range rows {
			pad := strings.Repeat(" ", width-ansi.StringWidth(row.output))
			line := fmt.Sprintf("  %s%s  %-5s  %-8s", row.output, pad, row.status, row.files)
			if row.detail != "" {
				line += "  " + row.detail
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
}

func describeSkill(resolver *skill.Resolver, walker *skill.Walker, p manifest.Plugin, raw string) listRow {
	row := listRow{output: resolver.OutputName(p, raw)}
	if row.output == "" {
		row.output = raw
	}

	ref, err := resolver.Resolve(p, raw)
	if err != nil {
		row.status = "error"
		row.detail = err.Error()
		return row
	}
	row.status = "ok"
	if n, err := walker.CountFiles(ref.SourceDir); err == nil {
		row.files = fmt.Sprintf("%d file", n)
		if n != 1 {
			row.files += "s"
		}
	}
	if md, err := skill.ReadMetadata(ref.SourceDir); err == nil {
		row.detail = md.Description
	}
	return row
}

func init() {
	addSourceFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"fmt"

	"github.com/barysiuk/skillpack/internal/core/manifest"
	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Render a skill's SKILL.md",
	Long: `Find the skill whose output name (or plain name) matches <skill-name> in
the marketplace manifest and print its SKILL.md, rendered as markdown when
stdout is a terminal.`,
	Args: cobra.ExactArgs(1),
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

		ref, err := findSkill(m, resolver, args[0])
		if err != nil {
			return err
		}
		doc, err := skill.ReadDocument(ref.SourceDir)
		if err != nil {
			return fmt.Errorf("reading %s: %w", skill.FileName, err)
		}

		out := cmd.OutOrStdout()
		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !isTerminal(out) {
			_, err = out.Write(doc)
			return err
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			_, err = out.Write(doc)
			return err
		}
		rendered, err := r.Render(string(doc))
		if err != nil {
			rendered = string(doc)
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

// findSkill returns the first skill, in manifest order, whose output name or
// plain name is name. Output names win over plain names.
func findSkill(m *manifest.Manifest, resolver *skill.Resolver, name string) (*skill.Ref, error) {
	var byName *skill.Ref
	for _, p := range m.Plugins {
		for _, raw := range p.Skills {
			if resolver.OutputName(p, raw) == name {
				return resolver.Resolve(p, raw)
			}
			if byName == nil && skill.Name(raw) == name {
				byName, _ = resolver.Locate(p, raw)
			}
		}
	}
	if byName == nil {
		return nil, fmt.Errorf("skill %q not found in manifest", name)
	}
	if err := skill.Check(byName.SourceDir); err != nil {
		return nil, err
	}
	return byName, nil
}

func init() {
	addSourceFlags(showCmd)
	showCmd.Flags().Bool("raw", false, "Print SKILL.md without markdown rendering")
	rootCmd.AddCommand(showCmd)
}

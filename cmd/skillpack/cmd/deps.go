package cmd

import (
	"fmt"
	"os"

	"github.com/barysiuk/skillpack/internal/config"
	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/barysiuk/skillpack/internal/logger"
	"github.com/spf13/cobra"
)

// deps holds shared dependencies for CLI commands.
type deps struct {
	settings *config.Settings
	cwd      string
}

// newDeps merges flags, environment and config file for cmd and configures
// logging. Called lazily by commands that need it.
func newDeps(cmd *cobra.Command) (*deps, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.New(configFile, cwd)
	if err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	settings, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	if err := logger.Configure(settings.LogLevel, settings.LogFormat, cmd.ErrOrStderr()); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.L.WithField("file", used).Debug("using config file")
	}

	return &deps{settings: settings, cwd: cwd}, nil
}

// resolver builds the skill resolver for the configured mode. Plugin mode
// anchors plugin sources at --plugins; direct mode uses the working directory.
func (d *deps) resolver() (*skill.Resolver, error) {
	mode, err := skill.ParseMode(d.settings.Resolve)
	if err != nil {
		return nil, err
	}
	base := d.cwd
	if mode == skill.ModePlugin && d.settings.Plugins != "" {
		base = d.settings.Plugins
	}
	return skill.NewResolver(mode, base, d.settings.Prefix)
}

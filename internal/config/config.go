// Package config loads skillpack settings from flags, SKILLPACK_* environment
// variables and an optional .skillpack.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/barysiuk/skillpack/internal/core/manifest"
	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. SKILLPACK_OUTPUT.
	EnvPrefix = "SKILLPACK"
	// FileName is the config file looked up in the working directory.
	FileName = ".skillpack"

	// DefaultPackageOutput is where archives go without --output.
	DefaultPackageOutput = "dist"
)

// Settings is the merged configuration for one invocation.
type Settings struct {
	Marketplace string   `mapstructure:"marketplace"`
	Plugins     string   `mapstructure:"plugins"`
	Output      string   `mapstructure:"output"`
	Project     bool     `mapstructure:"project"`
	Prefix      bool     `mapstructure:"prefix"`
	Copy        bool     `mapstructure:"copy"`
	DryRun      bool     `mapstructure:"dry-run"`
	Resolve     string   `mapstructure:"resolve"`
	Exclude     []string `mapstructure:"exclude"`
	Jobs        int      `mapstructure:"jobs"`
	Strict      bool     `mapstructure:"strict"`
	Progress    bool     `mapstructure:"progress"`

	Verbose   bool   `mapstructure:"verbose"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("marketplace", manifest.DefaultPath)
	v.SetDefault("plugins", "")
	v.SetDefault("output", "")
	v.SetDefault("project", false)
	v.SetDefault("prefix", false)
	v.SetDefault("copy", false)
	v.SetDefault("dry-run", false)
	v.SetDefault("resolve", string(skill.ModePlugin))
	v.SetDefault("exclude", []string{})
	v.SetDefault("jobs", 1)
	v.SetDefault("strict", false)
	v.SetDefault("progress", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
}

// New creates a viper instance with defaults and environment overrides and
// reads the config file. An explicit configFile must exist; otherwise
// .skillpack.yaml in dir is read when present.
func New(configFile, dir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
		return v, nil
	}

	v.AddConfigPath(dir)
	v.SetConfigType("yaml")
	v.SetConfigName(FileName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// BindFlags makes changed flags take precedence over every other source.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// Load decodes and validates the merged settings.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if s.Verbose {
		s.LogLevel = "debug"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects settings no command can run with.
func (s *Settings) Validate() error {
	if _, err := skill.ParseMode(s.Resolve); err != nil {
		return err
	}
	if s.Jobs < 0 {
		return fmt.Errorf("jobs must be zero or positive, got %d", s.Jobs)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", s.LogFormat)
	}
	return nil
}

// SyncRoot is the sync output root: --output when set, otherwise
// DefaultSyncOutput. Only sync reads project, so the conflict is checked here.
func (s *Settings) SyncRoot() (string, error) {
	if s.Output != "" && s.Project {
		return "", fmt.Errorf("--output and --project cannot be used together")
	}
	if s.Output != "" {
		return s.Output, nil
	}
	return DefaultSyncOutput(s.Project)
}

// DefaultSyncOutput is the agent skills directory: ~/.claude/skills, or
// ./.claude/skills under the working directory for project installs.
func DefaultSyncOutput(project bool) (string, error) {
	if project {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, ".claude", "skills"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "skills"), nil
}

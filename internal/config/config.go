package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
)

type ProviderType string

const (
	ProviderLocal  ProviderType = "local"
	ProviderGitHub ProviderType = "github"
	ProviderGitLab ProviderType = "gitlab"
)

var supportedProviders = []ProviderType{ProviderLocal, ProviderGitHub, ProviderGitLab}

var supportedThemes = []string{"auto", "light", "dark"}

// Config represents the application configuration
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Graph    GraphConfig    `yaml:"graph"`
	UI       UIConfig       `yaml:"ui"`
}

type ProviderConfig struct {
	Type       ProviderType `yaml:"type" env:"BRANCHVIEW_PROVIDER"`
	BaseURL    string       `yaml:"base_url" env:"BRANCHVIEW_BASE_URL"`
	Token      string       `yaml:"token" env:"BRANCHVIEW_TOKEN"`
	Repository string       `yaml:"repository" env:"BRANCHVIEW_REPOSITORY"`
	Workers    int          `yaml:"workers" env:"BRANCHVIEW_WORKERS"`
}

type GraphConfig struct {
	Depth             int      `yaml:"depth" env:"BRANCHVIEW_DEPTH"`
	Mode              string   `yaml:"mode" env:"BRANCHVIEW_MODE"`
	Branches          []string `yaml:"branches" env:"BRANCHVIEW_BRANCHES" env-separator:","`
	MergeBaseFallback bool     `yaml:"merge_base_fallback" env:"BRANCHVIEW_MERGE_BASE_FALLBACK"`
}

type UIConfig struct {
	Theme   string `yaml:"theme" env:"BRANCHVIEW_THEME"`
	NoWatch bool   `yaml:"no_watch" env:"BRANCHVIEW_NO_WATCH"`
	Verbose bool   `yaml:"verbose" env:"BRANCHVIEW_VERBOSE"`
}

// Load reads path (when set) and then the environment. Defaults are applied
// but the result is not validated, so callers can layer flags on top first.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Provider.Type == "" {
		c.Provider.Type = ProviderLocal
	}
	c.Provider.Type = ProviderType(strings.ToLower(string(c.Provider.Type)))
	if c.Provider.Repository == "" && c.Provider.Type == ProviderLocal {
		c.Provider.Repository = "."
	}
	if c.Provider.Workers <= 0 {
		c.Provider.Workers = source.DefaultWorkers
	}

	if c.Graph.Depth <= 0 {
		c.Graph.Depth = source.DefaultDepth
	}
	c.Graph.Depth = source.ClampDepth(c.Graph.Depth)
	if c.Graph.Mode == "" {
		c.Graph.Mode = graph.ModeOverview.String()
	}
	c.Graph.Branches = cleanBranches(c.Graph.Branches)

	if c.UI.Theme == "" {
		c.UI.Theme = "auto"
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !slices.Contains(supportedProviders, c.Provider.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider.Type)
	}
	if strings.TrimSpace(c.Provider.Repository) == "" {
		return ErrMissingRepository
	}
	if c.Provider.Type != ProviderLocal {
		if c.Provider.Token == "" {
			return fmt.Errorf("%w for %s", ErrMissingToken, c.Provider.Type)
		}
		if _, err := source.ParseRepository(c.Provider.Repository); err != nil {
			return err
		}
	}
	if _, err := graph.ParseMode(c.Graph.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Graph.Mode)
	}
	if !slices.Contains(supportedThemes, c.UI.Theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.UI.Theme)
	}
	return nil
}

// GraphMode returns the parsed mode; call Validate first.
func (c *Config) GraphMode() graph.Mode {
	mode, _ := graph.ParseMode(c.Graph.Mode)
	return mode
}

func cleanBranches(in []string) []string {
	var out []string
	for _, b := range in {
		b = strings.TrimSpace(b)
		if b == "" || slices.Contains(out, b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SplitBranches parses a comma separated branch list.
func SplitBranches(raw string) []string {
	return cleanBranches(strings.Split(raw, ","))
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "branchview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Type != ProviderLocal || cfg.Provider.Repository != "." {
		t.Fatalf("unexpected provider defaults %+v", cfg.Provider)
	}
	if cfg.Provider.Workers != source.DefaultWorkers || cfg.Graph.Depth != source.DefaultDepth {
		t.Fatalf("unexpected numeric defaults %+v %+v", cfg.Provider, cfg.Graph)
	}
	if cfg.GraphMode() != graph.ModeOverview || cfg.UI.Theme != "auto" {
		t.Fatalf("unexpected mode/theme %q %q", cfg.Graph.Mode, cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := writeConfig(t, `
provider:
  type: GitHub
  token: from-file
  repository: octo/hello
graph:
  depth: 900
  mode: detailed
  branches: [main, " dev ", main]
  merge_base_fallback: true
ui:
  theme: dark
  no_watch: true
`)
	t.Setenv("BRANCHVIEW_TOKEN", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Type != ProviderGitHub {
		t.Fatalf("provider type = %q", cfg.Provider.Type)
	}
	if cfg.Provider.Token != "from-env" {
		t.Fatalf("environment should override the file, got %q", cfg.Provider.Token)
	}
	if cfg.Graph.Depth != source.MaxDepth {
		t.Fatalf("depth should be capped, got %d", cfg.Graph.Depth)
	}
	if want := []string{"main", "dev"}; !reflect.DeepEqual(cfg.Graph.Branches, want) {
		t.Fatalf("branches = %v, want %v", cfg.Graph.Branches, want)
	}
	if !cfg.Graph.MergeBaseFallback || !cfg.UI.NoWatch || cfg.GraphMode() != graph.ModeDetailed {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{Provider: ProviderConfig{Type: ProviderGitLab, Token: "t", Repository: "group/sub/project"}}
		c.SetDefaults()
		return c
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"unknown provider", func(c *Config) { c.Provider.Type = "svn" }, ErrUnknownProvider},
		{"missing token", func(c *Config) { c.Provider.Token = "" }, ErrMissingToken},
		{"missing repository", func(c *Config) { c.Provider.Repository = " " }, ErrMissingRepository},
		{"bad repository", func(c *Config) { c.Provider.Repository = "justaname" }, source.ErrInvalidRepository},
		{"bad mode", func(c *Config) { c.Graph.Mode = "radial" }, ErrInvalidMode},
		{"bad theme", func(c *Config) { c.UI.Theme = "sepia" }, ErrInvalidTheme},
		{"local needs no token", func(c *Config) {
			c.Provider.Type = ProviderLocal
			c.Provider.Token = ""
			c.Provider.Repository = "/tmp/repo"
		}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSplitBranches(t *testing.T) {
	got := SplitBranches(" main,,feature , main,dev")
	if want := []string{"main", "feature", "dev"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitBranches = %v, want %v", got, want)
	}
	if got := SplitBranches(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

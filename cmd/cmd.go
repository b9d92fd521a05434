package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thiagokokada/branchview/internal/buildinfo"
	"github.com/thiagokokada/branchview/internal/config"
	"github.com/thiagokokada/branchview/internal/gui"
	"github.com/thiagokokada/branchview/internal/session"
)

const (
	dumpJSON = "json"
	dumpText = "text"
)

var errInvalidDump = errors.New("invalid -dump format")

type options struct {
	configPath        string
	provider          string
	token             string
	baseURL           string
	depth             int
	mode              string
	branches          string
	search            string
	theme             string
	noWatch           bool
	mergeBaseFallback bool
	dump              string
	verbose           bool
	version           bool
	repository        string

	// set holds the names of the flags given on the command line.
	set map[string]bool
}

func Run() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, buildinfo.VersionWithTags())
		return nil
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogging(stderr, cfg.UI.Verbose)

	target, err := newSource(cfg)
	if err != nil {
		return err
	}
	sessOpts := session.Options{
		Depth:             cfg.Graph.Depth,
		Mode:              cfg.GraphMode(),
		Branches:          cfg.Graph.Branches,
		Query:             opts.search,
		Workers:           cfg.Provider.Workers,
		MergeBaseFallback: cfg.Graph.MergeBaseFallback,
	}
	slog.Debug("starting",
		slog.String("provider", string(cfg.Provider.Type)),
		slog.String("repository", target.label),
		slog.Int("depth", cfg.Graph.Depth),
		slog.String("mode", cfg.Graph.Mode),
	)
	if opts.dump != "" {
		return dump(context.Background(), target.src, sessOpts, opts.dump, stdout)
	}
	watchPath := target.watchPath
	if cfg.UI.NoWatch {
		watchPath = ""
	}
	return gui.Run(gui.RunConfig{
		Source:          target.src,
		RepoLabel:       target.label,
		WatchPath:       watchPath,
		Session:         sessOpts,
		ThemePreference: gui.ThemePreferenceFromString(cfg.UI.Theme),
		AutoReload:      !cfg.UI.NoWatch,
	})
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("branchview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&opts.provider, "provider", "", "data source: local, github, or gitlab")
	fs.StringVar(&opts.token, "token", "", "API token (defaults to $BRANCHVIEW_TOKEN)")
	fs.StringVar(&opts.baseURL, "base-url", "", "API base URL for self-hosted GitHub or GitLab")
	fs.IntVar(&opts.depth, "depth", 0, "commits to fetch per branch (default 100, at most 500)")
	fs.StringVar(&opts.mode, "mode", "", "graph mode: overview or detailed")
	fs.StringVar(&opts.branches, "branches", "", "comma separated branches to show initially")
	fs.StringVar(&opts.search, "search", "", "initial search filter")
	fs.StringVar(&opts.theme, "theme", "", "color theme: auto, light, or dark")
	fs.BoolVar(&opts.noWatch, "nowatch", false, "disable automatic reload when a local repository changes")
	fs.BoolVar(&opts.mergeBaseFallback, "merge-base-fallback", false, "ask the source for merge bases the fetched history cannot show")
	fs.StringVar(&opts.dump, "dump", "", "print the layout as json or text and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	if remaining := fs.Args(); len(remaining) > 0 {
		opts.repository = remaining[len(remaining)-1]
	}
	switch opts.dump {
	case "", dumpJSON, dumpText:
	default:
		return options{}, fmt.Errorf("%w: %q (want json or text)", errInvalidDump, opts.dump)
	}
	return opts, nil
}

// loadConfig layers command line flags over the file and environment.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.set["provider"] {
		cfg.Provider.Type = config.ProviderType(opts.provider)
		if cfg.Provider.Type != config.ProviderLocal && cfg.Provider.Repository == "." {
			cfg.Provider.Repository = ""
		}
	}
	if opts.set["token"] {
		cfg.Provider.Token = opts.token
	}
	if opts.set["base-url"] {
		cfg.Provider.BaseURL = opts.baseURL
	}
	if opts.repository != "" {
		cfg.Provider.Repository = opts.repository
	}
	if opts.set["depth"] {
		cfg.Graph.Depth = opts.depth
	}
	if opts.set["mode"] {
		cfg.Graph.Mode = opts.mode
	}
	if opts.set["branches"] {
		cfg.Graph.Branches = config.SplitBranches(opts.branches)
	}
	if opts.set["merge-base-fallback"] {
		cfg.Graph.MergeBaseFallback = opts.mergeBaseFallback
	}
	if opts.set["theme"] {
		cfg.UI.Theme = opts.theme
	}
	if opts.set["nowatch"] {
		cfg.UI.NoWatch = opts.noWatch
	}
	if opts.set["verbose"] {
		cfg.UI.Verbose = opts.verbose
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

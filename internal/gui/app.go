package gui

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thiagokokada/branchview/internal/session"
	"github.com/thiagokokada/branchview/internal/source"

	. "modernc.org/tk9.0"
	_ "modernc.org/tk9.0/themes/azure" // load theme
)

const searchDebounceDelay = 240 * time.Millisecond

//go:embed assets/appicon.svg
var appIconSVG string

// RunConfig describes the parameters that control the GUI runtime.
type RunConfig struct {
	Source source.Source
	// RepoLabel is shown above the graph and in the window title.
	RepoLabel string
	// WatchPath enables the change watcher for local repositories.
	WatchPath       string
	Session         session.Options
	ThemePreference ThemePreference
	AutoReload      bool
}

func Run(cfg RunConfig) error {
	if cfg.Source == nil {
		return fmt.Errorf("gui: no data source")
	}
	if err := InitializeExtension("eval"); err != nil && err != AlreadyInitialized {
		return fmt.Errorf("init eval extension: %v", err)
	}
	pref := cfg.ThemePreference
	if pref < ThemeAuto || pref > ThemeDark {
		pref = ThemeAuto
	}
	app := &Controller{
		cfg: controllerConfig{
			autoReloadRequested: cfg.AutoReload && cfg.WatchPath != "",
		},
		repo: controllerRepo{
			label:     cfg.RepoLabel,
			watchPath: cfg.WatchPath,
		},
		theme: controllerTheme{
			pref: pref,
		},
	}
	opts := cfg.Session
	app.state.search.applied = strings.TrimSpace(opts.Query)
	opts.Dispatch = func(fn func()) { PostEvent(fn, false) }
	opts.OnChange = app.refresh
	opts.Actions = session.Actions{Clipboard: tkClipboard{}, Opener: systemOpener{}}
	app.sess = session.New(cfg.Source, opts)
	return app.run()
}

func (a *Controller) run() error {
	defer a.shutdown()
	a.theme.palette = paletteForPreference(a.theme.pref)
	if a.theme.palette.ThemeName != "" {
		err := ActivateTheme(a.theme.palette.ThemeName)
		if err != nil {
			slog.Error(
				"activate theme",
				slog.String("theme", a.theme.palette.ThemeName),
				slog.Any("error", err),
			)
		}
	}
	applyAppIcon()
	a.buildUI()
	a.initAutoReload(a.cfg.autoReloadRequested)
	a.setStatus("Loading branches...")
	go func() {
		if err := a.sess.Load(context.Background()); err != nil {
			slog.Error("load session", slog.String("session", a.sess.ID()), slog.Any("error", err))
		}
	}()
	App.WmTitle(windowTitle(a.repo.label))
	App.SetResizable(true, true)
	App.Center().Wait()
	return nil
}

func applyAppIcon() {
	if strings.TrimSpace(appIconSVG) == "" {
		return
	}
	if img := NewPhoto(Data(appIconSVG)); img != nil {
		App.IconPhoto(img)
	}
}

func (a *Controller) shutdown() {
	a.disableAutoReload()
	a.stopSearchDebounce()
	a.sess.Close()
}

// refresh pulls a snapshot and updates every widget that depends on it.
func (a *Controller) refresh() {
	snap := a.sess.Snapshot()
	a.setStatus(statusText(snap))
	a.updateModeButton(snap.Mode)
	a.updateBranchPanel(snap)
	a.updateDetail()
	a.scheduleRedraw()
}

func (a *Controller) setStatus(msg string) {
	if a.ui.status == nil {
		return
	}
	a.ui.status.Configure(Txt(msg))
}

func (a *Controller) updateDetail() {
	if a.ui.detail == nil {
		return
	}
	text := noSelectionText
	if d, ok := a.sess.Detail(); ok {
		text = detailText(d)
	}
	a.writeDetailText(text)
}

func (a *Controller) writeDetailText(content string) {
	a.ui.detail.Configure(State(NORMAL))
	a.ui.detail.Delete("1.0", END)
	a.ui.detail.Insert("1.0", content)
	a.ui.detail.TagRemove("detailHeader", "1.0", END)
	if content != noSelectionText {
		a.ui.detail.TagAdd("detailHeader", "1.0", "2.0")
	}
	a.ui.detail.Configure(State("disabled"))
}

func (a *Controller) reload() {
	a.sess.Refresh()
}

func (a *Controller) toggleMode() {
	a.sess.SetMode(nextMode(a.sess.Snapshot().Mode))
}

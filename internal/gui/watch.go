package gui

import (
	"log/slog"

	"github.com/thiagokokada/branchview/internal/source/local"
	. "modernc.org/tk9.0"
)

func (a *Controller) initAutoReload(requested bool) {
	a.state.watch.mu.Lock()
	a.state.watch.configured = requested
	a.state.watch.mu.Unlock()
	if requested {
		if err := a.enableAutoReload(); err != nil {
			slog.Error("auto reload disabled", slog.Any("error", err))
			a.state.watch.mu.Lock()
			a.state.watch.configured = false
			a.state.watch.mu.Unlock()
		}
	}
	a.updateReloadButtonLabel()
}

func (a *Controller) enableAutoReload() error {
	a.state.watch.mu.Lock()
	defer a.state.watch.mu.Unlock()
	if !a.state.watch.configured || a.state.watch.enabled {
		return nil
	}
	w, err := local.Watch(a.repo.watchPath, local.DefaultWatchDelay, func() {
		PostEvent(func() {
			slog.Debug("auto reload", slog.String("path", a.repo.watchPath))
			a.reload()
		}, false)
	})
	if err != nil {
		return err
	}
	a.state.watch.watcher = w
	a.state.watch.enabled = true
	return nil
}

func (a *Controller) disableAutoReload() {
	a.state.watch.mu.Lock()
	defer a.state.watch.mu.Unlock()
	if a.state.watch.watcher != nil {
		if err := a.state.watch.watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
		a.state.watch.watcher = nil
	}
	a.state.watch.enabled = false
}

func (a *Controller) updateReloadButtonLabel() {
	if a.ui.reload == nil {
		return
	}
	a.state.watch.mu.Lock()
	label := reloadButtonText(a.state.watch.configured, a.state.watch.enabled)
	a.state.watch.mu.Unlock()
	a.ui.reload.Configure(Txt(label))
}

func reloadButtonText(configured, enabled bool) string {
	if !configured {
		return "Reload"
	}
	if enabled {
		return "Reload (Auto On)"
	}
	return "Reload (Auto Off)"
}

// onReloadButton reloads, and flips the watcher first when auto reload is
// configured.
func (a *Controller) onReloadButton() {
	a.state.watch.mu.Lock()
	configured := a.state.watch.configured
	enabled := a.state.watch.enabled
	a.state.watch.mu.Unlock()
	if configured {
		if enabled {
			a.disableAutoReload()
		} else if err := a.enableAutoReload(); err != nil {
			slog.Error("auto reload enable failed", slog.Any("error", err))
		}
		a.updateReloadButtonLabel()
	}
	a.reload()
}

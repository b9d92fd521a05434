package gui

import (
	"log/slog"
	"strings"

	"github.com/thiagokokada/branchview/internal/debounce"

	. "modernc.org/tk9.0"
)

func (a *Controller) applySearch(raw string) {
	if a.ui.search != nil && a.ui.search.Textvariable() != raw {
		return
	}
	a.applySearchValue(raw)
}

func (a *Controller) applySearchValue(raw string) {
	value := strings.TrimSpace(raw)
	if value == a.state.search.applied {
		return
	}
	a.state.search.applied = value
	a.sess.SetQuery(value)
}

func (a *Controller) applySearchImmediate(raw string) {
	a.stopSearchDebounce()
	a.applySearchValue(raw)
}

func (a *Controller) scheduleSearchApply(raw string) {
	if strings.TrimSpace(raw) == "" {
		a.applySearchImmediate("")
		return
	}
	slog.Debug("scheduleSearchApply", slog.String("value", raw))
	debouncer := func() *debounce.Debouncer {
		a.state.search.mu.Lock()
		defer a.state.search.mu.Unlock()
		a.state.search.pending = raw
		return debounce.Ensure(&a.state.search.debouncer, searchDebounceDelay, func() {
			a.flushSearchDebounce()
		})
	}()
	debouncer.Trigger()
}

func (a *Controller) flushSearchDebounce() {
	value := func() string {
		a.state.search.mu.Lock()
		defer a.state.search.mu.Unlock()
		val := a.state.search.pending
		a.state.search.pending = ""
		return val
	}()
	if value == "" {
		return
	}
	PostEvent(func() {
		a.applySearch(value)
	}, false)
}

func (a *Controller) stopSearchDebounce() {
	a.state.search.mu.Lock()
	defer a.state.search.mu.Unlock()
	if deb := a.state.search.debouncer; deb != nil {
		deb.Stop()
	}
	a.state.search.debouncer = nil
	a.state.search.pending = ""
}

func (a *Controller) clearSearch() {
	if a.ui.search != nil {
		a.ui.search.Configure(Textvariable(""))
	}
	a.applySearchImmediate("")
}

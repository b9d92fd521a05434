package gui

import (
	"sync"

	"github.com/thiagokokada/branchview/internal/debounce"
	"github.com/thiagokokada/branchview/internal/session"
	"github.com/thiagokokada/branchview/internal/source/local"
	. "modernc.org/tk9.0"
)

// Controller owns the Tk widgets of one window and renders snapshots of its
// session. All methods except the watcher callbacks run on the Tk thread.
type Controller struct {
	sess *session.Session

	cfg   controllerConfig
	repo  controllerRepo
	theme controllerTheme

	ui appWidgets

	state controllerState
}

type controllerConfig struct {
	autoReloadRequested bool
}

type controllerRepo struct {
	label     string
	watchPath string
}

type controllerTheme struct {
	pref    ThemePreference
	palette colorPalette
}

type appWidgets struct {
	canvas     *CanvasWidget
	branchList *ListboxWidget
	detail     *TextWidget
	status     *TLabelWidget
	mode       *TButtonWidget
	reload     *TButtonWidget
	search     *TEntryWidget
	menu       *MenuWidget
	shortcuts  *ToplevelWidget
}

type controllerState struct {
	canvas canvasState
	search searchState
	panel  branchPanelState
	watch  autoReloadState
}

type canvasState struct {
	redrawPending bool
	width         int
	height        int
}

type searchState struct {
	mu        sync.Mutex
	pending   string
	applied   string
	debouncer *debounce.Debouncer
}

type branchPanelState struct {
	// names mirrors the listbox rows.
	names []string
}

type autoReloadState struct {
	mu         sync.Mutex
	configured bool
	enabled    bool
	watcher    *local.Watcher
}

package gui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/gui/tkutil"
	"github.com/thiagokokada/branchview/internal/session"
	"github.com/thiagokokada/branchview/internal/viewport"

	. "modernc.org/tk9.0"
)

func (a *Controller) bindShortcuts() {
	bindNav := func(sequence string, handler func()) {
		Bind(App, sequence, Command(func() {
			if a.searchHasFocus() {
				return
			}
			handler()
		}))
	}
	bindAny := func(sequence string, handler func()) {
		Bind(App, sequence, Command(handler))
	}
	for _, sc := range a.shortcutBindings() {
		if sc.handler == nil {
			continue
		}
		for _, seq := range sc.sequences {
			if seq == "" {
				continue
			}
			if sc.navigation {
				bindNav(seq, sc.handler)
			} else {
				bindAny(seq, sc.handler)
			}
		}
	}
}

type shortcutBinding struct {
	sequences   []string
	display     string
	description string
	category    string
	navigation  bool
	handler     func()
}

func (a *Controller) shortcutBindings() []shortcutBinding {
	return []shortcutBinding{
		{
			category:    "Graph",
			display:     "n / j",
			description: "Select the next commit",
			sequences:   []string{"<KeyPress-n>", "<KeyPress-j>"},
			navigation:  true,
			handler:     func() { a.moveSelection(1) },
		},
		{
			category:    "Graph",
			display:     "p / k",
			description: "Select the previous commit",
			sequences:   []string{"<KeyPress-p>", "<KeyPress-k>"},
			navigation:  true,
			handler:     func() { a.moveSelection(-1) },
		},
		{
			category:    "Graph",
			display:     "+ / =",
			description: "Zoom in",
			sequences:   []string{"<KeyPress-plus>", "<KeyPress-equal>"},
			navigation:  true,
			handler:     func() { a.zoomStep(viewport.ZoomInStep) },
		},
		{
			category:    "Graph",
			display:     "-",
			description: "Zoom out",
			sequences:   []string{"<KeyPress-minus>"},
			navigation:  true,
			handler:     func() { a.zoomStep(viewport.ZoomOutStep) },
		},
		{
			category:    "Graph",
			display:     "0",
			description: "Reset zoom and pan",
			sequences:   []string{"<KeyPress-0>"},
			navigation:  true,
			handler:     a.resetView,
		},
		{
			category:    "Graph",
			display:     "m",
			description: "Switch between overview and detailed mode",
			sequences:   []string{"<KeyPress-m>"},
			navigation:  true,
			handler:     a.toggleMode,
		},
		{
			category:    "Commit",
			display:     "y",
			description: "Copy the selected commit SHA",
			sequences:   []string{"<KeyPress-y>"},
			navigation:  true,
			handler:     func() { a.runSelectedAction(session.ActionCopySHA) },
		},
		{
			category:    "Commit",
			display:     "o",
			description: "Open the selected commit in the browser",
			sequences:   []string{"<KeyPress-o>"},
			navigation:  true,
			handler:     func() { a.runSelectedAction(session.ActionOpenExternal) },
		},
		{
			category:    "General",
			display:     "/",
			description: "Focus the search box",
			sequences:   []string{"<KeyPress-slash>"},
			navigation:  false,
			handler:     a.focusSearchEntry,
		},
		{
			category:    "General",
			display:     "Escape",
			description: "Leave the search box or clear the selection",
			sequences:   []string{"<KeyPress-Escape>"},
			navigation:  false,
			handler:     a.onEscape,
		},
		{
			category:    "General",
			display:     "F5",
			description: "Reload commits",
			sequences:   []string{"<F5>"},
			navigation:  false,
			handler:     a.reload,
		},
		{
			category:    "General",
			display:     "F1",
			description: "Show shortcut list",
			sequences:   []string{"<F1>"},
			navigation:  false,
			handler:     a.showShortcutsDialog,
		},
		{
			category:    "General",
			display:     "Ctrl+Q",
			description: "Quit branchview",
			sequences:   []string{"<Control-KeyPress-q>"},
			navigation:  false,
			handler:     func() { Destroy(App) },
		},
	}
}

func (a *Controller) searchHasFocus() bool {
	if a.ui.search == nil {
		return false
	}
	return Focus() == a.ui.search.String()
}

func (a *Controller) focusSearchEntry() {
	if a.ui.search == nil || a.searchHasFocus() {
		return
	}
	if _, err := tkutil.Eval("focus %s", a.ui.search); err != nil {
		slog.Error("focus search", slog.Any("error", err))
	}
	if _, err := tkutil.Eval("%s selection range 0 end", a.ui.search); err != nil {
		slog.Error("select search", slog.Any("error", err))
	}
	if _, err := tkutil.Eval("%s icursor end", a.ui.search); err != nil {
		slog.Error("cursor search", slog.Any("error", err))
	}
}

func (a *Controller) onEscape() {
	if !a.searchHasFocus() {
		a.sess.ClearSelection()
		a.updateDetail()
		a.scheduleRedraw()
		return
	}
	target := App.String()
	if a.ui.canvas != nil {
		target = a.ui.canvas.String()
	}
	if target == "" {
		target = "."
	}
	if _, err := tkutil.Eval("focus %s", target); err != nil {
		slog.Error("blur search", slog.Any("error", err))
	}
}

func (a *Controller) moveSelection(delta int) {
	snap := a.sess.Snapshot()
	sha, ok := adjacentNode(snap.Layout, snap.Selected, delta)
	if !ok || !a.sess.Select(sha) {
		return
	}
	a.updateDetail()
	a.scheduleRedraw()
}

// adjacentNode steps delta nodes away from sha in layout order. Without a
// current node it starts at the first or last node.
func adjacentNode(l *graph.Layout, sha string, delta int) (string, bool) {
	if l.Empty() {
		return "", false
	}
	idx := slices.IndexFunc(l.Nodes, func(n graph.Node) bool { return n.SHA == sha })
	switch {
	case idx < 0 && delta >= 0:
		idx = 0
	case idx < 0:
		idx = len(l.Nodes) - 1
	default:
		idx = max(0, min(len(l.Nodes)-1, idx+delta))
	}
	return l.Nodes[idx].SHA, true
}

func (a *Controller) runSelectedAction(action session.Action) {
	sha := a.sess.Snapshot().Selected
	if sha == "" {
		return
	}
	a.runAction(action, sha)
}

func (a *Controller) showShortcutsDialog() {
	if a.ui.shortcuts != nil {
		Destroy(a.ui.shortcuts.Window)
		a.ui.shortcuts = nil
	}
	dialog := App.Toplevel()
	a.ui.shortcuts = dialog
	dialog.Window.WmTitle("Keyboard Shortcuts")
	WmTransient(dialog.Window, App)
	WmAttributes(dialog.Window, "-topmost", 1)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 1, Weight(1))

	header := frame.TLabel(Txt("Keyboard Shortcuts"), Anchor(W))
	Grid(header, Row(0), Column(0), Sticky(W), Pady("0 8p"))

	text := frame.Text(Width(62), Height(18), Wrap(WORD), Exportselection(false))
	text.Insert("1.0", formatShortcutsHelpText(a.shortcutBindings()))
	text.Configure(State("disabled"))
	Grid(text, Row(1), Column(0), Sticky(NEWS))

	closeBtn := frame.TButton(Txt("Close"), Command(func() { Destroy(dialog.Window) }))
	Grid(closeBtn, Row(2), Column(0), Sticky(E), Pady("8p 0"))

	Bind(dialog.Window, "<Destroy>", Command(func() {
		if a.ui.shortcuts == dialog {
			a.ui.shortcuts = nil
		}
	}))
	dialog.Window.Center()
}

func formatShortcutsHelpText(bindings []shortcutBinding) string {
	var b strings.Builder
	currentCategory := ""
	for _, sc := range bindings {
		if sc.category == "" || sc.display == "" || sc.description == "" {
			continue
		}
		if sc.category != currentCategory {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			currentCategory = sc.category
			b.WriteString(currentCategory)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %-8s %s\n", sc.display, sc.description)
	}
	return strings.TrimRight(b.String(), "\n")
}

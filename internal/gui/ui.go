package gui

import (
	"fmt"
	"log/slog"

	"github.com/thiagokokada/branchview/internal/graph"

	. "modernc.org/tk9.0"
	evalext "modernc.org/tk9.0/extensions/eval"
)

func (a *Controller) buildUI() {
	GridColumnConfigure(App, 0, Weight(1))
	GridRowConfigure(App, 1, Weight(1))

	controls := App.TFrame(Padding("8p"))
	Grid(controls, Row(0), Column(0), Sticky(WE))
	GridColumnConfigure(controls.Window, 1, Weight(1))

	repoLabel := fmt.Sprintf("Repository: %s", a.repo.label)
	Grid(controls.TLabel(Txt(repoLabel), Anchor(W)), Row(0), Column(0), Columnspan(5), Sticky(W))

	Grid(controls.TLabel(Txt("Search:"), Anchor(E)), Row(1), Column(0), Sticky(E))
	a.ui.search = controls.TEntry(Width(40), Textvariable(a.state.search.applied))
	Grid(a.ui.search, Row(1), Column(1), Sticky(WE), Padx("4p"))
	Bind(a.ui.search, "<KeyRelease>", Command(func() {
		a.scheduleSearchApply(a.ui.search.Textvariable())
	}))

	clearBtn := controls.TButton(Txt("Clear"), Command(a.clearSearch))
	Grid(clearBtn, Row(1), Column(2), Sticky(E), Padx("4p"))
	a.ui.mode = controls.TButton(Txt(modeButtonText(a.sess.Snapshot().Mode)), Command(a.toggleMode))
	Grid(a.ui.mode, Row(1), Column(3), Sticky(E), Padx("4p"))
	a.ui.reload = controls.TButton(Txt("Reload"), Command(a.onReloadButton))
	Grid(a.ui.reload, Row(1), Column(4), Sticky(E))

	pane := App.TPanedwindow(Orient(HORIZONTAL))
	Grid(pane, Row(1), Column(0), Sticky(NEWS), Padx("4p"), Pady("4p"))

	branchArea := pane.TFrame()
	graphArea := pane.TFrame()
	pane.Add(branchArea.Window)
	pane.Add(graphArea.Window)
	configurePane := func(window *Window, options string) {
		if _, err := evalext.Eval(fmt.Sprintf("%s pane %s %s", pane, window, options)); err != nil {
			slog.Error("configure pane", slog.String("options", options), slog.Any("error", err))
		}
	}
	configurePane(branchArea.Window, "-weight 1")
	configurePane(graphArea.Window, "-weight 5")

	a.buildBranchPanel(branchArea)

	GridRowConfigure(graphArea.Window, 0, Weight(1))
	GridColumnConfigure(graphArea.Window, 0, Weight(1))
	graphPane := graphArea.TPanedwindow(Orient(VERTICAL))
	Grid(graphPane, Row(0), Column(0), Sticky(NEWS))

	canvasFrame := graphPane.TFrame()
	detailFrame := graphPane.TFrame()
	graphPane.Add(canvasFrame.Window)
	graphPane.Add(detailFrame.Window)

	GridRowConfigure(canvasFrame.Window, 0, Weight(1))
	GridColumnConfigure(canvasFrame.Window, 0, Weight(1))
	a.ui.canvas = canvasFrame.Canvas(
		Background(a.theme.palette.Canvas),
		Highlightthickness(0),
		Width(800),
		Height(360),
	)
	Grid(a.ui.canvas, Row(0), Column(0), Sticky(NEWS))
	a.bindCanvas()
	a.initContextMenu()

	GridRowConfigure(detailFrame.Window, 0, Weight(1))
	GridColumnConfigure(detailFrame.Window, 0, Weight(1))
	detailScroll := detailFrame.TScrollbar(Command(func(e *Event) { e.Yview(a.ui.detail) }))
	a.ui.detail = detailFrame.Text(Wrap(WORD), Height(9), Font(CourierFont(), 11), Exportselection(false))
	a.ui.detail.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(detailScroll) }))
	a.ui.detail.TagConfigure("detailHeader", Background(a.theme.palette.DetailHead))
	Grid(a.ui.detail, Row(0), Column(0), Sticky(NEWS))
	Grid(detailScroll, Row(0), Column(1), Sticky(NS))

	a.ui.status = App.TLabel(Anchor(W), Relief(SUNKEN), Padding("4p"))
	Grid(a.ui.status, Row(2), Column(0), Sticky(WE))

	a.writeDetailText(noSelectionText)
	a.initMenubar()
	a.bindShortcuts()
}

func (a *Controller) updateModeButton(m graph.Mode) {
	if a.ui.mode == nil {
		return
	}
	a.ui.mode.Configure(Txt(modeButtonText(m)))
}

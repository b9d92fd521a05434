package gui

import (
	"fmt"

	"github.com/thiagokokada/branchview/internal/buildinfo"
	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
	"github.com/thiagokokada/branchview/internal/viewport"
	. "modernc.org/tk9.0"
)

func (a *Controller) initMenubar() {
	menubar := Menu(Tearoff(false))

	fileMenu := menubar.Menu(Tearoff(false))
	fileMenu.AddCommand(Lbl("Reload"), Command(a.reload))
	fileMenu.AddSeparator()
	fileMenu.AddCommand(Lbl("Quit"), Command(func() { Destroy(App) }))
	menubar.AddCascade(Lbl("File"), Mnu(fileMenu))

	viewMenu := menubar.Menu(Tearoff(false))
	viewMenu.AddCommand(Lbl("Overview"), Command(func() { a.sess.SetMode(graph.ModeOverview) }))
	viewMenu.AddCommand(Lbl("Detailed"), Command(func() { a.sess.SetMode(graph.ModeDetailed) }))
	viewMenu.AddSeparator()
	depthMenu := viewMenu.Menu(Tearoff(false))
	for _, depth := range source.DepthChoices {
		depthMenu.AddCommand(Lbl(depthLabel(depth)), Command(func() { a.sess.SetDepth(depth) }))
	}
	viewMenu.AddCascade(Lbl("Depth"), Mnu(depthMenu))
	viewMenu.AddSeparator()
	viewMenu.AddCommand(Lbl("Zoom In"), Command(func() { a.zoomStep(viewport.ZoomInStep) }))
	viewMenu.AddCommand(Lbl("Zoom Out"), Command(func() { a.zoomStep(viewport.ZoomOutStep) }))
	viewMenu.AddCommand(Lbl("Reset View"), Command(a.resetView))
	menubar.AddCascade(Lbl("View"), Mnu(viewMenu))

	helpMenu := menubar.Menu(Tearoff(false))
	helpMenu.AddCommand(Lbl("Keyboard Shortcuts"), Command(a.showShortcutsDialog))
	helpMenu.AddCommand(Lbl("About branchview"), Command(a.showAboutDialog))
	menubar.AddCascade(Lbl("Help"), Mnu(helpMenu))

	App.Configure(Mnu(menubar))
}

func depthLabel(depth int) string {
	return fmt.Sprintf("%d commits", depth)
}

func (a *Controller) zoomStep(factor float64) {
	a.sess.ZoomBy(factor, a.canvasCenter())
	a.scheduleRedraw()
}

func (a *Controller) resetView() {
	a.sess.ResetView()
	a.scheduleRedraw()
}

func (a *Controller) showAboutDialog() {
	message := fmt.Sprintf("%s %s", appName, buildinfo.VersionWithTags())
	MessageBox(
		Parent(App),
		Title("About branchview"),
		Icon("info"),
		Msg(message),
		Type("ok"),
	)
}

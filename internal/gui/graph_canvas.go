package gui

import (
	"fmt"
	"math"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/gui/tkutil"
	"github.com/thiagokokada/branchview/internal/session"
	"github.com/thiagokokada/branchview/internal/viewport"

	. "modernc.org/tk9.0"
)

const (
	graphCanvasFont     = "TkDefaultFont"
	graphCanvasFontSize = 9
	graphCanvasMinFont  = 6
	graphEdgeWidth      = 2
	graphLaneWidth      = 2 * (graph.NodeRadius + 6)
	graphNodeOutline    = 2
	graphSelectedWidth  = 4
	graphTickHalf       = 4

	graphLabelPadX = 4
	graphLabelPadY = 2
	graphLabelGap  = 6
)

func (a *Controller) scheduleRedraw() {
	if a.state.canvas.redrawPending {
		return
	}
	a.state.canvas.redrawPending = true
	PostEvent(func() {
		a.state.canvas.redrawPending = false
		a.redrawGraphCanvas()
	}, false)
}

func (a *Controller) redrawGraphCanvas() {
	canvas := a.ui.canvas
	if canvas == nil {
		return
	}
	canvas.Delete("all")
	snap := a.sess.Snapshot()
	pal := a.theme.palette
	if msg := canvasMessage(snap); msg != "" {
		a.drawCanvasMessage(msg, snap.Status == session.StatusError)
		return
	}
	l := snap.Layout
	if l == nil {
		return
	}
	st := snap.Viewport
	font := graphFont(st.Zoom, false)
	bold := graphFont(st.Zoom, true)

	for _, lane := range l.Lanes {
		x1, y := project(st, lane.X1, lane.Y)
		x2, _ := project(st, lane.X2, lane.Y)
		canvas.CreateLine(x1, y, x2, y, Width(scaled(st, graphLaneWidth)), Fill(pal.Lane))
		lx, ly := project(st, graph.LabelX, lane.Y)
		canvas.CreateText(lx, ly, Anchor(W), Txt(lane.Label), Font(bold), Fill(lane.Color))
	}

	if tl := l.Timeline; len(tl.Markers) > 0 {
		x1, y := project(st, tl.X1, tl.Y)
		x2, _ := project(st, tl.X2, tl.Y)
		canvas.CreateLine(x1, y, x2, y, Width(1), Fill(pal.Timeline))
		for _, m := range tl.Markers {
			x, _ := project(st, m.X, tl.Y)
			canvas.CreateLine(x, y-graphTickHalf, x, y+graphTickHalf, Width(1), Fill(pal.Timeline))
			canvas.CreateText(x, y+graphTickHalf+1, Anchor("n"), Txt(m.Label), Font(font), Fill(pal.Timeline))
		}
	}

	for _, e := range l.Edges {
		width := scaled(st, graphEdgeWidth)
		if e.CrossBranch {
			width = max(1, width/2)
		}
		for _, seg := range edgeSegments(e, st) {
			canvas.CreateLine(seg[0], seg[1], seg[2], seg[3], Width(width), Fill(e.Color))
		}
	}

	r := scaled(st, graph.NodeRadius)
	for _, n := range l.Nodes {
		x, y := project(st, n.X, n.Y)
		outline, width := pal.Outline, graphNodeOutline
		switch n.SHA {
		case snap.Selected:
			outline, width = pal.Selected, graphSelectedWidth
		case snap.Hovered:
			outline, width = pal.Hovered, graphSelectedWidth
		}
		canvas.CreateOval(x-r, y-r, x+r, y+r, Fill(n.Color), Outline(outline), Width(width))
		canvas.CreateText(x, y, Txt(n.Commit.Initial()), Font(bold), Fill(pal.NodeText))
	}

	if n, ok := l.Node(snap.Hovered); ok {
		x, y := project(st, n.X, n.Y)
		a.drawTooltip(x+r+graphLabelGap, y-r-graphLabelGap, hoverText(n), font)
	}
	if snap.Status == session.StatusError || snap.Status == session.StatusLoading {
		canvas.CreateText(graphLabelGap, graphLabelGap, Anchor("nw"), Txt(statusText(snap)), Font(font), Fill(pal.Message))
	}
}

func (a *Controller) drawCanvasMessage(msg string, isErr bool) {
	w, h := a.state.canvas.width, a.state.canvas.height
	if w <= 0 || h <= 0 {
		w, h = a.canvasSize()
	}
	color := a.theme.palette.Message
	if isErr {
		color = a.theme.palette.ErrorText
	}
	a.ui.canvas.CreateText(w/2, h/2, Txt(msg), Font(graphFont(1, false)), Fill(color), Justify("center"))
}

// drawTooltip draws text on a filled box, the way ref labels are drawn
// next to commits.
func (a *Controller) drawTooltip(x, y int, text, font string) {
	canvas := a.ui.canvas
	pal := a.theme.palette
	textID := canvas.CreateText(x+graphLabelPadX, y, Anchor(W), Txt(text), Font(font), Fill(pal.LaneText))
	bbox := canvas.Bbox(textID)
	if len(bbox) < 4 {
		return
	}
	rectID := canvas.CreateRectangle(
		tkutil.Atoi(bbox[0])-graphLabelPadX, tkutil.Atoi(bbox[1])-graphLabelPadY,
		tkutil.Atoi(bbox[2])+graphLabelPadX, tkutil.Atoi(bbox[3])+graphLabelPadY,
		Fill(pal.Canvas),
		Outline(pal.Hovered),
		Width(1),
	)
	tkutil.EvalOrEmpty("%s lower %s %s", canvas, rectID, textID)
}

func (a *Controller) bindCanvas() {
	canvas := a.ui.canvas
	Bind(canvas, "<Configure>", Command(a.onCanvasConfigure))
	Bind(canvas, "<ButtonPress-1>", Command(func(e *Event) {
		a.sess.PointerDown(eventPoint(e))
		a.updateDetail()
		a.scheduleRedraw()
	}))
	Bind(canvas, "<B1-Motion>", Command(func(e *Event) {
		if a.sess.PointerMove(eventPoint(e)) {
			a.scheduleRedraw()
		}
	}))
	Bind(canvas, "<ButtonRelease-1>", Command(func() {
		a.sess.PointerUp()
	}))
	Bind(canvas, "<Motion>", Command(func(e *Event) {
		if a.sess.PointerMove(eventPoint(e)) {
			a.scheduleRedraw()
		}
	}))
	Bind(canvas, "<Leave>", Command(func() {
		if a.sess.PointerLeave() {
			a.scheduleRedraw()
		}
	}))
	Bind(canvas, "<Button-4>", Command(func(e *Event) {
		a.sess.Wheel(-1, eventPoint(e))
		a.scheduleRedraw()
	}))
	Bind(canvas, "<Button-5>", Command(func(e *Event) {
		a.sess.Wheel(1, eventPoint(e))
		a.scheduleRedraw()
	}))
	// Windows and macOS report wheel notches as <MouseWheel>; fold them into
	// the X11 buttons handled above.
	tkutil.EvalOrEmpty(`
		bind %[1]s <MouseWheel> {
			if {%%D > 0} {
				event generate %[1]s <Button-4> -x %%x -y %%y
			} else {
				event generate %[1]s <Button-5> -x %%x -y %%y
			}
		}
	`, canvas)
	for _, seq := range []string{"<Button-2>", "<Button-3>"} {
		Bind(canvas, seq, Command(a.showContextMenu))
	}
}

func (a *Controller) onCanvasConfigure() {
	w, h := a.canvasSize()
	if w == a.state.canvas.width && h == a.state.canvas.height {
		return
	}
	a.state.canvas.width, a.state.canvas.height = w, h
	a.sess.SetContainer(viewport.Size{Width: float64(w), Height: float64(h)})
	a.scheduleRedraw()
}

func (a *Controller) canvasSize() (int, int) {
	if a.ui.canvas == nil {
		return 0, 0
	}
	path := a.ui.canvas.String()
	w := tkutil.Atoi(tkutil.EvalOrEmpty("winfo width %s", path))
	h := tkutil.Atoi(tkutil.EvalOrEmpty("winfo height %s", path))
	return w, h
}

func (a *Controller) canvasCenter() viewport.Point {
	return viewport.Point{X: float64(a.state.canvas.width) / 2, Y: float64(a.state.canvas.height) / 2}
}

func eventPoint(e *Event) viewport.Point {
	return viewport.Point{X: float64(e.X), Y: float64(e.Y)}
}

// project maps a layout point to integer canvas coordinates.
func project(st viewport.State, x, y float64) (int, int) {
	return int(math.Round(x*st.Zoom + st.Pan.X)), int(math.Round(y*st.Zoom + st.Pan.Y))
}

func scaled(st viewport.State, v float64) int {
	return max(1, int(math.Round(v*st.Zoom)))
}

// edgeSegments splits an edge polyline into canvas line segments.
func edgeSegments(e graph.Edge, st viewport.State) [][4]int {
	if len(e.Points) < 2 {
		return nil
	}
	out := make([][4]int, 0, len(e.Points)-1)
	for i := 1; i < len(e.Points); i++ {
		x1, y1 := project(st, e.Points[i-1].X, e.Points[i-1].Y)
		x2, y2 := project(st, e.Points[i].X, e.Points[i].Y)
		out = append(out, [4]int{x1, y1, x2, y2})
	}
	return out
}

func graphFont(zoom float64, bold bool) string {
	size := max(graphCanvasMinFont, int(math.Round(graphCanvasFontSize*zoom)))
	if bold {
		return fmt.Sprintf("%s %d bold", graphCanvasFont, size)
	}
	return fmt.Sprintf("%s %d", graphCanvasFont, size)
}

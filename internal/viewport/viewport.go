package viewport

import (
	"math"

	"github.com/thiagokokada/branchview/internal/graph"
)

const (
	MinZoom = 0.5
	MaxZoom = 1.5
	// Margin is how far content may be dragged past the container edge.
	Margin = 20

	ZoomInStep  = 1.1
	ZoomOutStep = 0.9
)

type Point struct {
	X float64
	Y float64
}

type Size struct {
	Width  float64
	Height float64
}

// State is a copy of the controller's pan and zoom.
type State struct {
	Pan     Point
	Zoom    float64
	Panning bool
}

// Controller maps between layout space and screen space:
// screen = layout*zoom + pan. It is synchronous and not safe for concurrent
// use.
type Controller struct {
	container Size
	content   Size
	pan       Point
	zoom      float64

	panning   bool
	panOffset Point
}

func New() *Controller {
	return &Controller{zoom: 1}
}

func (c *Controller) State() State {
	return State{Pan: c.pan, Zoom: c.zoom, Panning: c.panning}
}

func (c *Controller) Zoom() float64 {
	return c.zoom
}

func (c *Controller) Pan() Point {
	return c.pan
}

// SetContainer records the visible area and re-clamps the pan.
func (c *Controller) SetContainer(size Size) {
	c.container = size
	c.pan = c.clamp(c.pan, c.zoom)
}

// SetContent records the layout bounds and re-clamps the pan.
func (c *Controller) SetContent(b graph.Bounds) {
	c.content = Size{Width: b.Width, Height: b.Height}
	c.pan = c.clamp(c.pan, c.zoom)
}

func (c *Controller) BeginPan(p Point) {
	c.panning = true
	c.panOffset = Point{X: p.X - c.pan.X, Y: p.Y - c.pan.Y}
}

// ContinuePan moves the content with the pointer. It reports whether the pan
// changed and does nothing unless a pan is in progress.
func (c *Controller) ContinuePan(p Point) bool {
	if !c.panning {
		return false
	}
	next := c.clamp(Point{X: p.X - c.panOffset.X, Y: p.Y - c.panOffset.Y}, c.zoom)
	if next == c.pan {
		return false
	}
	c.pan = next
	return true
}

func (c *Controller) EndPan() {
	c.panning = false
}

func (c *Controller) Panning() bool {
	return c.panning
}

// ZoomBy scales the zoom by factor around anchor, a screen-space point that
// keeps its layout position when the zoom is not clamped.
func (c *Controller) ZoomBy(factor float64, anchor Point) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	next := clampZoom(c.zoom * factor)
	if next == c.zoom {
		c.pan = c.clamp(c.pan, c.zoom)
		return
	}
	layout := c.ToLayout(anchor)
	pan := Point{
		X: anchor.X - layout.X*next,
		Y: anchor.Y - layout.Y*next,
	}
	c.zoom = next
	c.pan = c.clamp(pan, next)
}

// WheelStep zooms one discrete wheel notch. A positive delta zooms out.
func (c *Controller) WheelStep(delta float64, anchor Point) {
	factor := ZoomInStep
	if delta > 0 {
		factor = ZoomOutStep
	}
	c.ZoomBy(factor, anchor)
}

func (c *Controller) ResetView() {
	c.zoom = 1
	c.panning = false
	c.pan = c.clamp(Point{}, c.zoom)
}

func (c *Controller) ToLayout(p Point) Point {
	return Point{X: (p.X - c.pan.X) / c.zoom, Y: (p.Y - c.pan.Y) / c.zoom}
}

func (c *Controller) ToScreen(p Point) Point {
	return Point{X: p.X*c.zoom + c.pan.X, Y: p.Y*c.zoom + c.pan.Y}
}

// HitTest returns the node nearest to a screen-space point, within the node
// radius scaled by the current zoom.
func (c *Controller) HitTest(l *graph.Layout, screen Point) (graph.Node, bool) {
	if l.Empty() {
		return graph.Node{}, false
	}
	limit := graph.NodeRadius * c.zoom
	best := -1
	bestDist := math.Inf(1)
	for i, n := range l.Nodes {
		s := c.ToScreen(Point{X: n.X, Y: n.Y})
		d := math.Hypot(s.X-screen.X, s.Y-screen.Y)
		if d <= limit && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return graph.Node{}, false
	}
	return l.Nodes[best], true
}

// PanRange returns the allowed pan interval on both axes for the current
// zoom.
func (c *Controller) PanRange() (lo, hi Point) {
	lo = Point{
		X: axisMin(c.container.Width, c.content.Width*c.zoom),
		Y: axisMin(c.container.Height, c.content.Height*c.zoom),
	}
	return lo, Point{X: Margin, Y: Margin}
}

func (c *Controller) clamp(p Point, zoom float64) Point {
	return Point{
		X: clampAxis(p.X, c.container.Width, c.content.Width*zoom),
		Y: clampAxis(p.Y, c.container.Height, c.content.Height*zoom),
	}
}

func axisMin(container, scaled float64) float64 {
	return container - scaled - Margin
}

// clampAxis keeps scaled content reachable: container-scaled-Margin <= pan <=
// Margin. Content smaller than the container is held at Margin.
func clampAxis(v, container, scaled float64) float64 {
	lo := axisMin(container, scaled)
	if lo > Margin {
		return Margin
	}
	return min(max(v, lo), Margin)
}

func clampZoom(z float64) float64 {
	return min(max(z, MinZoom), MaxZoom)
}

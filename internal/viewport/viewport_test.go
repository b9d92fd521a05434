package viewport

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/thiagokokada/branchview/internal/graph"
)

func newController(container Size, content graph.Bounds) *Controller {
	c := New()
	c.SetContainer(container)
	c.SetContent(content)
	return c
}

func assertClamped(t *testing.T, c *Controller) {
	t.Helper()
	if z := c.Zoom(); z < MinZoom || z > MaxZoom {
		t.Fatalf("zoom %f out of range", z)
	}
	lo, hi := c.PanRange()
	p := c.Pan()
	check := func(axis string, v, lo, hi float64) {
		if lo > hi {
			if v != Margin {
				t.Fatalf("%s: small content should hold pan at %d, got %f", axis, Margin, v)
			}
			return
		}
		if v < lo-1e-9 || v > hi+1e-9 {
			t.Fatalf("%s: pan %f outside [%f, %f]", axis, v, lo, hi)
		}
	}
	check("x", p.X, lo.X, hi.X)
	check("y", p.Y, lo.Y, hi.Y)
}

func TestContinuePanClamps(t *testing.T) {
	c := newController(Size{Width: 400, Height: 300}, graph.Bounds{Width: 1000, Height: 800})
	c.BeginPan(Point{X: 100, Y: 100})
	if !c.Panning() {
		t.Fatalf("expected panning state")
	}
	c.ContinuePan(Point{X: -5000, Y: -5000})
	want := Point{X: 400 - 1000 - Margin, Y: 300 - 800 - Margin}
	if c.Pan() != want {
		t.Fatalf("want %v, got %v", want, c.Pan())
	}
	c.ContinuePan(Point{X: 5000, Y: 5000})
	if c.Pan() != (Point{X: Margin, Y: Margin}) {
		t.Fatalf("expected pan at margin, got %v", c.Pan())
	}
	c.EndPan()
	if c.ContinuePan(Point{X: 0, Y: 0}) {
		t.Fatalf("pan should not move after EndPan")
	}
}

func TestBeginPanKeepsGrabOffset(t *testing.T) {
	c := newController(Size{Width: 400, Height: 300}, graph.Bounds{Width: 1000, Height: 800})
	c.ResetView()
	c.BeginPan(Point{X: 200, Y: 150})
	c.ContinuePan(Point{X: 150, Y: 120})
	if c.Pan() != (Point{X: -50, Y: -30}) {
		t.Fatalf("unexpected pan %v", c.Pan())
	}
}

func TestSmallContentHeldAtMargin(t *testing.T) {
	c := newController(Size{Width: 2000, Height: 2000}, graph.Bounds{Width: 300, Height: 200})
	c.BeginPan(Point{})
	c.ContinuePan(Point{X: -300, Y: 500})
	if c.Pan() != (Point{X: Margin, Y: Margin}) {
		t.Fatalf("expected pan held at margin, got %v", c.Pan())
	}
}

func TestZoomClampedAndPanReclamped(t *testing.T) {
	c := newController(Size{Width: 400, Height: 300}, graph.Bounds{Width: 1000, Height: 800})
	for range 50 {
		c.ZoomBy(ZoomInStep, Point{X: 200, Y: 150})
	}
	if c.Zoom() != MaxZoom {
		t.Fatalf("expected zoom %f, got %f", MaxZoom, c.Zoom())
	}
	assertClamped(t, c)
	for range 50 {
		c.WheelStep(1, Point{X: 10, Y: 10})
	}
	if c.Zoom() != MinZoom {
		t.Fatalf("expected zoom %f, got %f", MinZoom, c.Zoom())
	}
	assertClamped(t, c)
	c.ZoomBy(1000, Point{})
	if c.Zoom() != MaxZoom {
		t.Fatalf("large factor should clamp, got %f", c.Zoom())
	}
	c.ZoomBy(-1, Point{})
	if c.Zoom() != MaxZoom {
		t.Fatalf("invalid factor should be ignored, got %f", c.Zoom())
	}
}

func TestZoomKeepsAnchor(t *testing.T) {
	c := newController(Size{Width: 800, Height: 600}, graph.Bounds{Width: 3000, Height: 2000})
	c.BeginPan(Point{})
	c.ContinuePan(Point{X: -500, Y: -300})
	c.EndPan()
	anchor := Point{X: 300, Y: 200}
	before := c.ToLayout(anchor)
	c.WheelStep(-1, anchor)
	after := c.ToLayout(anchor)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Fatalf("anchor moved from %v to %v", before, after)
	}
	if math.Abs(c.Zoom()-ZoomInStep) > 1e-12 {
		t.Fatalf("expected zoom %f, got %f", ZoomInStep, c.Zoom())
	}
}

func TestRandomOperationsStayClamped(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	c := newController(Size{Width: 640, Height: 480}, graph.Bounds{Width: 1500, Height: 500})
	for range 2000 {
		p := Point{X: r.Float64()*4000 - 2000, Y: r.Float64()*4000 - 2000}
		switch r.IntN(6) {
		case 0:
			c.BeginPan(p)
		case 1:
			c.ContinuePan(p)
		case 2:
			c.EndPan()
		case 3:
			c.ZoomBy(r.Float64()*3, p)
		case 4:
			c.WheelStep(r.Float64()-0.5, p)
		case 5:
			c.SetContainer(Size{Width: r.Float64() * 2000, Height: r.Float64() * 2000})
		}
		assertClamped(t, c)
	}
}

func TestResetView(t *testing.T) {
	c := newController(Size{Width: 400, Height: 300}, graph.Bounds{Width: 1000, Height: 800})
	c.ZoomBy(ZoomOutStep, Point{X: 50, Y: 50})
	c.BeginPan(Point{})
	c.ContinuePan(Point{X: -200, Y: -200})
	c.ResetView()
	if c.Zoom() != 1 || c.Pan() != (Point{}) || c.Panning() {
		t.Fatalf("unexpected state after reset: %+v", c.State())
	}

	small := newController(Size{Width: 2000, Height: 2000}, graph.Bounds{Width: 100, Height: 100})
	small.ResetView()
	if small.Pan() != (Point{X: Margin, Y: Margin}) {
		t.Fatalf("reset should clamp origin, got %v", small.Pan())
	}
}

func TestCoordinateMapping(t *testing.T) {
	c := newController(Size{Width: 400, Height: 300}, graph.Bounds{Width: 1000, Height: 800})
	c.ZoomBy(ZoomOutStep, Point{})
	c.BeginPan(Point{})
	c.ContinuePan(Point{X: -120, Y: -40})
	p := Point{X: 250, Y: 130}
	back := c.ToLayout(c.ToScreen(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip %v -> %v", p, back)
	}
}

func TestHitTest(t *testing.T) {
	l := &graph.Layout{Nodes: []graph.Node{
		{SHA: "a", X: 180, Y: 70},
		{SHA: "b", X: 260, Y: 70},
	}}
	c := newController(Size{Width: 2000, Height: 2000}, graph.Bounds{Width: 400, Height: 200})
	c.ResetView()
	screen := c.ToScreen(Point{X: 188, Y: 70})
	n, ok := c.HitTest(l, screen)
	if !ok || n.SHA != "a" {
		t.Fatalf("expected hit on a, got %+v %v", n, ok)
	}
	if _, ok := c.HitTest(l, c.ToScreen(Point{X: 220, Y: 70})); ok {
		t.Fatalf("expected miss between nodes")
	}

	c.ZoomBy(ZoomOutStep, Point{})
	c.ZoomBy(ZoomOutStep, Point{})
	// 11 screen pixels is outside the 12*0.81 hit radius.
	a := c.ToScreen(Point{X: 180, Y: 70})
	if _, ok := c.HitTest(l, Point{X: a.X + 11, Y: a.Y}); ok {
		t.Fatalf("hit radius should scale with zoom")
	}
	if _, ok := c.HitTest(nil, Point{}); ok {
		t.Fatalf("nil layout should never hit")
	}
}

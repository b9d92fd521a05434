package session

import (
	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/viewport"
)

// Pointer handlers take screen-space points relative to the canvas and
// report whether anything visible changed. Pan and zoom never trigger a
// relayout.

// SetContainer records the visible canvas size.
func (s *Session) SetContainer(size viewport.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SetContainer(size)
}

// PointerDown selects the node under p, or clears the selection on empty
// space. Any press closes the context menu and starts a pan.
func (s *Session) PointerDown(p viewport.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = nil
	s.selected = ""
	if n, ok := s.view.HitTest(s.layout, p); ok {
		s.selected = n.SHA
	}
	s.view.BeginPan(p)
	return true
}

// PointerMove pans while a pan is active and tracks the hovered node
// otherwise.
func (s *Session) PointerMove(p viewport.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Panning() {
		return s.view.ContinuePan(p)
	}
	hovered := ""
	if n, ok := s.view.HitTest(s.layout, p); ok {
		hovered = n.SHA
	}
	if hovered == s.hovered {
		return false
	}
	s.hovered = hovered
	return true
}

func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.EndPan()
}

// PointerLeave ends a pan and clears the hover.
func (s *Session) PointerLeave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.EndPan()
	changed := s.hovered != ""
	s.hovered = ""
	return changed
}

// Wheel zooms one notch around anchor.
func (s *Session) Wheel(delta float64, anchor viewport.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.WheelStep(delta, anchor)
}

func (s *Session) ZoomBy(factor float64, anchor viewport.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ZoomBy(factor, anchor)
}

func (s *Session) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ResetView()
}

// Viewport returns the current pan and zoom.
func (s *Session) Viewport() viewport.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.State()
}

// ToScreen maps a layout point to the canvas.
func (s *Session) ToScreen(p graph.Point) viewport.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ToScreen(viewport.Point{X: p.X, Y: p.Y})
}

// Select selects a node of the current layout by SHA.
func (s *Session) Select(sha string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layout.Node(sha); !ok {
		return false
	}
	s.selected = sha
	return true
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.menu = nil
}

// Detail returns the payload for the selected node.
func (s *Session) Detail() (Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.layout.Node(s.selected)
	if !ok {
		return Detail{}, false
	}
	return detailFor(n), true
}

// OpenContextMenu opens a menu for the node under p, anchored at anchor.
// It leaves the selection alone.
func (s *Session) OpenContextMenu(p, anchor viewport.Point) (ContextMenu, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.view.HitTest(s.layout, p)
	if !ok {
		s.menu = nil
		return ContextMenu{}, false
	}
	s.menu = &ContextMenu{SHA: n.SHA, Anchor: anchor, Items: ActionsFor(n.Commit)}
	return *s.menu, true
}

func (s *Session) ContextMenu() (ContextMenu, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.menu == nil {
		return ContextMenu{}, false
	}
	return *s.menu, true
}

func (s *Session) CloseContextMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = nil
}

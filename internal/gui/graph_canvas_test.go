package gui

import (
	"testing"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/viewport"
)

func TestProjectAppliesZoomThenPan(t *testing.T) {
	st := viewport.State{Zoom: 1.5, Pan: viewport.Point{X: -20, Y: 10}}
	x, y := project(st, 100, 40)
	if x != 130 || y != 70 {
		t.Fatalf("project() = (%d, %d), want (130, 70)", x, y)
	}
}

func TestScaledNeverDropsBelowOne(t *testing.T) {
	if got := scaled(viewport.State{Zoom: 0.5}, 1); got != 1 {
		t.Fatalf("scaled() = %d, want 1", got)
	}
	if got := scaled(viewport.State{Zoom: 0.5}, graph.NodeRadius); got != 6 {
		t.Fatalf("scaled(NodeRadius) = %d, want 6", got)
	}
}

func TestEdgeSegments(t *testing.T) {
	st := viewport.State{Zoom: 1}
	stepped := graph.Edge{Points: []graph.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 80}, {X: 80, Y: 80}}}
	got := edgeSegments(stepped, st)
	want := [][4]int{{0, 0, 40, 0}, {40, 0, 40, 80}, {40, 80, 80, 80}}
	if len(got) != len(want) {
		t.Fatalf("edgeSegments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %v, want %v", i, got[i], want[i])
		}
	}
	if segs := edgeSegments(graph.Edge{Points: []graph.Point{{X: 1, Y: 1}}}, st); segs != nil {
		t.Fatalf("expected no segments for a single point, got %v", segs)
	}
}

func TestGraphFont(t *testing.T) {
	if got := graphFont(1, false); got != "TkDefaultFont 9" {
		t.Fatalf("graphFont(1) = %q", got)
	}
	if got := graphFont(0.5, true); got != "TkDefaultFont 6 bold" {
		t.Fatalf("graphFont(0.5, bold) = %q", got)
	}
	if got := graphFont(1.5, false); got != "TkDefaultFont 14" {
		t.Fatalf("graphFont(1.5) = %q", got)
	}
}

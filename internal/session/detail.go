package session

import (
	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/viewport"
)

// Detail is what the detail view shows for the selected commit.
type Detail struct {
	Commit  graph.CommitRecord `json:"commit"`
	Branch  string             `json:"branch"`
	Row     int                `json:"row"`
	Color   string             `json:"color"`
	Kind    graph.Kind         `json:"kind"`
	Initial string             `json:"initial"`
}

func detailFor(n graph.Node) Detail {
	return Detail{
		Commit:  n.Commit,
		Branch:  n.Branch,
		Row:     n.Row,
		Color:   n.Color,
		Kind:    n.Kind,
		Initial: n.Commit.Initial(),
	}
}

// ContextMenu is anchored at Anchor, in the caller's coordinates (the GUI
// passes root window coordinates).
type ContextMenu struct {
	SHA    string
	Anchor viewport.Point
	Items  []Action
}

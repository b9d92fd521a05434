package graph

import (
	"fmt"
	"strings"
)

// Text renders the layout as stable, line-oriented text.
func (l *Layout) Text() string {
	if l == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "mode %s base %s\n", l.Mode, l.Base)
	for i, branch := range l.Rows {
		fmt.Fprintf(&b, "row %d %s\n", i, branch)
	}
	for _, n := range l.Nodes {
		fmt.Fprintf(&b, "node %s row=%d col=%d kind=%s", n.Commit.Short(), n.Row, n.Column, n.Kind)
		if summary := n.Commit.Summary(); summary != "" {
			fmt.Fprintf(&b, " %q", summary)
		}
		b.WriteByte('\n')
	}
	for _, e := range l.Edges {
		from, _ := l.Node(e.From)
		to, _ := l.Node(e.To)
		fmt.Fprintf(&b, "edge %s -> %s", from.Commit.Short(), to.Commit.Short())
		if e.CrossBranch {
			b.WriteString(" cross")
		}
		if e.Stepped {
			b.WriteString(" stepped")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "bounds %gx%g\n", l.Bounds.Width, l.Bounds.Height)
	return b.String()
}

package graph

import (
	"log/slog"
	"slices"
)

// Layout-space geometry, in pixels at zoom 1.
const (
	NodeRadius    = 12
	ColumnSpacing = 80
	RowHeight     = 80
	LeftPadding   = 180
	TopPadding    = 70
	MarginX       = 100
	MarginY       = 40
	TimelineY     = 20
	LabelX        = 10

	laneInset      = 10
	maxLabelLength = 18
)

// Palette holds the branch colours; row r uses Palette[r%len(Palette)].
var Palette = []string{
	"#6e40c9",
	"#2ea44f",
	"#0969da",
	"#cf222e",
	"#bf8700",
	"#e85aad",
	"#1a7f5a",
	"#fa7a18",
}

func ColorForRow(row int) string {
	if row < 0 {
		row = 0
	}
	return Palette[row%len(Palette)]
}

// Spacing returns the horizontal distance between adjacent columns.
func (m Mode) Spacing() float64 {
	if m == ModeOverview {
		return 2 * ColumnSpacing
	}
	return ColumnSpacing
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	SHA    string       `json:"sha"`
	Branch string       `json:"branch"`
	Row    int          `json:"row"`
	Column int          `json:"column"`
	Kind   Kind         `json:"kind"`
	Color  string       `json:"color"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Commit CommitRecord `json:"commit"`
}

// Edge connects a child commit to one of its parents.
type Edge struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	CrossBranch bool    `json:"crossBranch"`
	Stepped     bool    `json:"stepped"`
	Color       string  `json:"color"`
	Points      []Point `json:"points"`
}

type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Marker struct {
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Label  string  `json:"label"`
}

// Timeline is the date axis drawn above the rows. It is empty when no node
// has a known date.
type Timeline struct {
	Y       float64  `json:"y"`
	X1      float64  `json:"x1"`
	X2      float64  `json:"x2"`
	Markers []Marker `json:"markers"`
}

// Lane is the faint background line of a row, spanning its nodes.
type Lane struct {
	Branch string  `json:"branch"`
	Row    int     `json:"row"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
	Y      float64 `json:"y"`
	X1     float64 `json:"x1"`
	X2     float64 `json:"x2"`
}

// Layout is the read-only result of one layout pass.
type Layout struct {
	Mode     Mode     `json:"mode"`
	Base     string   `json:"base"`
	Rows     []string `json:"rows"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Bounds   Bounds   `json:"bounds"`
	Timeline Timeline `json:"timeline"`
	Lanes    []Lane   `json:"lanes"`

	index map[string]int
}

// Options selects what a layout pass shows.
type Options struct {
	Visible []string
	Mode    Mode
	Query   string
}

func (l *Layout) Empty() bool {
	return l == nil || len(l.Nodes) == 0
}

// Node looks a node up by SHA.
func (l *Layout) Node(sha string) (Node, bool) {
	if l == nil {
		return Node{}, false
	}
	idx, ok := l.index[sha]
	if !ok {
		return Node{}, false
	}
	return l.Nodes[idx], true
}

// Row returns the row assigned to branch.
func (l *Layout) Row(branch string) (int, bool) {
	if l == nil {
		return 0, false
	}
	idx := slices.Index(l.Rows, branch)
	return idx, idx >= 0
}

// Build runs the selector and the layout engine over the cached batches. It
// never fails: missing dates sort first and missing parents yield no edges.
func Build(s *Store, opts Options) *Layout {
	base := s.DefaultBranch()
	visible := uniqueBranches(opts.Visible)
	q := normalizeQuery(opts.Query)

	var sel selection
	if opts.Mode == ModeDetailed {
		sel = selectDetailed(s, base, visible, q)
	} else {
		sel = selectOverview(s, base, visible, q)
	}

	l := &Layout{
		Mode:  opts.Mode,
		Base:  base,
		Rows:  assignRows(base, visible),
		index: map[string]int{},
	}
	columns, days := assignColumns(sel.candidates)
	spacing := opts.Mode.Spacing()
	rowOf := make(map[string]int, len(l.Rows))
	for i, b := range l.Rows {
		rowOf[b] = i
	}
	for _, c := range sel.candidates {
		row := rowOf[c.branch]
		col := columns[c.commit.SHA]
		l.index[c.commit.SHA] = len(l.Nodes)
		l.Nodes = append(l.Nodes, Node{
			SHA:    c.commit.SHA,
			Branch: c.branch,
			Row:    row,
			Column: col,
			Kind:   c.kind,
			Color:  ColorForRow(row),
			X:      LeftPadding + float64(col)*spacing,
			Y:      TopPadding + float64(row)*RowHeight,
			Commit: c.commit,
		})
	}

	if opts.Mode == ModeDetailed {
		l.Edges = detailedEdges(l)
	} else {
		l.Edges = overviewEdges(l, sel.branchPoints)
	}
	l.Bounds = bounds(len(days), len(l.Rows), spacing)
	l.Timeline = timeline(l.Nodes, days, spacing)
	l.Lanes = lanes(l)

	slog.Debug("layout built",
		slog.String("mode", opts.Mode.String()),
		slog.String("base", base),
		slog.Int("rows", len(l.Rows)),
		slog.Int("nodes", len(l.Nodes)),
		slog.Int("edges", len(l.Edges)),
	)
	return l
}

// assignRows puts the base branch (when visible) on row 0 and the remaining
// visible branches after it, in order.
func assignRows(base string, visible []string) []string {
	rows := make([]string, 0, len(visible))
	if slices.Contains(visible, base) {
		rows = append(rows, base)
	}
	for _, b := range visible {
		if b != base {
			rows = append(rows, b)
		}
	}
	return rows
}

// assignColumns buckets candidates by calendar day. Every distinct day gets
// the next column in chronological order, unknown dates first.
func assignColumns(cands []candidate) (map[string]int, []dayKey) {
	var days []dayKey
	seen := map[dayKey]struct{}{}
	for _, c := range cands {
		k := dayOf(c.commit.Date)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		days = append(days, k)
	}
	slices.SortStableFunc(days, func(a, b dayKey) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		}
		return 0
	})
	colOf := make(map[dayKey]int, len(days))
	for i, k := range days {
		colOf[k] = i
	}
	columns := make(map[string]int, len(cands))
	for _, c := range cands {
		columns[c.commit.SHA] = colOf[dayOf(c.commit.Date)]
	}
	return columns, days
}

func detailedEdges(l *Layout) []Edge {
	var edges []Edge
	seen := map[[2]string]struct{}{}
	for _, n := range l.Nodes {
		for _, parent := range n.Commit.Parents {
			to, ok := l.Node(parent)
			if !ok || parent == n.SHA {
				continue
			}
			key := [2]string{n.SHA, parent}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, edgeBetween(n, to))
		}
	}
	return edges
}

// overviewEdges links the base head to the oldest anchor on the base row and
// every other head to its own branch point.
func overviewEdges(l *Layout, branchPoints map[string]string) []Edge {
	var edges []Edge
	heads := map[string]Node{}
	var anchor *Node
	for i, n := range l.Nodes {
		switch n.Kind {
		case KindHead:
			heads[n.Branch] = n
		case KindStart, KindBranchPoint:
			if n.Branch != l.Base {
				continue
			}
			if anchor == nil || olderThan(n.Commit, anchor.Commit) {
				anchor = &l.Nodes[i]
			}
		}
	}
	if head, ok := heads[l.Base]; ok && anchor != nil && anchor.SHA != head.SHA {
		edges = append(edges, edgeBetween(head, *anchor))
	}
	for _, branch := range l.Rows {
		if branch == l.Base {
			continue
		}
		head, ok := heads[branch]
		if !ok {
			continue
		}
		bp, ok := l.Node(branchPoints[branch])
		if !ok || bp.SHA == head.SHA {
			continue
		}
		edges = append(edges, edgeBetween(head, bp))
	}
	return edges
}

func olderThan(a, b CommitRecord) bool {
	if a.Date.IsZero() || b.Date.IsZero() {
		return a.Date.IsZero() && !b.Date.IsZero()
	}
	return a.Date.Before(b.Date)
}

func edgeBetween(from, to Node) Edge {
	e := Edge{
		From:        from.SHA,
		To:          to.SHA,
		CrossBranch: from.Row != to.Row,
		Color:       from.Color,
	}
	if from.Row == to.Row {
		e.Points = []Point{{from.X, from.Y}, {to.X, to.Y}}
		return e
	}
	mid := (from.X + to.X) / 2
	e.Stepped = true
	e.Points = []Point{
		{from.X, from.Y},
		{mid, from.Y},
		{mid, to.Y},
		{to.X, to.Y},
	}
	return e
}

func bounds(columns, rows int, spacing float64) Bounds {
	return Bounds{
		Width:  LeftPadding + float64(max(columns, 1))*spacing + MarginX,
		Height: TopPadding + float64(max(rows, 1))*RowHeight + MarginY,
	}
}

func timeline(nodes []Node, days []dayKey, spacing float64) Timeline {
	t := Timeline{Y: TimelineY}
	for col, k := range days {
		if !k.known {
			continue
		}
		t.Markers = append(t.Markers, Marker{
			Column: col,
			X:      LeftPadding + float64(col)*spacing,
			Label:  k.label(),
		})
	}
	if len(t.Markers) == 0 {
		return Timeline{}
	}
	minX, maxX := nodeSpan(nodes)
	t.X1 = minX - laneInset
	t.X2 = maxX + laneInset
	return t
}

func lanes(l *Layout) []Lane {
	var out []Lane
	for row, branch := range l.Rows {
		var rowNodes []Node
		for _, n := range l.Nodes {
			if n.Row == row {
				rowNodes = append(rowNodes, n)
			}
		}
		if len(rowNodes) == 0 {
			continue
		}
		minX, maxX := nodeSpan(rowNodes)
		out = append(out, Lane{
			Branch: branch,
			Row:    row,
			Color:  ColorForRow(row),
			Label:  TruncateLabel(branch),
			Y:      TopPadding + float64(row)*RowHeight,
			X1:     minX - laneInset,
			X2:     maxX,
		})
	}
	return out
}

func nodeSpan(nodes []Node) (float64, float64) {
	minX, maxX := nodes[0].X, nodes[0].X
	for _, n := range nodes[1:] {
		minX = min(minX, n.X)
		maxX = max(maxX, n.X)
	}
	return minX, maxX
}

// TruncateLabel shortens a branch name for the row label.
func TruncateLabel(name string) string {
	r := []rune(name)
	if len(r) <= maxLabelLength {
		return name
	}
	return string(r[:maxLabelLength]) + "..."
}

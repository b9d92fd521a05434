package gui

import (
	"fmt"
	"strings"
	"time"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/session"
)

const (
	appName         = "branchview"
	noSelectionText = "Select a commit to view its details."
	detailDateFmt   = "2006-01-02 15:04:05 -0700"
)

func windowTitle(label string) string {
	if label == "" {
		return appName
	}
	return fmt.Sprintf("%s: %s", appName, label)
}

func statusText(snap session.Snapshot) string {
	switch snap.Status {
	case session.StatusIdle:
		return "Loading branches..."
	case session.StatusLoading:
		if len(snap.Branches) == 0 {
			return "Loading branches..."
		}
		return fmt.Sprintf("Loading commits (depth %d)...", snap.Depth)
	case session.StatusError:
		msg := fmt.Sprintf("Failed to load: %v", snap.Err)
		if snap.Layout != nil {
			msg += " (showing last result)"
		}
		return msg
	case session.StatusEmpty:
		if len(snap.Visibility.Visible()) == 0 {
			return "All selected branches are hidden."
		}
		if snap.Query != "" {
			return fmt.Sprintf("No commits match %q.", snap.Query)
		}
		return "No commits to show."
	}
	if snap.Layout == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %d commits on %d branches, depth %d",
		modeLabel(snap.Mode), len(snap.Layout.Nodes), len(snap.Layout.Rows), snap.Depth)
	if snap.Query != "" {
		msg += fmt.Sprintf(", search %q", snap.Query)
	}
	return msg
}

// canvasMessage is drawn in place of the graph, or "" when the graph shows.
func canvasMessage(snap session.Snapshot) string {
	switch snap.Status {
	case session.StatusError:
		if snap.Layout == nil || snap.Layout.Empty() {
			return fmt.Sprintf("Unable to load commits:\n%v", snap.Err)
		}
	case session.StatusEmpty:
		return statusText(snap)
	case session.StatusIdle, session.StatusLoading:
		if snap.Layout == nil {
			return "Loading..."
		}
	}
	return ""
}

func modeLabel(m graph.Mode) string {
	if m == graph.ModeDetailed {
		return "Detailed"
	}
	return "Overview"
}

func nextMode(m graph.Mode) graph.Mode {
	if m == graph.ModeDetailed {
		return graph.ModeOverview
	}
	return graph.ModeDetailed
}

func modeButtonText(m graph.Mode) string {
	return fmt.Sprintf("Mode: %s", modeLabel(m))
}

func detailText(d session.Detail) string {
	c := d.Commit
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.SHA)
	fmt.Fprintf(&b, "Branch:  %s (%s)\n", d.Branch, d.Kind)
	author := c.AuthorName
	if c.AuthorLogin != "" && c.AuthorLogin != c.AuthorName {
		if author == "" {
			author = "@" + c.AuthorLogin
		} else {
			author = fmt.Sprintf("%s (@%s)", author, c.AuthorLogin)
		}
	}
	if author == "" {
		author = "unknown"
	}
	fmt.Fprintf(&b, "Author:  %s\n", author)
	fmt.Fprintf(&b, "Date:    %s\n", formatDate(c.Date))
	if len(c.Parents) > 0 {
		parents := make([]string, 0, len(c.Parents))
		for _, p := range c.Parents {
			parents = append(parents, graph.CommitRecord{SHA: p}.Short())
		}
		fmt.Fprintf(&b, "Parents: %s\n", strings.Join(parents, " "))
	}
	if c.ExternalURL != "" {
		fmt.Fprintf(&b, "URL:     %s\n", c.ExternalURL)
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(c.Message, "\n"))
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(detailDateFmt)
}

// branchLabel is the branch panel row for name.
func branchLabel(name, base string, vis session.Visibility) string {
	mark := "[ ]"
	if vis.IsSelected(name) {
		mark = "[x]"
	}
	label := fmt.Sprintf("%s %s", mark, name)
	if name == base {
		label += " (base)"
	}
	if vis.IsSelected(name) && vis.IsHidden(name) {
		label += " (hidden)"
	}
	return label
}

// hoverText is the tooltip drawn next to a hovered node.
func hoverText(n graph.Node) string {
	summary := n.Commit.Summary()
	if summary == "" {
		return n.Commit.Short()
	}
	return fmt.Sprintf("%s %s", n.Commit.Short(), summary)
}

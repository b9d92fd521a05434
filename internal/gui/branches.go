package gui

import (
	"slices"

	"github.com/thiagokokada/branchview/internal/session"

	. "modernc.org/tk9.0"
)

func (a *Controller) buildBranchPanel(parent *TFrameWidget) {
	GridRowConfigure(parent.Window, 1, Weight(1))
	GridColumnConfigure(parent.Window, 0, Weight(1))

	Grid(parent.TLabel(Txt("Branches"), Anchor(W)), Row(0), Column(0), Columnspan(2), Sticky(W))

	scroll := parent.TScrollbar()
	a.ui.branchList = parent.Listbox(Exportselection(false), Width(28), Selectmode("browse"))
	a.ui.branchList.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(scroll) }))
	Grid(a.ui.branchList, Row(1), Column(0), Sticky(NEWS))
	Grid(scroll, Row(1), Column(1), Sticky(NS))
	scroll.Configure(Command(func(e *Event) { e.Yview(a.ui.branchList) }))
	Bind(a.ui.branchList, "<Double-Button-1>", Command(func() {
		a.withFocusedBranch(a.sess.ToggleBranch)
	}))

	buttons := parent.TFrame(Padding("0 4p 0 0"))
	Grid(buttons, Row(2), Column(0), Columnspan(2), Sticky(WE))
	Grid(buttons.TButton(Txt("Toggle"), Command(func() {
		a.withFocusedBranch(a.sess.ToggleBranch)
	})), Row(0), Column(0), Padx("2p"))
	Grid(buttons.TButton(Txt("Hide"), Command(func() {
		a.withFocusedBranch(a.sess.HideBranch)
	})), Row(0), Column(1), Padx("2p"))
	Grid(buttons.TButton(Txt("Solo"), Command(func() {
		a.withFocusedBranch(a.sess.SoloBranch)
	})), Row(0), Column(2), Padx("2p"))
}

// withFocusedBranch applies op to the branch selected in the list. The
// session notifies the controller when op changed anything.
func (a *Controller) withFocusedBranch(op func(string) bool) {
	name, ok := a.focusedBranch()
	if !ok {
		return
	}
	op(name)
}

func (a *Controller) focusedBranch() (string, bool) {
	if a.ui.branchList == nil {
		return "", false
	}
	sel := a.ui.branchList.Curselection()
	if len(sel) == 0 {
		return "", false
	}
	idx := sel[0]
	if idx < 0 || idx >= len(a.state.panel.names) {
		return "", false
	}
	return a.state.panel.names[idx], true
}

func (a *Controller) updateBranchPanel(snap session.Snapshot) {
	if a.ui.branchList == nil {
		return
	}
	focused, _ := a.focusedBranch()
	names := branchPanelOrder(snap.Branches, snap.Base)
	a.state.panel.names = names
	a.ui.branchList.Delete(0, END)
	for _, name := range names {
		a.ui.branchList.Insert(END, branchLabel(name, snap.Base, snap.Visibility))
	}
	if idx := slices.Index(names, focused); idx >= 0 {
		a.ui.branchList.SelectionSet(idx)
		a.ui.branchList.See(idx)
	}
}

// branchPanelOrder lists the base branch first and the rest in listing
// order.
func branchPanelOrder(branches []string, base string) []string {
	out := make([]string, 0, len(branches))
	if base != "" && slices.Contains(branches, base) {
		out = append(out, base)
	}
	for _, name := range branches {
		if name == base {
			continue
		}
		out = append(out, name)
	}
	return out
}

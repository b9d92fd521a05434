package session

import (
	"maps"
	"slices"
)

// Visibility is the user's working set of branches. Selected keeps a
// canonical order, which drives row assignment; Hidden is always a subset of
// Selected.
type Visibility struct {
	selected []string
	hidden   map[string]bool
	solo     bool
	// rank is the canonical slot of every branch seen so far: the initial
	// selection first, then the listing order.
	rank map[string]int
}

// NewVisibility selects branches in the given order. listing is the
// repository's branch order; branches toggled on later take their slot in it.
func NewVisibility(selected []string, listing ...string) Visibility {
	v := Visibility{hidden: map[string]bool{}, rank: map[string]int{}}
	for _, b := range selected {
		if b != "" && !slices.Contains(v.selected, b) {
			v.selected = append(v.selected, b)
			v.rankOf(b)
		}
	}
	for _, b := range listing {
		if b != "" {
			v.rankOf(b)
		}
	}
	return v
}

// rankOf returns the canonical slot of branch, assigning the next free one
// to a branch not seen before.
func (v *Visibility) rankOf(branch string) int {
	if v.rank == nil {
		v.rank = map[string]int{}
	}
	r, ok := v.rank[branch]
	if !ok {
		r = len(v.rank)
		v.rank[branch] = r
	}
	return r
}

// Toggle adds branch to the selection or removes it. Removing the last
// selected branch is a no-op. It reports whether anything changed.
func (v *Visibility) Toggle(branch string) bool {
	if branch == "" {
		return false
	}
	idx := slices.Index(v.selected, branch)
	if idx < 0 {
		r := v.rankOf(branch)
		at := slices.IndexFunc(v.selected, func(b string) bool { return v.rankOf(b) > r })
		if at < 0 {
			at = len(v.selected)
		}
		v.selected = slices.Insert(v.selected, at, branch)
		return true
	}
	if len(v.selected) == 1 {
		return false
	}
	v.selected = slices.Delete(v.selected, idx, idx+1)
	delete(v.hidden, branch)
	return true
}

// Hide flips the hidden flag of a selected branch.
func (v *Visibility) Hide(branch string) bool {
	if !slices.Contains(v.selected, branch) {
		return false
	}
	if v.hidden == nil {
		v.hidden = map[string]bool{}
	}
	if v.hidden[branch] {
		delete(v.hidden, branch)
	} else {
		v.hidden[branch] = true
	}
	return true
}

// Solo hides every other selected branch. While soloing, any Solo call
// restores all branches.
func (v *Visibility) Solo(branch string) bool {
	if v.solo {
		clear(v.hidden)
		v.solo = false
		return true
	}
	if !slices.Contains(v.selected, branch) {
		return false
	}
	if v.hidden == nil {
		v.hidden = map[string]bool{}
	}
	clear(v.hidden)
	for _, b := range v.selected {
		if b != branch {
			v.hidden[b] = true
		}
	}
	v.solo = true
	return true
}

func (v Visibility) Selected() []string {
	return slices.Clone(v.selected)
}

func (v Visibility) IsSelected(branch string) bool {
	return slices.Contains(v.selected, branch)
}

func (v Visibility) IsHidden(branch string) bool {
	return v.hidden[branch]
}

func (v Visibility) Soloing() bool {
	return v.solo
}

// Visible returns the selected branches that are not hidden, in selection
// order.
func (v Visibility) Visible() []string {
	var out []string
	for _, b := range v.selected {
		if !v.hidden[b] {
			out = append(out, b)
		}
	}
	return out
}

func (v Visibility) Clone() Visibility {
	out := Visibility{
		selected: slices.Clone(v.selected),
		hidden:   make(map[string]bool, len(v.hidden)),
		solo:     v.solo,
		rank:     maps.Clone(v.rank),
	}
	for b := range v.hidden {
		out.hidden[b] = true
	}
	return out
}

// initialSelection keeps the requested branches that exist, or else picks
// the base branch plus the first few others in listing order.
func initialSelection(branches []string, base string, requested []string) []string {
	var out []string
	for _, b := range requested {
		if slices.Contains(branches, b) && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	if len(out) > 0 {
		return out
	}
	out = append(out, base)
	for _, b := range branches {
		if len(out) > defaultExtraBranches {
			break
		}
		if b != base {
			out = append(out, b)
		}
	}
	return out
}

const defaultExtraBranches = 3

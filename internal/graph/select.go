package graph

import (
	"slices"
)

// candidate is a commit chosen for the layout, before placement.
type candidate struct {
	commit CommitRecord
	branch string
	kind   Kind
}

// selection is the output of the selector: deduplicated candidates in
// ascending date order plus, in Overview mode, the branch point found for
// each non-base branch.
type selection struct {
	candidates   []candidate
	branchPoints map[string]string
}

func visibleSet(visible []string) map[string]struct{} {
	set := make(map[string]struct{}, len(visible))
	for _, b := range visible {
		set[b] = struct{}{}
	}
	return set
}

// uniqueBranches drops repeated names, keeping first occurrence.
func uniqueBranches(visible []string) []string {
	seen := make(map[string]struct{}, len(visible))
	out := make([]string, 0, len(visible))
	for _, b := range visible {
		if _, ok := seen[b]; ok || b == "" {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

func selectDetailed(s *Store, base string, visible []string, q string) selection {
	baseSet := s.shaSet(base)
	var out []candidate
	if _, ok := visibleSet(visible)[base]; ok {
		for _, c := range filterCommits(s.Commits(base), q) {
			out = append(out, candidate{commit: c, branch: base, kind: KindFull})
		}
	}
	for _, branch := range visible {
		if branch == base {
			continue
		}
		for _, c := range filterCommits(s.Commits(branch), q) {
			if _, onBase := baseSet[c.SHA]; onBase {
				continue
			}
			out = append(out, candidate{commit: c, branch: branch, kind: KindFull})
		}
	}
	return selection{candidates: sortByDate(dedupe(out))}
}

func selectOverview(s *Store, base string, visible []string, q string) selection {
	baseSet := s.shaSet(base)
	_, baseVisible := visibleSet(visible)[base]
	sel := selection{branchPoints: map[string]string{}}
	var out []candidate
	if baseVisible {
		commits := filterCommits(s.Commits(base), q)
		if len(commits) > 0 {
			out = append(out, candidate{commit: commits[0], branch: base, kind: KindHead})
			if len(commits) > 1 {
				out = append(out, candidate{commit: commits[len(commits)-1], branch: base, kind: KindStart})
			}
		}
	}
	for _, branch := range visible {
		if branch == base {
			continue
		}
		commits := filterCommits(s.Commits(branch), q)
		idx := slices.IndexFunc(commits, func(c CommitRecord) bool {
			_, onBase := baseSet[c.SHA]
			return !onBase
		})
		if idx < 0 {
			continue
		}
		out = append(out, candidate{commit: commits[idx], branch: branch, kind: KindHead})
		if !baseVisible {
			continue
		}
		bp, ok := findBranchPoint(commits, baseSet)
		if !ok {
			if mb, recorded := s.MergeBase(branch); recorded && mb.matches(q) {
				bp, ok = mb, true
			}
		}
		if ok {
			out = append(out, candidate{commit: bp, branch: base, kind: KindBranchPoint})
			sel.branchPoints[branch] = bp.SHA
		}
	}
	sel.candidates = sortByDate(dedupe(out))
	return sel
}

// findBranchPoint returns the newest commit of a branch that is also on the
// base branch. It only finds one when the fetch depth reached it.
func findBranchPoint(commits []CommitRecord, baseSet map[string]struct{}) (CommitRecord, bool) {
	for _, c := range commits {
		if _, ok := baseSet[c.SHA]; ok {
			return c, true
		}
	}
	return CommitRecord{}, false
}

func dedupe(cands []candidate) []candidate {
	seen := make(map[string]struct{}, len(cands))
	out := cands[:0:0]
	for _, c := range cands {
		if _, ok := seen[c.commit.SHA]; ok {
			continue
		}
		seen[c.commit.SHA] = struct{}{}
		out = append(out, c)
	}
	return out
}

// sortByDate orders candidates by commit time, unknown dates first. Ties keep
// encounter order.
func sortByDate(cands []candidate) []candidate {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		ad, bd := a.commit.Date, b.commit.Date
		switch {
		case ad.IsZero() && bd.IsZero():
			return 0
		case ad.IsZero():
			return -1
		case bd.IsZero():
			return 1
		}
		return ad.Compare(bd)
	})
	return cands
}

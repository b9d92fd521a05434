package graph

import (
	"maps"
	"slices"
)

// DefaultBaseBranch is used when the data source reports no default branch.
const DefaultBaseBranch = "main"

// Store caches the most recent fetch for one repository: the branch list, the
// default branch and one commit batch per fetched branch. It is not safe for
// concurrent use; a session mutates it from a single goroutine.
type Store struct {
	branches      []string
	defaultBranch string
	commits       map[string][]CommitRecord
	mergeBases    map[string]CommitRecord
}

func NewStore() *Store {
	return &Store{
		commits:    map[string][]CommitRecord{},
		mergeBases: map[string]CommitRecord{},
	}
}

func (s *Store) SetBranches(names []string) {
	s.branches = slices.Clone(names)
}

func (s *Store) Branches() []string {
	return slices.Clone(s.branches)
}

func (s *Store) SetDefaultBranch(name string) {
	s.defaultBranch = name
}

// DefaultBranch returns the base branch, falling back to DefaultBaseBranch.
func (s *Store) DefaultBranch() string {
	if s.defaultBranch == "" {
		return DefaultBaseBranch
	}
	return s.defaultBranch
}

// SetCommits replaces every cached batch. Recorded merge bases belong to the
// previous batches and are dropped.
func (s *Store) SetCommits(byBranch map[string][]CommitRecord) {
	s.commits = make(map[string][]CommitRecord, len(byBranch))
	for name, commits := range byBranch {
		s.commits[name] = slices.Clone(commits)
	}
	clear(s.mergeBases)
}

func (s *Store) Commits(branch string) []CommitRecord {
	return s.commits[branch]
}

// Fetched lists the branches that have a cached batch, sorted by name.
func (s *Store) Fetched() []string {
	return slices.Sorted(maps.Keys(s.commits))
}

// Entries returns the cached batches for names, in the given order. Branches
// without a batch yield an entry with no commits.
func (s *Store) Entries(names []string) []BranchEntry {
	base := s.DefaultBranch()
	out := make([]BranchEntry, 0, len(names))
	for _, name := range names {
		out = append(out, BranchEntry{
			Name:      name,
			IsDefault: name == base,
			Commits:   s.commits[name],
		})
	}
	return out
}

// Lookup finds a commit in any cached batch.
func (s *Store) Lookup(sha string) (CommitRecord, bool) {
	for _, name := range s.Fetched() {
		for _, c := range s.commits[name] {
			if c.SHA == sha {
				return c, true
			}
		}
	}
	for _, c := range s.mergeBases {
		if c.SHA == sha {
			return c, true
		}
	}
	return CommitRecord{}, false
}

// SetMergeBase records a merge base obtained outside the fetched batches.
func (s *Store) SetMergeBase(branch string, commit CommitRecord) {
	s.mergeBases[branch] = commit
}

func (s *Store) MergeBase(branch string) (CommitRecord, bool) {
	c, ok := s.mergeBases[branch]
	return c, ok
}

func (s *Store) shaSet(branch string) map[string]struct{} {
	commits := s.commits[branch]
	set := make(map[string]struct{}, len(commits))
	for _, c := range commits {
		set[c.SHA] = struct{}{}
	}
	return set
}

// NeedsMergeBase reports whether branch has commits of its own but shares
// none of its fetched history with the base branch.
func (s *Store) NeedsMergeBase(branch string) bool {
	base := s.DefaultBranch()
	if branch == base {
		return false
	}
	baseSet := s.shaSet(base)
	if len(baseSet) == 0 {
		return false
	}
	unique := false
	for _, c := range s.commits[branch] {
		if _, ok := baseSet[c.SHA]; ok {
			return false
		}
		unique = true
	}
	return unique
}

package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
)

var _ source.Source = (*Source)(nil)

const originHead = "refs/remotes/origin/HEAD"

// Source reads branches and history from a repository on disk.
type Source struct {
	mu   sync.Mutex
	repo *gitlib.Repository
	path string
}

func Open(repoPath string) (*Source, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	// Path is the working tree root even when repoPath is a subdirectory.
	if wt, err := repo.Worktree(); err == nil {
		abs = wt.Filesystem.Root()
	}
	return &Source{repo: repo, path: abs}, nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Branches(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iter, err := s.repo.Branches()
	if err != nil {
		return nil, wrap("branches", "", err)
	}
	defer iter.Close()
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, wrap("branches", "", err)
	}
	slices.Sort(names)
	return names, nil
}

// DefaultBranch prefers the branch origin/HEAD points at when it exists
// locally, then the checked-out branch.
func (s *Source) DefaultBranch(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, err := s.repo.Reference(plumbing.ReferenceName(originHead), false); err == nil && ref.Type() == plumbing.SymbolicReference {
		name := strings.TrimPrefix(ref.Target().Short(), "origin/")
		if _, err := s.repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
			return name, nil
		}
	}
	head, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", wrap("default branch", "", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

func (s *Source) Commits(ctx context.Context, branch string, depth int) ([]graph.CommitRecord, error) {
	depth = source.ClampDepth(depth)
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, err := s.resolve(branch)
	if err != nil {
		return nil, wrap("commits", branch, err)
	}
	iter, err := s.repo.Log(&gitlib.LogOptions{From: hash, Order: gitlib.LogOrderCommitterTime})
	if err != nil {
		return nil, wrap("commits", branch, err)
	}
	defer iter.Close()
	out := make([]graph.CommitRecord, 0, depth)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, toRecord(c))
		if len(out) == depth {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, wrap("commits", branch, err)
	}
	slog.Debug("local commits", slog.String("branch", branch), slog.Int("count", len(out)))
	return out, nil
}

func (s *Source) Compare(ctx context.Context, base, head string) (source.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	baseCommit, err := s.commitFor(base)
	if err != nil {
		return source.Comparison{}, wrap("compare", base, err)
	}
	headCommit, err := s.commitFor(head)
	if err != nil {
		return source.Comparison{}, wrap("compare", head, err)
	}
	bases, err := headCommit.MergeBase(baseCommit)
	if err != nil {
		return source.Comparison{}, wrap("compare", head, err)
	}
	baseSet, err := s.ancestors(ctx, baseCommit.Hash)
	if err != nil {
		return source.Comparison{}, wrap("compare", base, err)
	}
	headSet, err := s.ancestors(ctx, headCommit.Hash)
	if err != nil {
		return source.Comparison{}, wrap("compare", head, err)
	}
	out := source.Comparison{
		AheadBy:  countMissing(headSet, baseSet),
		BehindBy: countMissing(baseSet, headSet),
	}
	out.Status = status(out.AheadBy, out.BehindBy)
	if len(bases) > 0 {
		rec := toRecord(bases[0])
		out.MergeBase = &rec
	}
	return out, nil
}

func (s *Source) resolve(branch string) (plumbing.Hash, error) {
	ref, err := s.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}

func (s *Source) commitFor(branch string) (*object.Commit, error) {
	hash, err := s.resolve(branch)
	if err != nil {
		return nil, err
	}
	return s.repo.CommitObject(hash)
}

func (s *Source) ancestors(ctx context.Context, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := s.repo.Log(&gitlib.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	set := map[plumbing.Hash]struct{}{}
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set[c.Hash] = struct{}{}
		return nil
	})
	return set, err
}

func countMissing(from, other map[plumbing.Hash]struct{}) int {
	n := 0
	for h := range from {
		if _, ok := other[h]; !ok {
			n++
		}
	}
	return n
}

func status(ahead, behind int) string {
	switch {
	case ahead == 0 && behind == 0:
		return "identical"
	case behind == 0:
		return "ahead"
	case ahead == 0:
		return "behind"
	default:
		return "diverged"
	}
}

func toRecord(c *object.Commit) graph.CommitRecord {
	rec := graph.CommitRecord{
		SHA:        c.Hash.String(),
		Message:    strings.TrimRight(c.Message, "\n"),
		AuthorName: c.Author.Name,
		Date:       c.Author.When,
	}
	rec.ShortSHA = rec.Short()
	for _, p := range c.ParentHashes {
		rec.Parents = append(rec.Parents, p.String())
	}
	return rec
}

func wrap(op, branch string, err error) error {
	kind := source.KindTransport
	if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
		kind = source.KindNotFound
	}
	return source.Wrap(op, branch, kind, err)
}

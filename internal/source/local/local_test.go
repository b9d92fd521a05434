package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/branchview/internal/source"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gitlib.Repository
	wt   *gitlib.Worktree
	day  int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) commit(msg string) plumbing.Hash {
	r.t.Helper()
	r.day++
	when := time.Date(2024, 3, r.day, 12, 0, 0, 0, time.UTC)
	sig := &object.Signature{Name: "Alice", Email: "alice@example.com", When: when}
	h, err := r.wt.Commit(msg, &gitlib.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("commit %q: %v", msg, err)
	}
	return h
}

func (r *testRepo) checkout(branch string, create bool) {
	r.t.Helper()
	err := r.wt.Checkout(&gitlib.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		r.t.Fatalf("checkout %s: %v", branch, err)
	}
}

// scenario builds master c1-c2-c3 with feature branching at c1 and adding f1-f2.
func scenario(t *testing.T) (*testRepo, map[string]plumbing.Hash) {
	r := newTestRepo(t)
	h := map[string]plumbing.Hash{}
	h["c1"] = r.commit("c1")
	r.checkout("feature", true)
	h["f1"] = r.commit("f1")
	h["f2"] = r.commit("f2")
	r.checkout("master", false)
	h["c2"] = r.commit("c2")
	h["c3"] = r.commit("c3")
	return r, h
}

func TestOpenDetectsParentRepository(t *testing.T) {
	r := newTestRepo(t)
	r.commit("init")
	sub := filepath.Join(r.dir, "nested", "dir")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	s, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%s): %v", sub, err)
	}
	got, _ := filepath.EvalSymlinks(s.Path())
	want, _ := filepath.EvalSymlinks(r.dir)
	if got != want {
		t.Fatalf("Path() = %q, want the working tree root %q", got, want)
	}
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatalf("expected error opening a non-repository")
	}
}

func TestBranchesAndDefault(t *testing.T) {
	r, _ := scenario(t)
	s, err := Open(r.dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	branches, err := s.Branches(ctx)
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if want := []string{"feature", "master"}; !reflect.DeepEqual(branches, want) {
		t.Fatalf("branches = %v, want %v", branches, want)
	}
	def, err := s.DefaultBranch(ctx)
	if err != nil || def != "master" {
		t.Fatalf("DefaultBranch = %q, %v", def, err)
	}
}

func TestDefaultBranchPrefersOriginHead(t *testing.T) {
	r, _ := scenario(t)
	ref := plumbing.NewSymbolicReference(originHead, "refs/remotes/origin/feature")
	if err := r.repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("SetReference: %v", err)
	}
	s, err := Open(r.dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	def, err := s.DefaultBranch(context.Background())
	if err != nil || def != "feature" {
		t.Fatalf("DefaultBranch = %q, %v", def, err)
	}
}

func TestCommitsNewestFirstWithDepth(t *testing.T) {
	r, h := scenario(t)
	s, err := Open(r.dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := s.Commits(context.Background(), "master", 2)
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(got))
	}
	if got[0].SHA != h["c3"].String() || got[1].SHA != h["c2"].String() {
		t.Fatalf("unexpected order %s %s", got[0].Short(), got[1].Short())
	}
	c := got[0]
	if c.Message != "c3" || c.AuthorName != "Alice" || c.ShortSHA != h["c3"].String()[:7] {
		t.Fatalf("unexpected record %+v", c)
	}
	if !reflect.DeepEqual(c.Parents, []string{h["c2"].String()}) {
		t.Fatalf("unexpected parents %v", c.Parents)
	}
	if !c.Date.Equal(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", c.Date)
	}
}

func TestCommitsUnknownBranch(t *testing.T) {
	r, _ := scenario(t)
	s, err := Open(r.dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = s.Commits(context.Background(), "missing", 10)
	var fe *source.FetchError
	if !errors.As(err, &fe) || fe.Kind != source.KindNotFound || fe.Branch != "missing" {
		t.Fatalf("expected not found FetchError, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	r, h := scenario(t)
	s, err := Open(r.dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := s.Compare(context.Background(), "master", "feature")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if got.MergeBase == nil || got.MergeBase.SHA != h["c1"].String() {
		t.Fatalf("unexpected merge base %+v", got.MergeBase)
	}
	if got.AheadBy != 2 || got.BehindBy != 2 || got.Status != "diverged" {
		t.Fatalf("unexpected comparison %+v", got)
	}
}

func TestShouldIgnoreWatchPath(t *testing.T) {
	tests := map[string]bool{
		"/repo/.git/index.lock":        true,
		"/repo/.git/refs/heads/x.LOCK": true,
		"/repo/.git/fsmonitor.ipc":     true,
		"/repo/.git/HEAD":              false,
		"/repo/.git/refs/heads/main":   false,
	}
	for name, want := range tests {
		if got := shouldIgnoreWatchPath(name); got != want {
			t.Fatalf("shouldIgnoreWatchPath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWatchPathsIncludesRefDirectories(t *testing.T) {
	r, _ := scenario(t)
	if err := os.MkdirAll(filepath.Join(r.dir, ".git", "refs", "heads", "team"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got := map[string]bool{}
	for p := range watchPaths(r.dir) {
		got[p] = true
	}
	for _, want := range []string{
		filepath.Join(r.dir, ".git"),
		filepath.Join(r.dir, ".git", "refs", "heads"),
		filepath.Join(r.dir, ".git", "refs", "heads", "team"),
	} {
		if !got[want] {
			t.Fatalf("missing watch path %s in %v", want, got)
		}
	}
	plain := t.TempDir()
	for p := range watchPaths(plain) {
		if p != plain {
			t.Fatalf("unexpected path %s for non-repository", p)
		}
	}
}

func TestWatchReportsRefChanges(t *testing.T) {
	r, _ := scenario(t)
	fired := make(chan struct{}, 4)
	w, err := Watch(r.dir, 20*time.Millisecond, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()
	r.commit("c4")
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not report the new commit")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestWatchFollowsNewRefDirectories(t *testing.T) {
	r, h := scenario(t)
	fired := make(chan struct{}, 8)
	w, err := Watch(r.dir, 20*time.Millisecond, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	team := filepath.Join(r.dir, ".git", "refs", "heads", "team")
	if err := os.Mkdir(team, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not report the new ref directory")
	}
	time.Sleep(50 * time.Millisecond)
	for len(fired) > 0 {
		<-fired
	}

	ref := filepath.Join(team, "x")
	if err := os.WriteFile(ref, []byte(h["c1"].String()+"\n"), 0o644); err != nil {
		t.Fatalf("write ref: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not report a ref written under the new directory")
	}
}

func TestWatchCloseDropsPendingReload(t *testing.T) {
	r, _ := scenario(t)
	var reloads atomic.Int32
	w, err := Watch(r.dir, 20*time.Millisecond, func() { reloads.Add(1) })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.schedule()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	w.schedule()
	time.Sleep(80 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Fatalf("reload ran %d times after Close", got)
	}
}

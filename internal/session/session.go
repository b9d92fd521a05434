package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
	"github.com/thiagokokada/branchview/internal/viewport"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Dispatcher runs fn on the goroutine that owns the UI. Fetch results and
// change notifications go through it.
type Dispatcher func(fn func())

// Inline runs fn immediately on the calling goroutine.
func Inline(fn func()) { fn() }

type Options struct {
	Depth             int
	Mode              graph.Mode
	Branches          []string
	Query             string
	Workers           int
	MergeBaseFallback bool
	Actions           Actions

	Dispatch Dispatcher
	// OnChange is dispatched after data arrives or the layout changes.
	OnChange func()
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	ID         string
	Status     Status
	Err        error
	Layout     *graph.Layout
	Branches   []string
	Base       string
	Visibility Visibility
	Mode       graph.Mode
	Depth      int
	Query      string
	Selected   string
	Hovered    string
	Viewport   viewport.State
}

// Session owns one visualization: its commit store, visibility, viewport
// and the fetches feeding them.
type Session struct {
	id       string
	src      source.Source
	opts     Options
	log      *slog.Logger
	dispatch Dispatcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	store    *graph.Store
	vis      Visibility
	loaded   bool
	mode     graph.Mode
	depth    int
	query    string
	status   Status
	err      error
	layout   *graph.Layout
	view     *viewport.Controller
	selected string
	hovered  string
	menu     *ContextMenu

	fetchGen    uint64
	fetchKey    string
	fetchCancel context.CancelFunc
	dataGen     uint64
	dataKey     string
	layoutKey   string
}

func New(src source.Source, opts Options) *Session {
	if opts.Dispatch == nil {
		opts.Dispatch = Inline
	}
	if opts.Workers <= 0 {
		opts.Workers = source.DefaultWorkers
	}
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       id,
		src:      src,
		opts:     opts,
		log:      slog.With(slog.String("session", id)),
		dispatch: opts.Dispatch,
		ctx:      ctx,
		cancel:   cancel,
		store:    graph.NewStore(),
		mode:     opts.Mode,
		depth:    source.ClampDepth(opts.Depth),
		query:    strings.TrimSpace(opts.Query),
		view:     viewport.New(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Load fetches the branch list and the default branch concurrently, picks
// the initial selection and starts the commit fetch. It blocks on network
// access, so UI callers run it off the UI goroutine.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.mu.Unlock()
	s.notify()

	var (
		branches []string
		base     string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		branches, err = s.src.Branches(gctx)
		if err != nil {
			return source.Wrap("branches", "", source.KindTransport, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		base, err = source.DefaultBranch(gctx, s.src)
		return err
	})
	err := g.Wait()
	s.dispatch(func() {
		s.applyBranches(branches, base, err)
	})
	return err
}

func (s *Session) applyBranches(branches []string, base string, err error) {
	s.mu.Lock()
	if err != nil {
		s.log.Error("load branches", slog.Any("error", err))
		s.status = StatusError
		s.err = err
		s.mu.Unlock()
		s.notify()
		return
	}
	s.store.SetBranches(branches)
	if resolved := source.ResolveBase(base, branches); resolved != base {
		s.log.Warn("default branch not found, using first branch",
			slog.String("default", base),
			slog.String("base", resolved),
		)
		base = resolved
	}
	s.store.SetDefaultBranch(base)
	selection := initialSelection(branches, s.store.DefaultBranch(), s.opts.Branches)
	s.vis = NewVisibility(selection, branches...)
	s.loaded = true
	s.err = nil
	s.log.Info("branches loaded",
		slog.Int("branches", len(branches)),
		slog.String("base", s.store.DefaultBranch()),
		slog.Any("selected", selection),
	)
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// Refresh refetches the current selection even when nothing changed.
func (s *Session) Refresh() {
	s.mu.Lock()
	if s.loaded {
		s.startFetch(s.currentFetchKey())
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) SetDepth(depth int) {
	s.update(func() bool {
		depth = source.ClampDepth(depth)
		if depth == s.depth {
			return false
		}
		s.depth = depth
		return true
	})
}

func (s *Session) SetMode(mode graph.Mode) {
	s.update(func() bool {
		if mode == s.mode {
			return false
		}
		s.mode = mode
		return true
	})
}

func (s *Session) SetQuery(query string) {
	s.update(func() bool {
		query = strings.TrimSpace(query)
		if query == s.query {
			return false
		}
		s.query = query
		return true
	})
}

func (s *Session) ToggleBranch(branch string) bool {
	return s.update(func() bool { return s.vis.Toggle(branch) })
}

func (s *Session) HideBranch(branch string) bool {
	return s.update(func() bool { return s.vis.Hide(branch) })
}

func (s *Session) SoloBranch(branch string) bool {
	return s.update(func() bool { return s.vis.Solo(branch) })
}

func (s *Session) update(mutate func() bool) bool {
	s.mu.Lock()
	changed := mutate()
	if changed {
		s.recompute()
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// Snapshot copies the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		Status:     s.status,
		Err:        s.err,
		Layout:     s.layout,
		Branches:   s.store.Branches(),
		Base:       s.store.DefaultBranch(),
		Visibility: s.vis.Clone(),
		Mode:       s.mode,
		Depth:      s.depth,
		Query:      s.query,
		Selected:   s.selected,
		Hovered:    s.hovered,
		Viewport:   s.view.State(),
	}
}

// Wait blocks until every fetch started so far has delivered its result.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight fetches and waits for them to stop.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

// recompute refetches when the fetch key changed and relayouts when the
// layout key changed. Callers hold s.mu.
func (s *Session) recompute() {
	if !s.loaded {
		return
	}
	if key := s.currentFetchKey(); key != s.fetchKey {
		s.startFetch(key)
	}
	if s.dataGen == 0 || s.dataKey != s.fetchKey {
		return
	}
	if key := s.currentLayoutKey(); key != s.layoutKey {
		s.relayout(key)
	}
}

func (s *Session) fetchBranches() []string {
	base := s.store.DefaultBranch()
	out := []string{base}
	for _, b := range s.vis.Selected() {
		if b != base {
			out = append(out, b)
		}
	}
	return out
}

func (s *Session) currentFetchKey() string {
	return fmt.Sprintf("%d|%s", s.depth, strings.Join(s.fetchBranches(), "\x00"))
}

func (s *Session) currentLayoutKey() string {
	return fmt.Sprintf("%d|%d|%s|%s", s.dataGen, s.mode, strings.ToLower(s.query), strings.Join(s.vis.Visible(), "\x00"))
}

type fetchResult struct {
	gen        uint64
	key        string
	commits    map[string][]graph.CommitRecord
	mergeBases map[string]graph.CommitRecord
	err        error
}

// startFetch supersedes any in-flight fetch. Callers hold s.mu.
func (s *Session) startFetch(key string) {
	if s.fetchCancel != nil {
		s.fetchCancel()
	}
	s.fetchGen++
	gen := s.fetchGen
	s.fetchKey = key
	ctx, cancel := context.WithCancel(s.ctx)
	s.fetchCancel = cancel
	s.status = StatusLoading

	base := s.store.DefaultBranch()
	branches := s.fetchBranches()
	depth := s.depth
	s.log.Debug("fetch started",
		slog.Uint64("generation", gen),
		slog.Any("branches", branches),
		slog.Int("depth", depth),
	)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		res := fetchResult{gen: gen, key: key}
		res.commits, res.err = source.FetchGraph(ctx, s.src, branches, depth, s.opts.Workers)
		if res.err == nil && s.opts.MergeBaseFallback {
			res.mergeBases = s.resolveMergeBases(ctx, base, res.commits)
		}
		s.dispatch(func() { s.applyFetch(res) })
	}()
}

// resolveMergeBases asks the source for the merge base of every branch whose
// fetched history never reaches the base branch.
func (s *Session) resolveMergeBases(ctx context.Context, base string, commits map[string][]graph.CommitRecord) map[string]graph.CommitRecord {
	tmp := graph.NewStore()
	tmp.SetDefaultBranch(base)
	tmp.SetCommits(commits)
	out := map[string]graph.CommitRecord{}
	for _, branch := range slices.Sorted(maps.Keys(commits)) {
		if !tmp.NeedsMergeBase(branch) {
			continue
		}
		cmp, err := s.src.Compare(ctx, base, branch)
		if err != nil {
			s.log.Warn("merge base lookup failed", slog.String("branch", branch), slog.Any("error", err))
			continue
		}
		if cmp.MergeBase != nil {
			out[branch] = *cmp.MergeBase
		}
	}
	return out
}

func (s *Session) applyFetch(res fetchResult) {
	s.mu.Lock()
	if res.gen != s.fetchGen {
		s.log.Debug("discarding stale fetch", slog.Uint64("generation", res.gen))
		s.mu.Unlock()
		return
	}
	if res.err != nil {
		if s.ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.log.Error("fetch failed", slog.Uint64("generation", res.gen), slog.Any("error", res.err))
		s.status = StatusError
		s.err = res.err
		s.mu.Unlock()
		s.notify()
		return
	}
	s.store.SetCommits(res.commits)
	for branch, c := range res.mergeBases {
		s.store.SetMergeBase(branch, c)
	}
	s.dataGen = res.gen
	s.dataKey = res.key
	s.err = nil
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// relayout runs the layout engine over the cached data. Callers hold s.mu.
func (s *Session) relayout(key string) {
	visible := s.vis.Visible()
	s.layout = graph.Build(s.store, graph.Options{Visible: visible, Mode: s.mode, Query: s.query})
	s.layoutKey = key
	s.view.SetContent(s.layout.Bounds)
	if len(visible) == 0 {
		s.view.ResetView()
	}
	if _, ok := s.layout.Node(s.selected); !ok {
		s.selected = ""
	}
	if _, ok := s.layout.Node(s.hovered); !ok {
		s.hovered = ""
	}
	if s.menu != nil {
		if _, ok := s.layout.Node(s.menu.SHA); !ok {
			s.menu = nil
		}
	}
	if s.layout.Empty() {
		s.status = StatusEmpty
	} else {
		s.status = StatusReady
	}
}

func (s *Session) notify() {
	if s.opts.OnChange != nil {
		s.dispatch(s.opts.OnChange)
	}
}

// Commit looks a fetched commit up by SHA.
func (s *Session) Commit(sha string) (graph.CommitRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Lookup(sha)
}

// RunAction performs a context action on a fetched commit.
func (s *Session) RunAction(action Action, sha string) error {
	c, ok := s.Commit(sha)
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownCommit, sha)
	}
	err := s.opts.Actions.Run(action, c)
	if err != nil && !errors.Is(err, ErrNoExternalURL) {
		s.log.Error("context action", slog.String("action", action.String()), slog.Any("error", err))
	}
	return err
}

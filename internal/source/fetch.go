package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/thiagokokada/branchview/internal/graph"
)

const (
	DefaultDepth   = 100
	MaxDepth       = 500
	DefaultWorkers = 4
)

// DepthChoices are the depths offered by the UI.
var DepthChoices = []int{30, 50, 100, 200}

// ClampDepth bounds a requested depth to (0, MaxDepth], using DefaultDepth
// for non-positive values.
func ClampDepth(depth int) int {
	if depth <= 0 {
		return DefaultDepth
	}
	return min(depth, MaxDepth)
}

// DefaultBranch asks src for the default branch, falling back to
// graph.DefaultBaseBranch when the source reports none.
func DefaultBranch(ctx context.Context, src Source) (string, error) {
	name, err := src.DefaultBranch(ctx)
	if err != nil {
		return "", Wrap("default branch", "", KindTransport, err)
	}
	if name == "" {
		return graph.DefaultBaseBranch, nil
	}
	return name, nil
}

// ResolveBase returns base when the listing contains it (or is empty), and
// otherwise the first listed branch, so a repository without the fallback
// branch still has a base to fetch.
func ResolveBase(base string, branches []string) string {
	if len(branches) == 0 || slices.Contains(branches, base) {
		return base
	}
	return branches[0]
}

// FetchGraph fetches every branch concurrently on a bounded pool. It returns
// only once all branches have returned; on failure the first error comes
// first in the joined result.
func FetchGraph(ctx context.Context, src Source, branches []string, depth, workers int) (map[string][]graph.CommitRecord, error) {
	depth = ClampDepth(depth)
	if workers <= 0 {
		workers = DefaultWorkers
	}
	out := make(map[string][]graph.CommitRecord, len(branches))
	if len(branches) == 0 {
		return out, nil
	}
	pool, err := ants.NewPool(min(workers, len(branches)))
	if err != nil {
		return nil, fmt.Errorf("create fetch pool: %w", err)
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	slog.Debug("fetch graph start",
		slog.Int("branches", len(branches)),
		slog.Int("depth", depth),
		slog.Int("workers", workers),
	)
	for _, branch := range branches {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			commits, err := src.Commits(ctx, branch, depth)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, Wrap("commits", branch, KindTransport, err))
				return
			}
			out[branch] = commits
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit %s: %w", branch, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.Debug("fetch graph done", slog.Int("branches", len(out)))
	return out, nil
}

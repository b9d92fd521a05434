package gitlab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
)

var _ source.Source = (*Source)(nil)

const (
	defaultBaseURL = "https://gitlab.com"
	maxPerPage     = 100
	retryMax       = 2
)

type Options struct {
	BaseURL string
	Token   string
}

// Source reads branches and commits through the GitLab REST API. The
// project is addressed by its full namespace path.
type Source struct {
	client  *gl.Client
	project string
}

func New(repo source.Repository, opts Options) (*Source, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	client, err := gl.NewClient(opts.Token, gl.WithBaseURL(base), gl.WithCustomRetryMax(retryMax))
	if err != nil {
		return nil, fmt.Errorf("gitlab client: %w", err)
	}
	return &Source{client: client, project: repo.Path()}, nil
}

func (s *Source) Branches(ctx context.Context) ([]string, error) {
	opts := &gl.ListBranchesOptions{ListOptions: gl.ListOptions{PerPage: maxPerPage, Page: 1}}
	var names []string
	for {
		branches, resp, err := s.client.Branches.ListBranches(s.project, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, wrap("branches", "", err)
		}
		for _, b := range branches {
			names = append(names, b.Name)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	slog.Debug("gitlab branches", slog.String("project", s.project), slog.Int("count", len(names)))
	return names, nil
}

func (s *Source) DefaultBranch(ctx context.Context) (string, error) {
	project, _, err := s.client.Projects.GetProject(s.project, nil, gl.WithContext(ctx))
	if err != nil {
		return "", wrap("default branch", "", err)
	}
	return project.DefaultBranch, nil
}

func (s *Source) Commits(ctx context.Context, branch string, depth int) ([]graph.CommitRecord, error) {
	depth = source.ClampDepth(depth)
	opts := &gl.ListCommitsOptions{
		RefName:     gl.Ptr(branch),
		ListOptions: gl.ListOptions{PerPage: min(depth, maxPerPage), Page: 1},
	}
	var out []graph.CommitRecord
	for len(out) < depth {
		commits, resp, err := s.client.Commits.ListCommits(s.project, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, wrap("commits", branch, err)
		}
		for _, c := range commits {
			if len(out) == depth {
				break
			}
			out = append(out, toRecord(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// Compare resolves the merge base and counts commits on either side of it.
func (s *Source) Compare(ctx context.Context, base, head string) (source.Comparison, error) {
	mb, _, err := s.client.Repositories.MergeBase(s.project, &gl.MergeBaseOptions{
		Ref: &[]string{base, head},
	}, gl.WithContext(ctx))
	if err != nil {
		return source.Comparison{}, wrap("compare", head, err)
	}
	ahead, err := s.countBetween(ctx, base, head)
	if err != nil {
		return source.Comparison{}, err
	}
	behind, err := s.countBetween(ctx, head, base)
	if err != nil {
		return source.Comparison{}, err
	}
	out := source.Comparison{AheadBy: ahead, BehindBy: behind, Status: comparisonStatus(ahead, behind)}
	if mb != nil && mb.ID != "" {
		rec := toRecord(mb)
		out.MergeBase = &rec
	}
	return out, nil
}

func (s *Source) countBetween(ctx context.Context, from, to string) (int, error) {
	cmp, _, err := s.client.Repositories.Compare(s.project, &gl.CompareOptions{
		From: gl.Ptr(from),
		To:   gl.Ptr(to),
	}, gl.WithContext(ctx))
	if err != nil {
		return 0, wrap("compare", to, err)
	}
	return len(cmp.Commits), nil
}

func comparisonStatus(ahead, behind int) string {
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

func toRecord(c *gl.Commit) graph.CommitRecord {
	rec := graph.CommitRecord{
		SHA:         c.ID,
		ShortSHA:    c.ShortID,
		Message:     c.Message,
		AuthorName:  c.AuthorName,
		Parents:     c.ParentIDs,
		ExternalURL: c.WebURL,
	}
	if rec.Message == "" {
		rec.Message = c.Title
	}
	switch {
	case c.AuthoredDate != nil:
		rec.Date = *c.AuthoredDate
	case c.CommittedDate != nil:
		rec.Date = *c.CommittedDate
	}
	return rec
}

func wrap(op, branch string, err error) error {
	kind := source.KindTransport
	var respErr *gl.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		kind = source.KindForStatus(respErr.Response.StatusCode)
	}
	return source.Wrap(op, branch, kind, err)
}

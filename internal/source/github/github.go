package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/thiagokokada/branchview/internal/graph"
	"github.com/thiagokokada/branchview/internal/source"
)

var _ source.Source = (*Source)(nil)

const (
	defaultBaseURL = "https://github.com"
	maxPerPage     = 100
)

type Options struct {
	// BaseURL selects a GitHub Enterprise instance; empty means github.com.
	BaseURL string
	Token   string
}

// Source reads branches and commits through the GitHub REST API.
type Source struct {
	client *gh.Client
	owner  string
	repo   string
}

func New(repo source.Repository, opts Options) (*Source, error) {
	httpClient := http.DefaultClient
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := gh.NewClient(httpClient)
	base := strings.TrimRight(opts.BaseURL, "/")
	if base != "" && base != defaultBaseURL {
		var err error
		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("github enterprise client: %w", err)
		}
	}
	return &Source{client: client, owner: repo.Owner, repo: repo.Name}, nil
}

func (s *Source) Branches(ctx context.Context) ([]string, error) {
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: maxPerPage}}
	var names []string
	for {
		branches, resp, err := s.client.Repositories.ListBranches(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, wrap("branches", "", err)
		}
		for _, b := range branches {
			names = append(names, b.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	slog.Debug("github branches", slog.String("repo", s.owner+"/"+s.repo), slog.Int("count", len(names)))
	return names, nil
}

func (s *Source) DefaultBranch(ctx context.Context) (string, error) {
	repo, _, err := s.client.Repositories.Get(ctx, s.owner, s.repo)
	if err != nil {
		return "", wrap("default branch", "", err)
	}
	return repo.GetDefaultBranch(), nil
}

func (s *Source) Commits(ctx context.Context, branch string, depth int) ([]graph.CommitRecord, error) {
	depth = source.ClampDepth(depth)
	opts := &gh.CommitsListOptions{
		SHA:         branch,
		ListOptions: gh.ListOptions{PerPage: min(depth, maxPerPage)},
	}
	var out []graph.CommitRecord
	for len(out) < depth {
		commits, resp, err := s.client.Repositories.ListCommits(ctx, s.owner, s.repo, opts)
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

func (s *Source) Compare(ctx context.Context, base, head string) (source.Comparison, error) {
	cmp, _, err := s.client.Repositories.CompareCommits(ctx, s.owner, s.repo, base, head, &gh.ListOptions{})
	if err != nil {
		return source.Comparison{}, wrap("compare", head, err)
	}
	out := source.Comparison{
		AheadBy:  cmp.GetAheadBy(),
		BehindBy: cmp.GetBehindBy(),
		Status:   cmp.GetStatus(),
	}
	if mb := cmp.GetMergeBaseCommit(); mb != nil && mb.GetSHA() != "" {
		rec := toRecord(mb)
		out.MergeBase = &rec
	}
	return out, nil
}

func toRecord(c *gh.RepositoryCommit) graph.CommitRecord {
	author := c.GetCommit().GetAuthor()
	rec := graph.CommitRecord{
		SHA:         c.GetSHA(),
		Message:     c.GetCommit().GetMessage(),
		AuthorName:  author.GetName(),
		AuthorLogin: c.GetAuthor().GetLogin(),
		Date:        author.GetDate().Time,
		ExternalURL: c.GetHTMLURL(),
	}
	for _, p := range c.Parents {
		rec.Parents = append(rec.Parents, p.GetSHA())
	}
	return rec
}

func wrap(op, branch string, err error) error {
	kind := source.KindTransport
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		kind = source.KindForStatus(respErr.Response.StatusCode)
	}
	return source.Wrap(op, branch, kind, err)
}

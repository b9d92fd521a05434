package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidRepository = errors.New("invalid repository reference")

// Repository identifies a hosted repository. Path is the full namespace,
// e.g. "owner/repo" or "group/subgroup/project".
type Repository struct {
	Host  string
	Owner string
	Name  string
}

func (r Repository) Path() string {
	return r.Owner + "/" + r.Name
}

func (r Repository) String() string {
	if r.Host == "" {
		return r.Path()
	}
	return r.Host + "/" + r.Path()
}

// ParseRepository accepts "owner/repo", "https://host/owner/repo(.git)",
// "ssh://git@host/owner/repo.git" and "git@host:owner/repo.git".
func ParseRepository(raw string) (Repository, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Repository{}, fmt.Errorf("%w: empty", ErrInvalidRepository)
	}
	var host, path string
	switch {
	case strings.Contains(s, "://"):
		u, err := url.Parse(s)
		if err != nil {
			return Repository{}, fmt.Errorf("%w: %v", ErrInvalidRepository, err)
		}
		host, path = u.Host, u.Path
	case strings.HasPrefix(s, "git@"):
		rest := strings.TrimPrefix(s, "git@")
		h, p, ok := strings.Cut(rest, ":")
		if !ok {
			return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, raw)
		}
		host, path = h, p
	default:
		path = s
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	idx := strings.LastIndex(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, raw)
	}
	return Repository{Host: host, Owner: path[:idx], Name: path[idx+1:]}, nil
}

package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/thiagokokada/branchview/internal/graph"
)

// Source is a repository host that can list branches and return bounded
// per-branch histories.
type Source interface {
	Branches(ctx context.Context) ([]string, error)
	DefaultBranch(ctx context.Context) (string, error)
	Commits(ctx context.Context, branch string, depth int) ([]graph.CommitRecord, error)
	Compare(ctx context.Context, base, head string) (Comparison, error)
}

// Comparison is the merge-base information for two branches.
type Comparison struct {
	MergeBase *graph.CommitRecord `json:"mergeBase,omitempty"`
	AheadBy   int                 `json:"aheadBy"`
	BehindBy  int                 `json:"behindBy"`
	Status    string              `json:"status,omitempty"`
}

type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindAuth
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not found"
	default:
		return "transport"
	}
}

// FetchError reports a failed retrieval from a data source.
type FetchError struct {
	Op     string
	Branch string
	Kind   ErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	if e.Branch != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Branch, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(code int) ErrorKind {
	switch code {
	case 401, 403:
		return KindAuth
	case 404:
		return KindNotFound
	default:
		return KindTransport
	}
}

// Wrap returns err as a *FetchError unless it already is one.
func Wrap(op, branch string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Branch: branch, Kind: kind, Err: err}
}

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/thiagokokada/branchview/internal/source"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := New(source.Repository{Owner: "octo", Name: "hello"}, Options{Token: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.client.BaseURL, err = url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return s
}

func commitJSON(sha, msg, date string, parents ...string) string {
	ps := ""
	for i, p := range parents {
		if i > 0 {
			ps += ","
		}
		ps += fmt.Sprintf(`{"sha":%q}`, p)
	}
	return fmt.Sprintf(`{"sha":%q,"html_url":"https://github.com/octo/hello/commit/%s",`+
		`"commit":{"message":%q,"author":{"name":"Alice","date":%q}},`+
		`"author":{"login":"alice"},"parents":[%s]}`, sha, sha, msg, date, ps)
}

func TestBranchesPaginates(t *testing.T) {
	var srvURL string
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/hello/branches" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"name":"feature"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/hello/branches?page=2>; rel="next"`, srvURL))
		fmt.Fprint(w, `[{"name":"main"},{"name":"dev"}]`)
	})
	srvURL = s.client.BaseURL.String()
	srvURL = srvURL[:len(srvURL)-1]
	got, err := s.Branches(context.Background())
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if want := []string{"main", "dev", "feature"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestDefaultBranch(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"hello","default_branch":"trunk"}`)
	})
	got, err := s.DefaultBranch(context.Background())
	if err != nil || got != "trunk" {
		t.Fatalf("DefaultBranch = %q, %v", got, err)
	}
}

func TestCommitsHonoursDepth(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/hello/commits" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("sha") != "main" {
			t.Errorf("unexpected sha query %q", r.URL.Query().Get("sha"))
		}
		if pp, _ := strconv.Atoi(r.URL.Query().Get("per_page")); pp != 2 {
			t.Errorf("expected per_page=2, got %d", pp)
		}
		fmt.Fprintf(w, "[%s,%s,%s]",
			commitJSON("c3", "third", "2024-03-04T10:00:00Z", "c2"),
			commitJSON("c2", "second", "2024-03-02T10:00:00Z", "c1"),
			commitJSON("c1", "first", "2024-03-01T10:00:00Z"),
		)
	})
	got, err := s.Commits(context.Background(), "main", 2)
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(got))
	}
	c := got[0]
	if c.SHA != "c3" || c.Message != "third" || c.AuthorName != "Alice" || c.AuthorLogin != "alice" {
		t.Fatalf("unexpected record %+v", c)
	}
	if !c.Date.Equal(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", c.Date)
	}
	if !reflect.DeepEqual(c.Parents, []string{"c2"}) || c.ExternalURL == "" {
		t.Fatalf("unexpected parents/url %+v", c)
	}
}

func TestCompare(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/hello/compare/main...feature" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"status":"diverged","ahead_by":2,"behind_by":1,"merge_base_commit":%s}`,
			commitJSON("c1", "first", "2024-03-01T10:00:00Z"))
	})
	got, err := s.Compare(context.Background(), "main", "feature")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if got.MergeBase == nil || got.MergeBase.SHA != "c1" {
		t.Fatalf("unexpected merge base %+v", got.MergeBase)
	}
	if got.AheadBy != 2 || got.BehindBy != 1 || got.Status != "diverged" {
		t.Fatalf("unexpected comparison %+v", got)
	}
}

func TestErrorsAreClassified(t *testing.T) {
	tests := []struct {
		status int
		want   source.ErrorKind
	}{
		{http.StatusUnauthorized, source.KindAuth},
		{http.StatusNotFound, source.KindNotFound},
		{http.StatusBadGateway, source.KindTransport},
	}
	for _, tc := range tests {
		t.Run(strconv.Itoa(tc.status), func(t *testing.T) {
			s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"message":"nope"}`)
			})
			_, err := s.Commits(context.Background(), "main", 10)
			var fe *source.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.Kind != tc.want || fe.Branch != "main" || fe.Op != "commits" {
				t.Fatalf("unexpected error %+v", fe)
			}
		})
	}
}

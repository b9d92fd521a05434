package graph

import (
	"reflect"
	"testing"
)

func TestStoreDefaultBranchFallback(t *testing.T) {
	s := NewStore()
	if got := s.DefaultBranch(); got != "main" {
		t.Fatalf("expected fallback main, got %q", got)
	}
	s.SetDefaultBranch("trunk")
	if got := s.DefaultBranch(); got != "trunk" {
		t.Fatalf("expected trunk, got %q", got)
	}
}

func TestStoreSetCommitsDropsMergeBases(t *testing.T) {
	s := scenarioStore()
	s.SetMergeBase("feature", CommitRecord{SHA: "mb"})
	if _, ok := s.MergeBase("feature"); !ok {
		t.Fatalf("expected merge base to be recorded")
	}
	s.SetCommits(map[string][]CommitRecord{"main": s.Commits("main")})
	if _, ok := s.MergeBase("feature"); ok {
		t.Fatalf("merge base should be dropped with the old batches")
	}
	if got := s.Fetched(); !reflect.DeepEqual(got, []string{"main"}) {
		t.Fatalf("unexpected fetched branches %v", got)
	}
}

func TestStoreEntries(t *testing.T) {
	s := scenarioStore()
	entries := s.Entries([]string{"feature", "main", "missing"})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].IsDefault || !entries[1].IsDefault {
		t.Fatalf("unexpected default flags %+v", entries)
	}
	if len(entries[1].Commits) != 3 || len(entries[2].Commits) != 0 {
		t.Fatalf("unexpected commit counts %+v", entries)
	}
}

func TestStoreLookup(t *testing.T) {
	s := scenarioStore()
	if c, ok := s.Lookup("f2"); !ok || c.Message != "feature work" {
		t.Fatalf("lookup f2 = %+v, %v", c, ok)
	}
	s.SetMergeBase("feature", CommitRecord{SHA: "mb", Message: "base"})
	if c, ok := s.Lookup("mb"); !ok || c.Message != "base" {
		t.Fatalf("lookup mb = %+v, %v", c, ok)
	}
	if _, ok := s.Lookup("nope"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestStoreNeedsMergeBase(t *testing.T) {
	s := scenarioStore()
	if s.NeedsMergeBase("feature") {
		t.Fatalf("feature shares history with main")
	}
	if s.NeedsMergeBase("main") {
		t.Fatalf("base branch never needs a merge base")
	}
	s.SetCommits(map[string][]CommitRecord{
		"main":    s.Commits("main"),
		"feature": {commit("f9", "deep", day(9, 1), "f8")},
		"empty":   nil,
	})
	if !s.NeedsMergeBase("feature") {
		t.Fatalf("feature history does not reach main")
	}
	if s.NeedsMergeBase("empty") {
		t.Fatalf("a branch without commits has nothing to anchor")
	}
}

func TestCommitRecordHelpers(t *testing.T) {
	c := CommitRecord{
		SHA:        "0123456789abcdef",
		Message:    "  Fix parser\n\nLonger body",
		AuthorName: "bob",
	}
	if got := c.Short(); got != "0123456" {
		t.Fatalf("Short() = %q", got)
	}
	if got := c.Summary(); got != "Fix parser" {
		t.Fatalf("Summary() = %q", got)
	}
	if got := c.Initial(); got != "B" {
		t.Fatalf("Initial() = %q", got)
	}
	c.AuthorLogin = "éric"
	if got := c.Initial(); got != "É" {
		t.Fatalf("Initial() with login = %q", got)
	}
	if got := (CommitRecord{}).Initial(); got != "?" {
		t.Fatalf("Initial() without author = %q", got)
	}
}

func TestCommitRecordMatches(t *testing.T) {
	c := CommitRecord{
		SHA:         "abcdef1234",
		Message:     "Fix the Parser",
		AuthorName:  "Alice Smith",
		AuthorLogin: "asmith",
	}
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"  ", true},
		{"parser", true},
		{"ALICE", true},
		{"smith", true},
		{"ABCDEF", true},
		{"f12", true},
		{"bob", false},
	}
	for _, tc := range tests {
		if got := c.Matches(tc.query); got != tc.want {
			t.Fatalf("Matches(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"", ModeOverview, false},
		{"Overview", ModeOverview, false},
		{" detailed ", ModeDetailed, false},
		{"3d", ModeOverview, true},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseMode(%q) err = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

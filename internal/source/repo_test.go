package source

import (
	"errors"
	"testing"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		raw     string
		want    Repository
		wantErr bool
	}{
		{raw: "octo/hello", want: Repository{Owner: "octo", Name: "hello"}},
		{raw: " https://github.com/octo/hello.git ", want: Repository{Host: "github.com", Owner: "octo", Name: "hello"}},
		{raw: "https://gitlab.example.com/group/sub/project/", want: Repository{Host: "gitlab.example.com", Owner: "group/sub", Name: "project"}},
		{raw: "git@github.com:octo/hello.git", want: Repository{Host: "github.com", Owner: "octo", Name: "hello"}},
		{raw: "ssh://git@github.com/octo/hello.git", want: Repository{Host: "github.com", Owner: "octo", Name: "hello"}},
		{raw: "", wantErr: true},
		{raw: "hello", wantErr: true},
		{raw: "git@github.com", wantErr: true},
		{raw: "octo/", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseRepository(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRepository) {
					t.Fatalf("expected ErrInvalidRepository, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRepository: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRepositoryString(t *testing.T) {
	r := Repository{Host: "github.com", Owner: "octo", Name: "hello"}
	if r.Path() != "octo/hello" || r.String() != "github.com/octo/hello" {
		t.Fatalf("unexpected path %q string %q", r.Path(), r.String())
	}
}

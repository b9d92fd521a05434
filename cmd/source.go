package cmd

import (
	"fmt"

	"github.com/thiagokokada/branchview/internal/config"
	"github.com/thiagokokada/branchview/internal/source"
	"github.com/thiagokokada/branchview/internal/source/github"
	"github.com/thiagokokada/branchview/internal/source/gitlab"
	"github.com/thiagokokada/branchview/internal/source/local"
)

type target struct {
	src   source.Source
	label string
	// watchPath is the working tree of a local repository.
	watchPath string
}

func newSource(cfg *config.Config) (target, error) {
	p := cfg.Provider
	switch p.Type {
	case config.ProviderLocal:
		src, err := local.Open(p.Repository)
		if err != nil {
			return target{}, err
		}
		return target{src: src, label: src.Path(), watchPath: src.Path()}, nil
	case config.ProviderGitHub:
		repo, err := source.ParseRepository(p.Repository)
		if err != nil {
			return target{}, err
		}
		src, err := github.New(repo, github.Options{BaseURL: p.BaseURL, Token: p.Token})
		if err != nil {
			return target{}, err
		}
		return target{src: src, label: repo.String()}, nil
	case config.ProviderGitLab:
		repo, err := source.ParseRepository(p.Repository)
		if err != nil {
			return target{}, err
		}
		src, err := gitlab.New(repo, gitlab.Options{BaseURL: p.BaseURL, Token: p.Token})
		if err != nil {
			return target{}, err
		}
		return target{src: src, label: repo.String()}, nil
	default:
		return target{}, fmt.Errorf("%w: %q", config.ErrUnknownProvider, p.Type)
	}
}

package config

import "errors"

var (
	ErrMissingRepository = errors.New("repository is required")
	ErrUnknownProvider   = errors.New("unknown provider type")
	ErrMissingToken      = errors.New("provider token is required")
	ErrInvalidMode       = errors.New("invalid graph mode")
	ErrInvalidTheme      = errors.New("invalid theme")
)

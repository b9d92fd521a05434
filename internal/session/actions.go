package session

import (
	"errors"
	"fmt"

	"github.com/thiagokokada/branchview/internal/graph"
)

type Action int

const (
	ActionOpenExternal Action = iota
	ActionCopySHA
	ActionCopyMessage
)

func (a Action) String() string {
	switch a {
	case ActionOpenExternal:
		return "open"
	case ActionCopySHA:
		return "copy-sha"
	case ActionCopyMessage:
		return "copy-message"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Label is the menu text for the action.
func (a Action) Label() string {
	switch a {
	case ActionOpenExternal:
		return "Open in browser"
	case ActionCopySHA:
		return "Copy commit SHA"
	case ActionCopyMessage:
		return "Copy commit message"
	default:
		return a.String()
	}
}

var (
	ErrNoExternalURL = errors.New("commit has no external URL")
	ErrUnknownCommit = errors.New("unknown commit")
	ErrNoHandler     = errors.New("no handler for action")
)

type Clipboard interface {
	SetText(text string) error
}

type Opener interface {
	Open(url string) error
}

// Actions runs context actions against a commit. They never touch the
// selection.
type Actions struct {
	Clipboard Clipboard
	Opener    Opener
}

func (a Actions) Run(action Action, c graph.CommitRecord) error {
	switch action {
	case ActionOpenExternal:
		if c.ExternalURL == "" {
			return ErrNoExternalURL
		}
		if a.Opener == nil {
			return fmt.Errorf("%w %s", ErrNoHandler, action)
		}
		return a.Opener.Open(c.ExternalURL)
	case ActionCopySHA, ActionCopyMessage:
		if a.Clipboard == nil {
			return fmt.Errorf("%w %s", ErrNoHandler, action)
		}
		text := c.SHA
		if action == ActionCopyMessage {
			text = c.Message
		}
		return a.Clipboard.SetText(text)
	default:
		return fmt.Errorf("%w %s", ErrNoHandler, action)
	}
}

// ActionsFor lists the actions that apply to c.
func ActionsFor(c graph.CommitRecord) []Action {
	var out []Action
	if c.ExternalURL != "" {
		out = append(out, ActionOpenExternal)
	}
	return append(out, ActionCopySHA, ActionCopyMessage)
}

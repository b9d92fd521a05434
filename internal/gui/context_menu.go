package gui

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/thiagokokada/branchview/internal/gui/tkutil"
	"github.com/thiagokokada/branchview/internal/session"
	"github.com/thiagokokada/branchview/internal/viewport"

	. "modernc.org/tk9.0"
)

func (a *Controller) initContextMenu() {
	a.ui.menu = App.Menu(Tearoff(false))
}

func (a *Controller) showContextMenu(e *Event) {
	if a.ui.menu == nil || e == nil {
		return
	}
	anchor := viewport.Point{X: float64(e.XRoot), Y: float64(e.YRoot)}
	menu, ok := a.sess.OpenContextMenu(eventPoint(e), anchor)
	if !ok {
		return
	}
	tkutil.EvalOrEmpty("%s delete 0 end", a.ui.menu)
	for _, action := range menu.Items {
		sha := menu.SHA
		a.ui.menu.AddCommand(Lbl(action.Label()), Command(func() {
			a.runAction(action, sha)
		}))
	}
	Popup(a.ui.menu.Window, e.XRoot, e.YRoot, nil)
}

func (a *Controller) runAction(action session.Action, sha string) {
	defer a.sess.CloseContextMenu()
	if err := a.sess.RunAction(action, sha); err != nil {
		a.setStatus(fmt.Sprintf("%s failed: %v", action.Label(), err))
		return
	}
	a.setStatus(actionDoneText(action, sha))
}

func actionDoneText(action session.Action, sha string) string {
	switch action {
	case session.ActionCopySHA:
		return fmt.Sprintf("Copied %s to clipboard.", sha)
	case session.ActionCopyMessage:
		return "Copied commit message to clipboard."
	case session.ActionOpenExternal:
		return "Opened commit in browser."
	default:
		return ""
	}
}

type tkClipboard struct{}

func (tkClipboard) SetText(text string) error {
	ClipboardClear()
	ClipboardAppend(text)
	return nil
}

var errNoOpener = errors.New("no URL opener for this platform")

// systemOpener hands URLs to the desktop's default handler.
type systemOpener struct{}

func (systemOpener) Open(url string) error {
	name, args, err := openCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("url opener exited", slog.String("url", url), slog.Any("error", err))
		}
	}()
	return nil
}

func openCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", errNoOpener, goos)
	}
}

package local

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/branchview/internal/debounce"
)

const DefaultWatchDelay = 350 * time.Millisecond

// Watcher reports ref and HEAD changes of a repository on disk. Bursts of
// filesystem events collapse into one onChange call.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	// heads is the refs/heads directory; directories created below it are
	// added to the watch as they appear.
	heads  string
	closed bool
	done   chan struct{}
}

func Watch(root string, delay time.Duration, onChange func()) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for path := range watchPaths(root) {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := fw.Add(path); err != nil {
			err := errors.Join(err, fw.Close())
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w := &Watcher{
		watcher:  fw,
		debounce: debounce.New(delay, onChange),
		heads:    filepath.Join(root, ".git", "refs", "heads"),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.debounce.Stop()
	w.mu.Unlock()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			if ev.Has(fsnotify.Create) {
				w.addRefDirs(ev.Name)
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

// addRefDirs watches name and its subdirectories when name is a new
// directory under refs/heads, such as the first branch of a "team/" prefix.
func (w *Watcher) addRefDirs(name string) {
	if !strings.HasPrefix(name, w.heads+string(filepath.Separator)) {
		return
	}
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return
	}
	_ = filepath.WalkDir(name, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		slog.Debug("adding path to FS watcher", slog.String("path", p))
		if err := w.watcher.Add(p); err != nil {
			slog.Error("watch new ref directory", slog.String("path", p), slog.Any("error", err))
		}
		return nil
	})
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.debounce.Trigger()
}

// watchPaths yields the git directory and every directory under refs/heads,
// since fsnotify does not recurse.
func watchPaths(root string) iter.Seq[string] {
	if root == "" {
		return func(func(string) bool) {}
	}
	unique := map[string]struct{}{}
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		unique[root] = struct{}{}
		return maps.Keys(unique)
	}
	unique[gitDir] = struct{}{}
	heads := filepath.Join(gitDir, "refs", "heads")
	_ = filepath.WalkDir(heads, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			unique[p] = struct{}{}
		}
		return nil
	})
	return maps.Keys(unique)
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}

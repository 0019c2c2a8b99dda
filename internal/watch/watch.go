// Package watch re-runs a callback whenever a task file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce coalesces the burst of events an editor save produces.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultPollInterval is used when Poll is set.
	DefaultPollInterval = 2 * time.Second
)

// Watcher calls OnChange once at start and again after every change to Path.
type Watcher struct {
	Path         string
	Debounce     time.Duration
	Poll         bool          // stat the file instead of using fsnotify
	PollInterval time.Duration // defaults to DefaultPollInterval
	OnChange     func(ctx context.Context) error
}

// Run blocks until ctx is cancelled. Errors returned by OnChange are logged
// and do not stop the loop; a broken file is expected while it is being edited.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Path == "" {
		return fmt.Errorf("watch: path is required")
	}
	if w.OnChange == nil {
		return fmt.Errorf("watch: OnChange is required")
	}
	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", w.Path, err)
	}

	w.fire(ctx)

	if w.Poll {
		return w.runPoll(ctx, abs)
	}
	return w.runFS(ctx, abs)
}

func (w *Watcher) fire(ctx context.Context) {
	if err := w.OnChange(ctx); err != nil {
		slog.Error("refresh failed", "file", w.Path, "error", err)
	}
}

// runFS watches the parent directory so that rename-on-save editors, which
// replace the file's inode, keep producing events.
func (w *Watcher) runFS(ctx context.Context, abs string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("watching for changes", "mode", "fsnotify", "file", abs)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("file event", "op", event.Op.String(), "file", event.Name)
			timer.Reset(debounce)

		case <-timer.C:
			w.fire(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

type fileStamp struct {
	modTime time.Time
	size    int64
	exists  bool
}

func (a fileStamp) same(b fileStamp) bool {
	return a.exists == b.exists && a.size == b.size && a.modTime.Equal(b.modTime)
}

func stat(path string) (fileStamp, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fileStamp{}, nil
	}
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: fi.ModTime(), size: fi.Size(), exists: true}, nil
}

// runPoll compares modification time and size on every tick.
func (w *Watcher) runPoll(ctx context.Context, abs string) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	slog.Info("watching for changes", "mode", "poll", "file", abs, "interval", interval)

	last, err := stat(abs)
	if err != nil {
		return fmt.Errorf("watch: stat %s: %w", abs, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-ticker.C:
			cur, err := stat(abs)
			if err != nil {
				slog.Error("stat failed", "file", abs, "error", err)
				continue
			}
			if cur.same(last) || !cur.exists {
				last = cur
				continue
			}
			last = cur
			w.fire(ctx)
		}
	}
}

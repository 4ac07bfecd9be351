// Package watch re-runs site generation whenever its inputs change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before triggering a run.
const DefaultDebounce = 250 * time.Millisecond

// RunFunc performs one regeneration.
type RunFunc func(ctx context.Context) error

// Config lists what to watch.
type Config struct {
	// Dirs are watched non-recursively; events on any entry trigger a run.
	Dirs []string
	// Files are watched through their parent directory, so editors that
	// replace files by rename are still seen.
	Files []string
	// Refresh, when set, returns more files to watch. It is called at start
	// and after every run, so a path that only appears later (a ref of a
	// newly checked out branch) is picked up.
	Refresh  func() []string
	Debounce time.Duration
}

// Watch calls run whenever a watched path changes, until ctx is cancelled.
// Errors from run are logged and do not stop the watcher.
func Watch(ctx context.Context, cfg Config, logger *slog.Logger, run RunFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	dirs := make(map[string]struct{})
	files := make(map[string]struct{})
	for _, d := range cfg.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", d, err)
		}
		if err := w.Add(abs); err != nil {
			return fmt.Errorf("watch: add %s: %w", abs, err)
		}
		dirs[abs] = struct{}{}
	}
	addFile := func(f string) error {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		if _, ok := files[abs]; ok {
			return nil
		}
		parent := filepath.Dir(abs)
		if _, err := os.Stat(parent); err != nil {
			logger.Debug("watcher: skipping file with missing parent", slog.String("path", abs))
			return nil
		}
		if err := w.Add(parent); err != nil {
			return fmt.Errorf("watch: add %s: %w", parent, err)
		}
		files[abs] = struct{}{}
		return nil
	}
	refresh := func() {
		if cfg.Refresh == nil {
			return
		}
		for _, f := range cfg.Refresh() {
			if err := addFile(f); err != nil {
				logger.Warn("watcher: refresh failed", slog.String("error", err.Error()))
			}
		}
	}

	for _, f := range cfg.Files {
		if err := addFile(f); err != nil {
			return err
		}
	}
	refresh()

	logger.Info("watcher: started",
		slog.Int("dirs", len(dirs)),
		slog.Int("files", len(files)))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if err := run(ctx); err != nil {
				logger.Error("watcher: regeneration failed", slog.String("error", err.Error()))
			}
			refresh()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name, dirs, files) {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether an event path is a watched file or an entry of
// a watched directory.
func relevant(name string, dirs, files map[string]struct{}) bool {
	if _, ok := files[name]; ok {
		return true
	}
	_, ok := dirs[filepath.Dir(name)]
	return ok
}

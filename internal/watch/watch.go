// Package watch reports changes to a single file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of events must settle before it is reported.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches one file. The parent directory is watched so that editors
// which replace files by renaming are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration
}

// New starts watching path. Events are collected from this call onwards.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &Watcher{fs: fsw, path: abs, debounce: debounce}, nil
}

// Run calls onChange after each settled burst of writes to the file until ctx
// ends. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fs.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		}
	}
}

// Package watch re-runs a callback when flow files or the rule config change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"flowscanner/internal/targets"
)

const DefaultDebounce = 300 * time.Millisecond

type Watcher struct {
	Root     string
	Debounce time.Duration

	// Relevant filters event paths. Nil accepts every path.
	Relevant func(path string) bool

	Logger *slog.Logger
}

// Run blocks until ctx is done, calling trigger once per burst of relevant
// changes. Events produced while trigger runs are dropped, so a trigger that
// writes into the tree does not re-arm itself.
func (w *Watcher) Run(ctx context.Context, trigger func(ctx context.Context)) error {
	log := w.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, w.Root); err != nil {
		return fmt.Errorf("watch %s: %w", w.Root, err)
	}
	log.Debug("watching", "root", w.Root, "debounce", debounce)

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
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(fw, ev.Name); err != nil {
						log.Warn("watch new directory failed", "path", ev.Name, "error", err)
					}
				}
			}
			if ev.Has(fsnotify.Chmod) || !w.relevant(ev.Name) {
				continue
			}
			log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			trigger(ctx)
			drain(fw)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	if w.Relevant == nil {
		return true
	}
	return w.Relevant(path)
}

func drain(fw *fsnotify.Watcher) {
	for {
		select {
		case <-fw.Events:
		default:
			return
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && targets.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

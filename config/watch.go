package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a tunables file on change and publishes it to a Store
// A failed reload keeps the previous tunables
type Watcher struct {
	path    string
	store   *Store
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	onApply func(*Tunables)
}

// NewWatcher watches the directory containing path, editors often replace files by rename
func NewWatcher(path string, store *Store, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:   abs,
		store:  store,
		logger: logger.With("component", "config.watcher", "path", abs),
		fsw:    fsw,
	}, nil
}

// OnApply registers a callback invoked after each successful reload
func (w *Watcher) OnApply(fn func(*Tunables)) {
	w.onApply = fn
}

// Run processes file events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.Reload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

// Reload loads the file now and publishes it on success
func (w *Watcher) Reload() bool {
	t, err := Load(w.path)
	if err != nil {
		w.logger.Error("reload failed, keeping previous tunables", "err", err)
		return false
	}
	w.store.Swap(t)
	w.logger.Info("tunables reloaded")
	if w.onApply != nil {
		w.onApply(t)
	}
	return true
}

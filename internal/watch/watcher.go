package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var ErrWatcherClosed = errors.New("watcher closed")

// SourceWatcher watches the session's source folder for PDFs appearing
// or disappearing behind papersort's back. It only reports; it never
// touches session state itself.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)

	mu       sync.Mutex
	dir      string
	isClosed bool
}

// New creates a watcher that invokes onChange with the affected path
// for every PDF change in the watched folder.
func New(onChange func(path string)) (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &SourceWatcher{
		watcher:  watcher,
		onChange: onChange,
	}, nil
}

// Watch points the watcher at dir, replacing any previous folder.
func (w *SourceWatcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isClosed {
		return ErrWatcherClosed
	}
	if w.dir == dir {
		return nil
	}
	if w.dir != "" {
		if err := w.watcher.Remove(w.dir); err != nil {
			slog.Warn("watcher remove", "dir", w.dir, "error", err)
		}
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dir = dir
	slog.Debug("watching source folder", "dir", dir)
	return nil
}

func (w *SourceWatcher) Run(ctx context.Context) error {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			slog.Warn("source watcher", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *SourceWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isClosed {
		return ErrWatcherClosed
	}
	w.isClosed = true
	return w.watcher.Close()
}

func (w *SourceWatcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
		return
	}
	slog.Debug("source folder changed", "op", event.Op.String(), "name", event.Name)
	w.onChange(event.Name)
}

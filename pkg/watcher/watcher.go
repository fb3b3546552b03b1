// Package watcher reloads a document when its file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/dotedit/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeWrite  ChangeType = iota // written, created or renamed into place
	ChangeTypeRemove                   // removed or renamed away
)

func (t ChangeType) String() string {
	if t == ChangeTypeRemove {
		return "remove"
	}
	return "write"
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a single file. The parent directory is watched
// instead of the file itself so that editors which save by renaming a
// temporary file over the original keep being noticed.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the file at path.
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &FileWatcher{
		watcher: w,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string { return fw.path }

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Info("watching document", "path", fw.path)

	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards changes to the watched file and drops the rest of
// the directory's traffic.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}

			var typ ChangeType
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				typ = ChangeTypeWrite
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				typ = ChangeTypeRemove
			default:
				continue // chmod
			}
			logging.Trace("file event", "path", event.Name, "op", event.Op.String())

			select {
			case fw.events <- ChangeEvent{Type: typ, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				fw.watcher.Close()
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}

// Options tunes Watch.
type Options struct {
	QuietPeriod time.Duration
	MaxWait     time.Duration
}

const (
	DefaultQuietPeriod = 200 * time.Millisecond
	DefaultMaxWait     = 2 * time.Second
)

// Watch calls reload with the file's path after every settled change until
// ctx is done. Reload errors are logged and watching continues.
func Watch(ctx context.Context, path string, opts Options, reload func(path string) error) error {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}

	fw, err := NewFileWatcher(path)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	d := NewDebouncer(fw.Events(), opts.QuietPeriod, opts.MaxWait)
	d.Start(ctx)

	for event := range d.Output() {
		plan := PlanReload(event, fw.Path())
		if !plan.Reload {
			logging.Warn("document removed, keeping the loaded graph", "path", plan.Path)
			continue
		}
		if err := reload(plan.Path); err != nil {
			logging.Error("failed to reload document", "path", plan.Path, "error", err)
			continue
		}
		logging.Info("document reloaded", "path", plan.Path, "events", len(plan.ChangedFiles))
	}
	return nil
}

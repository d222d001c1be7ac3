// Package watch reports debounced changes to an organizer directory tree.
// Every directory below the root is watched, including ones created later.
package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period that ends a batch of changes.
const DefaultDebounce = 250 * time.Millisecond

// Batch is a set of paths that changed during one burst of activity.
type Batch struct {
	Files []string // sorted
}

// Watcher monitors a directory tree for source file changes using fsnotify.
type Watcher struct {
	Root    string
	Changes <-chan Batch // Read-only external channel

	changes  chan Batch // Internal write channel
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher for the tree at root. A zero debounce uses
// DefaultDebounce; a nil logger discards watch errors.
func New(root string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ch := make(chan Batch, 4)
	return &Watcher{
		Root:     root,
		Changes:  ch,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Start begins watching every directory under the root.
func (w *Watcher) Start() error {
	if err := w.addTree(w.Root); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]struct{})
	var last time.Time
	ticker := time.NewTicker(max(w.debounce/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.hidden(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch: add directory", "path", event.Name, "error", err)
					}
					pending[event.Name] = struct{}{}
					last = time.Now()
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			last = time.Now()

		case <-ticker.C:
			if len(pending) == 0 || time.Since(last) < w.debounce {
				continue
			}
			b := Batch{Files: make([]string, 0, len(pending))}
			for f := range pending {
				b.Files = append(b.Files, f)
			}
			sort.Strings(b.Files)
			clear(pending)
			select {
			case w.changes <- b:
			case <-w.stop:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// hidden reports whether any path component below the root starts with ".".
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && isHidden(part) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// relevant reports whether an event can change the parsed configuration:
// source files in any event, and removals or renames of anything else, which
// may be directories.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".yml", ".yaml", ".md":
		return true
	case "":
		return event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	default:
		return false
	}
}

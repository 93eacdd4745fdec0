package imagestore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watched wraps Dir with an in-memory name index kept fresh by fsnotify, so
// Resolve on the per-request scan path avoids a disk stat. A miss rechecks
// the disk once, so a dropped event can never hide an existing image.
type Watched struct {
	*Dir
	mu      sync.RWMutex
	names   map[string]struct{}
	watcher *fsnotify.Watcher
}

// NewWatched builds the index with one directory scan and keeps it fresh
// from create/remove/rename events until Close.
func NewWatched(base string) (*Watched, error) {
	dir, err := NewDir(base)
	if err != nil {
		return nil, err
	}
	w := &Watched{Dir: dir, names: map[string]struct{}{}}
	if err := w.Rescan(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create image watcher: %w", err)
	}
	if err := watcher.Add(base); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch image dir %s: %w", base, err)
	}
	w.watcher = watcher
	go w.run()
	return w, nil
}

// Rescan rebuilds the index from the directory contents.
func (w *Watched) Rescan() error {
	entries, err := os.ReadDir(w.Base())
	if err != nil {
		return fmt.Errorf("scan image dir: %w", err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		names[e.Name()] = struct{}{}
	}
	w.mu.Lock()
	w.names = names
	w.mu.Unlock()
	return nil
}

func (w *Watched) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".png") {
				continue
			}
			switch {
			case ev.Op&fsnotify.Create == fsnotify.Create || ev.Op&fsnotify.Write == fsnotify.Write:
				w.mu.Lock()
				w.names[name] = struct{}{}
				w.mu.Unlock()
			case ev.Op&fsnotify.Remove == fsnotify.Remove || ev.Op&fsnotify.Rename == fsnotify.Rename:
				w.mu.Lock()
				delete(w.names, name)
				w.mu.Unlock()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("WARN image watcher: %v", err)
		}
	}
}

// Resolve serves from the index, falling back to one stat on a miss and
// self-healing the index when the file turns out to exist.
func (w *Watched) Resolve(cardID string) (string, bool) {
	name := FileName(cardID)
	w.mu.RLock()
	_, ok := w.names[name]
	w.mu.RUnlock()
	if ok {
		return filepath.Join(w.Base(), name), true
	}
	path, ok := w.Dir.Resolve(cardID)
	if !ok {
		return "", false
	}
	w.mu.Lock()
	w.names[name] = struct{}{}
	w.mu.Unlock()
	return path, true
}

// Count returns how many reference images are indexed.
func (w *Watched) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.names)
}

// Close stops the watcher goroutine.
func (w *Watched) Close() error {
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

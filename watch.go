package stanza

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher rebuilds the site whenever content, layouts, or static assets
// change. Bursts of events (editor save plus rename, git checkout) collapse
// into a single rebuild through a debounce timer. A failed rebuild logs and
// leaves the last good output in place.
type Watcher struct {
	engine   *Engine
	watcher  *fsnotify.Watcher
	onChange func(*Site)
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the site's source directories. onChange receives the
// freshly built site after every successful rebuild; the dev server uses it
// to reindex search and broadcast reloads.
func NewWatcher(e *Engine, onChange func(*Site)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("stanza: create watcher: %w", err)
	}
	w := &Watcher{
		engine:   e,
		watcher:  fsw,
		onChange: onChange,
		debounce: 300 * time.Millisecond,
	}
	for _, dir := range []string{e.Config.ContentDir, e.Config.LayoutsDir, e.Config.StaticDir} {
		if err := w.addRecursive(filepath.Join(e.root, dir)); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Start launches the event loop. Close stops it.
func (w *Watcher) Start() {
	go w.loop()
}

// Close stops watching and cancels any pending rebuild.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(ev.Name) {
				continue
			}
			// New directories need their own watch before events under
			// them arrive.
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(ev.Name); err != nil {
						w.engine.logger.Printf("watch %s: %v", ev.Name, err)
					}
				}
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.engine.logger.Printf("watch error: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rebuild)
}

func (w *Watcher) rebuild() {
	site, err := w.engine.Load()
	if err != nil {
		w.engine.logger.Printf("rebuild failed: %v", err)
		return
	}
	if _, err := w.engine.BuildSite(site); err != nil {
		w.engine.logger.Printf("rebuild failed: %v", err)
		return
	}
	if w.onChange != nil {
		w.onChange(site)
	}
}

// addRecursive registers dir and every directory below it. A missing dir is
// fine; sites without a static dir still watch the rest.
func (w *Watcher) addRecursive(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("stanza: watch %s: %w", path, err)
		}
		return nil
	})
}

// ignored filters out the output tree, the cache dir, hidden files, and
// editor temp droppings so builds never retrigger themselves.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.engine.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, dir := range []string{w.engine.Config.OutputDir, w.engine.Config.CacheDir} {
		prefix := filepath.ToSlash(dir)
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	base := filepath.Base(path)
	if base != "." && strings.HasPrefix(base, ".") {
		return true
	}
	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}

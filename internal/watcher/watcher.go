// Package watcher rebuilds directory-backed profiles when their profile or
// dictionary files change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/logger"
)

// DefaultDebounce groups the bursts of events editors emit for one save.
const DefaultDebounce = 500 * time.Millisecond

// Reloader is implemented by registry.Registry.
type Reloader interface {
	Reload(name string) error
	Watched() map[string][]string
}

// Watcher watches the directories holding profile files and their
// dictionaries; files replaced by rename keep producing events.
type Watcher struct {
	reg      Reloader
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *zap.Logger

	mu    sync.RWMutex
	files map[string][]string // absolute file path -> profiles using it, guarded by mu
	dirs  map[string]struct{}

	// OnReload, when set, is called after every reload attempt.
	OnReload func(profile string, err error)
}

// New creates a watcher for every file reg reports. debounce <= 0 uses
// DefaultDebounce.
func New(reg Reloader, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		reg:      reg,
		debounce: debounce,
		fsw:      fsw,
		log:      logger.Named("watcher"),
		dirs:     make(map[string]struct{}),
	}
	if err := w.refresh(); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// Files returns the watched files, sorted. It is safe to call while Run is
// reloading.
func (w *Watcher) Files() []string {
	w.mu.RLock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	w.mu.RUnlock()
	sort.Strings(files)
	return files
}

// refresh rebuilds the file map from the registry and watches any new
// directory. It is only called from New and the Run goroutine.
func (w *Watcher) refresh() error {
	files := make(map[string][]string)
	for profile, paths := range w.reg.Watched() {
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", p, err)
			}
			files[abs] = append(files[abs], profile)

			dir := filepath.Dir(abs)
			if _, ok := w.dirs[dir]; ok {
				continue
			}
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			w.dirs[dir] = struct{}{}
			w.log.Debug("Watching directory", zap.String("dir", dir))
		}
	}
	for _, profiles := range files {
		sort.Strings(profiles)
	}

	w.mu.Lock()
	w.files = files
	w.mu.Unlock()
	return nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			w.mu.RLock()
			profiles, ok := w.files[abs]
			w.mu.RUnlock()
			if !ok {
				continue
			}
			for _, p := range profiles {
				pending[p] = struct{}{}
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", zap.Error(err))

		case <-timer.C:
			w.reload(pending)
			clear(pending)
			if err := w.refresh(); err != nil {
				w.log.Warn("Failed to refresh watched files", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) reload(pending map[string]struct{}) {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := w.reg.Reload(name)
		if err != nil {
			w.log.Error("Reload failed, keeping previous converter",
				zap.String("profile", name),
				zap.Error(err),
			)
		} else {
			w.log.Debug("Reload done", zap.String("profile", name))
		}
		if w.OnReload != nil {
			w.OnReload(name, err)
		}
	}
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

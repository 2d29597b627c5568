package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// debounce drops repeated events for the same file, editors tend to write
// several times per save.
const debounce = 100 * time.Millisecond

// Watcher reports changed asset files as paths relative to the watched
// directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan string
	closeCh chan struct{}
	once    sync.Once
	done    chan struct{}
	log     *zap.Logger
}

// NewWatcher watches dirs and every directory below them, including
// directories created later.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		events:  make(chan string, 64),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
		log:     logger.Named("assets.watch"),
	}
	for _, dir := range dirs {
		if err := w.addTree(dir, nil); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	go w.run(dirs)
	return w, nil
}

// addTree watches root and its subdirectories. Files found on the way are
// passed to found, if set.
func (w *Watcher) addTree(root string, found func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		if found != nil {
			found(path)
		}
		return nil
	})
}

// Drain returns the paths changed since the last call without blocking.
func (w *Watcher) Drain() []string {
	var changed []string
	for {
		select {
		case p := <-w.events:
			changed = append(changed, p)
		default:
			return changed
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run(dirs []string) {
	defer close(w.done)
	last := make(map[string]time.Time)
	emit := func(name string) {
		now := time.Now()
		if t, ok := last[name]; ok && now.Sub(t) < debounce {
			return
		}
		last[name] = now

		select {
		case w.events <- relative(dirs, name):
		default:
			w.log.Warn("dropping change event", zap.String("file", name))
		}
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					// Files may land in the new directory before it is watched.
					if err := w.addTree(event.Name, emit); err != nil {
						w.log.Warn("watch new dir", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			emit(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-w.closeCh:
			return
		}
	}
}

func relative(dirs []string, name string) string {
	for _, dir := range dirs {
		if rel, err := filepath.Rel(dir, name); err == nil && filepath.IsLocal(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(name)
}

package config

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"

	"github.com/stateforge/iosts-refine/internal/core"
	"github.com/stateforge/iosts-refine/internal/primitives"
)

// Watcher watches a definition file for changes and hands the embedder a
// freshly compiled *core.IOSTS on every write — it never mutates a
// running scheduler's registered IOSTS directly (§4.6): swapping a live
// refinement out from under the scheduler would violate the
// atomic-refinement invariant if a refinement were in progress, so
// reload is handed off to the caller to apply (typically by
// RemoveSystem(old) then AddSystem(new) between ticks).
type Watcher struct {
	path    string
	fw      *fsnotify.Watcher
	reloads chan *core.IOSTS
	errs    chan error
	done    chan struct{}
}

// NewWatcher starts watching path. Call Close to stop.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, primitives.NewError(primitives.BadArgument, "config.NewWatcher", fmt.Errorf("start fsnotify: %w", err))
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, primitives.NewError(primitives.BadArgument, "config.NewWatcher", fmt.Errorf("watch %s: %w", path, err))
	}
	w := &Watcher{
		path:    path,
		fw:      fw,
		reloads: make(chan *core.IOSTS, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			def, err := Load(w.path)
			if err != nil {
				log.Printf("config: reload of %s failed: %v", w.path, err)
				continue
			}
			m, err := Compile(def)
			if err != nil {
				log.Printf("config: recompile of %s failed: %v", w.path, err)
				continue
			}
			select {
			case w.reloads <- m:
			default:
				// drop if the embedder hasn't drained the previous reload yet
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// Reloads returns the channel of freshly compiled IOSTS instances.
func (w *Watcher) Reloads() <-chan *core.IOSTS { return w.reloads }

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

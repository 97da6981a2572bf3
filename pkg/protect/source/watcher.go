package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/aegis/pkg/config"
	"mercator-hq/aegis/pkg/protect"
)

// Event is one rule-file change, carrying either a rebuilt rule set or
// the error that prevented it. On error the previous rule set stays in
// effect; the subscriber decides whether to log or alert.
type Event struct {
	Rules []protect.Rule
	Err   error
}

// Watcher reloads the declarative rule set whenever the configuration
// file changes. The directory rather than the file is watched, so
// editors that replace the file atomically (write to temp, rename)
// still trigger events.
type Watcher struct {
	path    string
	log     protect.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string, log protect.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	return &Watcher{path: path, log: log, watcher: fsw}, nil
}

// Watch delivers an Event per relevant file change until ctx is
// cancelled. The returned channel is closed on cancellation.
func (w *Watcher) Watch(ctx context.Context) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		defer w.watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case fe, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(fe.Name) != filepath.Clean(w.path) {
					continue
				}
				if !fe.Has(fsnotify.Write) && !fe.Has(fsnotify.Create) && !fe.Has(fsnotify.Rename) {
					continue
				}

				w.log.Debug("rule file changed: %s", fe.Op)
				select {
				case events <- w.reload():
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Error("rule file watcher error: %v", err)
			}
		}
	}()

	return events
}

// reload loads the file and rebuilds the rule set.
func (w *Watcher) reload() Event {
	cfg, err := config.Load(w.path)
	if err != nil {
		return Event{Err: err}
	}

	rules, err := BuildRules(cfg.Rules)
	if err != nil {
		return Event{Err: err}
	}

	return Event{Rules: rules}
}

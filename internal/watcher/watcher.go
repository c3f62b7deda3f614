// Package watcher observes the history directory and signals when the
// consolidated CSV set changes, so downstream aggregates can be rebuilt.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/climateops/powerfetch/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of events; an update run rewrites every
// station file back to back.
const debounceWindow = 5 * time.Second

// Watcher reports history-directory changes through a callback.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	log       *logging.Logger
	onChange  func()
	debounce  time.Duration
}

// Option adjusts a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the event batching window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over dir; onChange fires once per settled burst of
// CSV create/write/rename/remove events.
func New(dir string, log *logging.Logger, onChange func(), opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		dir:       dir,
		log:       log,
		onChange:  onChange,
		debounce:  debounceWindow,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	return w, nil
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event) {
				continue
			}
			w.log.Debug("watcher", "history changed",
				logging.F("file", filepath.Base(event.Name)),
				logging.F("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher", "watch error", logging.F("error", err))
		}
	}
}

func isRelevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(strings.ToLower(event.Name), ".csv") {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}

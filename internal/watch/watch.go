// Package watch reloads the rule table when its file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gotiers/internal/logging"
)

// Reloader rebuilds the served snapshot from the table.
type Reloader func(ctx context.Context) error

// DefaultDebounce is used when a non-positive debounce is given.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches the directory holding a table file. Editors and the TSV
// store replace the file via rename, so the file itself cannot be watched.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   Reloader
	fsw      *fsnotify.Watcher
	log      zerolog.Logger
}

// New starts watching the directory of path. Events only begin to trigger
// reloads once Run is called.
func New(path string, debounce time.Duration, reload Reloader) (*Watcher, error) {
	if reload == nil {
		return nil, errors.New("watch: nil reloader")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     filepath.Clean(abs),
		debounce: debounce,
		reload:   reload,
		fsw:      fsw,
		log:      logging.For("watch"),
	}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Run delivers debounced reloads until ctx is done, then closes the
// underlying watcher. A failed reload is logged and the loop continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.log.Info().Str("path", w.path).Dur("debounce", w.debounce).Msg("watching rule table")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug().Str("op", ev.Op.String()).Msg("table changed")
			pending = time.After(w.debounce)

		case <-pending:
			pending = nil
			if err := w.reload(ctx); err != nil {
				w.log.Error().Err(err).Msg("reload failed, keeping previous snapshot")
				continue
			}
			w.log.Info().Msg("rule table reloaded")

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Close stops the watcher without waiting for Run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

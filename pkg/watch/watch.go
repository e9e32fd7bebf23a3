// Package watch re-runs a query whenever its knowledge base file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/pql/pkg/log"
	"github.com/macropower/pql/pkg/session"
)

// DefaultDebounce is how long the watcher waits for further changes before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a [Watcher].
type Option func(w *Watcher)

// WithDebounce sets the quiet period after the last change before the file
// is reloaded.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithErrorHandler sets the function receiving load and watch errors. By
// default they are logged.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher loads a knowledge base file into a session and evaluates a query,
// again after every change to the file.
type Watcher struct {
	sess     *session.Session
	onResult func(session.Result)
	onError  func(error)
	path     string
	query    string
	debounce time.Duration
}

// New creates a [Watcher] delivering each evaluation to onResult.
func New(sess *session.Session, path, query string, onResult func(session.Result), opts ...Option) *Watcher {
	w := &Watcher{
		sess:     sess,
		path:     path,
		query:    query,
		onResult: onResult,
		debounce: DefaultDebounce,
		onError: func(err error) {
			slog.Error("watch", slog.Any("err", err))
		},
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run evaluates the query once, then watches the file until ctx is done.
// The file's directory is watched, so editors that replace the file
// atomically are followed.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}

	defer func() {
		if err := fsw.Close(); err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	err = fsw.Add(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("add path to watcher: %w", err)
	}

	logger := log.WithContext(ctx)
	logger.DebugContext(ctx, "watching knowledge base", slog.String("path", target))

	w.reload(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(evt.Name) != target || !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}

			logger.DebugContext(ctx, "knowledge base changed", slog.String("event", evt.String()))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}

			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			w.onError(fmt.Errorf("watch %q: %w", w.path, err))

		case <-fire:
			fire = nil

			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if err := w.sess.Load(w.path); err != nil {
		w.onError(err)

		return
	}

	w.onResult(w.sess.Query(ctx, w.query))
}

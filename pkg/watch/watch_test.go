package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/watch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const timeout = 5 * time.Second

type harness struct {
	results chan session.Result
	errs    chan error
	done    chan error
	cancel  context.CancelFunc
}

func start(t *testing.T, path, query string) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		results: make(chan session.Result, 16),
		errs:    make(chan error, 16),
		done:    make(chan error, 1),
		cancel:  cancel,
	}

	w := watch.New(session.New(), path, query,
		func(res session.Result) { h.results <- res },
		watch.WithDebounce(20*time.Millisecond),
		watch.WithErrorHandler(func(err error) { h.errs <- err }),
	)

	go func() {
		h.done <- w.Run(ctx)
	}()

	t.Cleanup(h.stop(t))

	return h
}

func (h *harness) stop(t *testing.T) func() {
	t.Helper()

	return func() {
		h.cancel()

		select {
		case err := <-h.done:
			assert.NoError(t, err)
		case <-time.After(timeout):
			t.Error("watcher did not stop")
		}
	}
}

func (h *harness) result(t *testing.T) session.Result {
	t.Helper()

	select {
	case res := <-h.results:
		return res
	case err := <-h.errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timed out waiting for result")
	}

	return session.Result{}
}

func (h *harness) failure(t *testing.T) error {
	t.Helper()

	select {
	case err := <-h.errs:
		return err
	case <-time.After(timeout):
		t.Fatal("timed out waiting for error")
	}

	return nil
}

func write(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestWatcher_Rewrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kb.pl")
	write(t, path, "a.\nb :- a.\n")

	h := start(t, path, "b")

	res := h.result(t)
	assert.True(t, res.Value)
	assert.Equal(t, "b", res.Query)

	write(t, path, "b :- a.\n")

	assert.False(t, h.result(t).Value)
}

func TestWatcher_AtomicReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "kb.pl")
	write(t, path, "a.\n")

	h := start(t, path, "a")
	assert.True(t, h.result(t).Value)

	tmp := filepath.Join(dir, "kb.pl.tmp")
	write(t, tmp, "c.\n")
	require.NoError(t, os.Rename(tmp, path))

	assert.False(t, h.result(t).Value)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "kb.pl")
	write(t, path, "a.\n")

	h := start(t, path, "a")
	assert.True(t, h.result(t).Value)

	write(t, filepath.Join(dir, "other.pl"), "x.\n")

	select {
	case res := <-h.results:
		t.Fatalf("unexpected result: %+v", res)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kb.pl")

	h := start(t, path, "a")
	require.ErrorContains(t, h.failure(t), "load")

	write(t, path, "a.\n")

	assert.True(t, h.result(t).Value)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "kb.pl")

	w := watch.New(session.New(), path, "a", func(session.Result) {})

	err := w.Run(t.Context())
	require.ErrorContains(t, err, "add path to watcher")
}

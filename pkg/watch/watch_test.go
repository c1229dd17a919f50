package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tehprofessor/corg/pkg/watch"
)

const (
	testDebounce = 30 * time.Millisecond
	settle       = 300 * time.Millisecond
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// start runs a watcher over paths and waits until it is watching.
func start(t *testing.T, paths ...string) *recorder {
	t.Helper()

	w := watch.New([]string{".md"})
	w.Debounce = testDebounce
	ready := make(chan struct{})
	w.SetReady(func() { close(ready) })

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, paths, rec.record) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watcher stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return rec
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_ReportsChangedRunbooks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "deploy.md")
	write(t, doc, "# one\n")

	rec := start(t, dir)

	// Several quick writes collapse into one report.
	write(t, doc, "# two\n")
	write(t, doc, "# three\n")
	write(t, filepath.Join(dir, "notes.txt"), "ignored\n")
	write(t, filepath.Join(dir, ".draft.md"), "ignored\n")

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(settle)
	assert.Equal(t, []string{doc}, rec.snapshot())

	// Rewriting identical content is not a change.
	write(t, doc, "# three\n")
	time.Sleep(settle)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWatcher_NewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := start(t, dir)

	sub := filepath.Join(dir, "ops")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher time to register the new directory.
	time.Sleep(settle)

	doc := filepath.Join(sub, "backup.md")
	write(t, doc, "## Dump\n")

	require.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == doc
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "deploy.md")
	other := filepath.Join(dir, "other.md")
	write(t, doc, "# a\n")
	write(t, other, "# a\n")

	rec := start(t, doc)

	write(t, other, "# b\n")
	write(t, doc, "# b\n")

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(settle)
	assert.Equal(t, []string{doc}, rec.snapshot())
}

func TestWatcher_MissingPath(t *testing.T) {
	t.Parallel()

	w := watch.New([]string{".md"})
	err := w.Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, func(context.Context, string) {})
	require.Error(t, err)
}

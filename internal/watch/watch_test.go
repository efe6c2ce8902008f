package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimurManjosov/gotiers/internal/testutil"
)

func startWatcher(t *testing.T, path string, reload Reloader) {
	t.Helper()
	w, err := New(path, 20*time.Millisecond, reload)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := testutil.WriteSampleTSV(t)

	var calls atomic.Int32
	startWatcher(t, path, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	// a burst of writes collapses into one reload
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(testutil.SampleTSV), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := testutil.WriteSampleTSV(t)

	var calls atomic.Int32
	startWatcher(t, path, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	other := filepath.Join(filepath.Dir(path), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o644))

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_FailedReloadKeepsWatching(t *testing.T) {
	path := testutil.WriteSampleTSV(t)

	var calls atomic.Int32
	startWatcher(t, path, func(context.Context) error {
		calls.Add(1)
		return errors.New("bad table")
	})

	require.NoError(t, os.WriteFile(path, []byte("Gene\tBogus\n"), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(testutil.SampleTSV), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("tiers.tsv", 0, nil)
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing", "tiers.tsv"), 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{path: "/data/tiers.tsv"}
	assert.True(t, w.relevant(fsnotify.Event{Name: "/data/tiers.tsv", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/data/./tiers.tsv", Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/data/tiers.tsv", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/data/other.tsv", Op: fsnotify.Write}))
}

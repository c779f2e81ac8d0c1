package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// give fsnotify a moment to register the watches
	time.Sleep(100 * time.Millisecond)
}

func TestWatcherDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, &Watcher{Root: root, Debounce: 200 * time.Millisecond, OnChange: func() { calls.Add(1) }})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "writeup.md"), []byte{byte(i)}, 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, &Watcher{Root: root, Debounce: 50 * time.Millisecond, OnChange: func() { calls.Add(1) }})

	sub := filepath.Join(root, "event", "web")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "event"), 0o755))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	// the new directory is watched now, so changes inside it count too
	time.Sleep(100 * time.Millisecond)
	before := calls.Load()
	require.NoError(t, os.MkdirAll(sub, 0o755))
	assert.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresListedPaths(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "index.json")
	var calls atomic.Int32
	startWatcher(t, &Watcher{Root: root, Ignore: []string{out}, Debounce: 50 * time.Millisecond, OnChange: func() { calls.Add(1) }})

	require.NoError(t, os.WriteFile(out, []byte("{}"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcherMissingRoot(t *testing.T) {
	w := &Watcher{Root: filepath.Join(t.TempDir(), "missing")}
	require.Error(t, w.Run(context.Background()))
}

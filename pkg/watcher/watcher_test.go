package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tspack/tspack/pkg/logger"
	"github.com/tspack/tspack/pkg/watcher"
)

func newWatchedProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.ts"), []byte("export {}\n"), 0644))
	return dir
}

func TestRun(t *testing.T) {
	t.Run("SourceChangeTriggersRebuild", func(t *testing.T) {
		dir := newWatchedProject(t)
		w, err := watcher.New(dir, []string{"dist-src", "dist-types"}, logger.Silent())
		require.NoError(t, err)

		var rebuilds atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = w.Run(ctx, func(context.Context) error {
				rebuilds.Add(1)
				return nil
			})
		}()

		// Give the watcher a moment to install its watches.
		time.Sleep(200 * time.Millisecond)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.ts"), []byte("export const x = 1\n"), 0644))

		require.Eventually(t, func() bool {
			return rebuilds.Load() >= 1
		}, 5*time.Second, 50*time.Millisecond)

		cancel()
		<-done
	})

	t.Run("OutputDirIgnored", func(t *testing.T) {
		dir := newWatchedProject(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist-src"), 0755))
		w, err := watcher.New(dir, []string{"dist-src", "dist-types"}, logger.Silent())
		require.NoError(t, err)

		var rebuilds atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = w.Run(ctx, func(context.Context) error {
				rebuilds.Add(1)
				return nil
			})
		}()

		time.Sleep(200 * time.Millisecond)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dist-src", "index.js"), []byte("generated\n"), 0644))
		time.Sleep(500 * time.Millisecond)

		assert.Equal(t, int32(0), rebuilds.Load())

		cancel()
		<-done
	})

	t.Run("DebouncesBursts", func(t *testing.T) {
		dir := newWatchedProject(t)
		w, err := watcher.New(dir, nil, logger.Silent())
		require.NoError(t, err)

		var rebuilds atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = w.Run(ctx, func(context.Context) error {
				rebuilds.Add(1)
				return nil
			})
		}()

		time.Sleep(200 * time.Millisecond)
		for i := 0; i < 5; i++ {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.ts"), []byte("export {}\n"), 0644))
			time.Sleep(10 * time.Millisecond)
		}

		require.Eventually(t, func() bool {
			return rebuilds.Load() >= 1
		}, 5*time.Second, 50*time.Millisecond)
		// A burst of writes within the debounce window collapses into one
		// rebuild, maybe two if the window straddles a write.
		assert.LessOrEqual(t, rebuilds.Load(), int32(2))

		cancel()
		<-done
	})
}

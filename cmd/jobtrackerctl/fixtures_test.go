package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWatchFixtures(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "demo.yml")
	require.NoError(t, os.WriteFile(filename, []byte("- !user alice\n"), 0o600))

	watcher, err := newFixtureWatcher(filename)
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	core, logs := observer.New(zap.InfoLevel)
	loads := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchFixtures(ctx, watcher, filename, func() error {
			select {
			case loads <- struct{}{}:
			default:
			}
			return nil
		}, zap.New(core))
	}()

	// Writes to other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("[]\n"), 0o600))
	require.NoError(t, os.WriteFile(filename, []byte("- !user bob\n"), 0o600))

	select {
	case <-loads:
	case <-time.After(5 * time.Second):
		t.Fatal("fixture file change was not picked up")
	}

	cancel()
	require.NoError(t, <-done)
	assert.NotZero(t, logs.FilterMessage("fixture file changed").Len())
	for _, entry := range logs.FilterMessage("fixture file changed").All() {
		assert.Equal(t, filename, entry.ContextMap()["file"])
	}
}

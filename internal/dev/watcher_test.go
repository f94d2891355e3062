package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_shouldWatch(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		exclude  []string
		path     string
		want     bool
	}{
		{
			name:     "match json file",
			patterns: []string{"*.json"},
			path:     "/project/sample.json",
			want:     true,
		},
		{
			name:     "match configured input path",
			patterns: []string{"./sample.json"},
			path:     "/project/sample.json",
			want:     true,
		},
		{
			name:     "match nested file with ** pattern",
			patterns: []string{"**/*.yaml"},
			path:     "/project/fixtures/deep/order.yaml",
			want:     true,
		},
		{
			name:     "match relative path pattern",
			patterns: []string{"fixtures/*.json"},
			path:     "/project/fixtures/order.json",
			want:     true,
		},
		{
			name:     "relative path pattern does not match other dirs",
			patterns: []string{"fixtures/*.json"},
			path:     "/project/other/order.json",
			want:     false,
		},
		{
			name:     "exclude by base name",
			patterns: []string{"*.json"},
			exclude:  []string{"pojogen.json"},
			path:     "/project/pojogen.json",
			want:     false,
		},
		{
			name:     "exclude directory",
			patterns: []string{"**/*.json"},
			exclude:  []string{"node_modules/"},
			path:     "/project/node_modules/pkg/package.json",
			want:     false,
		},
		{
			name:     "directory exclude does not match file name",
			patterns: []string{"*.json"},
			exclude:  []string{"sample.json/"},
			path:     "/project/sample.json",
			want:     true,
		},
		{
			name:     "no match",
			patterns: []string{"*.json", "*.yaml"},
			path:     "/project/readme.md",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw, err := NewFileWatcher("/project", tt.patterns, tt.exclude, func(string, fsnotify.Op) {}, zerolog.Nop())
			require.NoError(t, err)
			defer fw.Close()

			assert.Equal(t, tt.want, fw.shouldWatch(tt.path))
		})
	}
}

func TestFileWatcher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tmpDir := t.TempDir()

	fixtures := filepath.Join(tmpDir, "fixtures")
	require.NoError(t, os.MkdirAll(fixtures, 0755))

	// Track events
	var (
		eventsMu sync.Mutex
		seen     = map[string]bool{}
	)
	onChange := func(path string, op fsnotify.Op) {
		eventsMu.Lock()
		defer eventsMu.Unlock()
		seen[filepath.Base(path)] = true
	}

	fw, err := NewFileWatcher(tmpDir,
		[]string{"*.json", "**/*.yaml"},
		[]string{"pojogen.json", "vendor/"},
		onChange,
		zerolog.Nop(),
	)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.AddDirectory(tmpDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- fw.Start(ctx)
	}()

	// Give watcher time to start
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sample.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "pojogen.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "order.yaml"), []byte("a: 1\n"), 0644))

	vendorDir := filepath.Join(tmpDir, "vendor")
	require.NoError(t, os.MkdirAll(vendorDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(vendorDir, "lib.json"), []byte(`{}`), 0644))

	assert.Eventually(t, func() bool {
		eventsMu.Lock()
		defer eventsMu.Unlock()
		return seen["sample.json"] && seen["order.yaml"]
	}, 2*time.Second, 20*time.Millisecond)

	eventsMu.Lock()
	defer eventsMu.Unlock()
	assert.False(t, seen["pojogen.json"], "Should not have event for pojogen.json")
	assert.False(t, seen["lib.json"], "Should not have event for vendor/lib.json")

	cancel()
	assert.ErrorIs(t, <-errChan, context.Canceled)
}

func TestFileWatcher_AddDirectorySkipsExcluded(t *testing.T) {
	tmpDir := t.TempDir()

	for _, dir := range []string{"src", "src/internal", "node_modules", ".git"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, dir), 0755))
	}

	fw, err := NewFileWatcher(tmpDir,
		[]string{"*.json"},
		[]string{"node_modules/", ".git/"},
		func(string, fsnotify.Op) {},
		zerolog.Nop(),
	)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.AddDirectory(tmpDir))

	watched := fw.watcher.WatchList()
	assert.Contains(t, watched, filepath.Join(tmpDir, "src", "internal"))
	assert.NotContains(t, watched, filepath.Join(tmpDir, "node_modules"))
	assert.NotContains(t, watched, filepath.Join(tmpDir, ".git"))
}

func TestFileWatcher_Close(t *testing.T) {
	fw, err := NewFileWatcher("", []string{"*.json"}, nil, func(string, fsnotify.Op) {}, zerolog.Nop())
	require.NoError(t, err)

	// Close should not error
	assert.NoError(t, fw.Close())

	// Double close should also be safe
	assert.NoError(t, fw.Close())
}

package dev

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
)

// Test plan:
// 1. A burst of events regenerates once
// 2. Rewriting identical content does not regenerate
// 3. Removing a watched file regenerates once
// 4. Chmod-only events are ignored
// 5. Initial generation failure is returned from Start
// 6. Start regenerates on real file changes until cancelled

func newTestServer(t *testing.T, root string, regen Regenerator) *Server {
	t.Helper()
	s, err := NewServer(root, []string{"*.json"}, nil, regen, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	return s
}

func counter() (*atomic.Int32, Regenerator) {
	var n atomic.Int32
	return &n, RegeneratorFunc(func(context.Context) error {
		n.Add(1)
		return nil
	})
}

func TestServer_DebouncesBurst(t *testing.T) {
	// Test: several events within the quiet period coalesce into one run
	root := t.TempDir()
	n, regen := counter()
	s := newTestServer(t, root, regen)

	path := filepath.Join(root, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))
	for i := 0; i < 5; i++ {
		s.handleFileChange(path, fsnotify.Write)
	}

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 1, s.Builds())
}

func TestServer_SkipsUnchangedContent(t *testing.T) {
	// Test: the digest cache suppresses regeneration for identical content
	root := t.TempDir()
	n, regen := counter()
	s := newTestServer(t, root, regen)

	path := filepath.Join(root, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))
	s.handleFileChange(path, fsnotify.Write)
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))
	s.handleFileChange(path, fsnotify.Write)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())

	require.NoError(t, os.WriteFile(path, []byte(`{"a":2}`), 0644))
	s.handleFileChange(path, fsnotify.Write)
	assert.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestServer_RemovedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	n, regen := counter()
	s := newTestServer(t, root, regen)

	changed, err := s.changed(path)
	require.NoError(t, err)
	require.True(t, changed)

	require.NoError(t, os.Remove(path))
	s.handleFileChange(path, fsnotify.Remove)
	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)

	// A second removal event for a file already forgotten is not a change
	changed, err = s.changed(path)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestServer_IgnoresChmod(t *testing.T) {
	root := t.TempDir()
	n, regen := counter()
	s := newTestServer(t, root, regen)

	s.handleFileChange(filepath.Join(root, "sample.json"), fsnotify.Chmod)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), n.Load())
	assert.Empty(t, s.pending)
}

func TestServer_StopCancelsPending(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	var n atomic.Int32
	s, err := NewServer(root, []string{"*.json"}, nil, RegeneratorFunc(func(context.Context) error {
		n.Add(1)
		return nil
	}), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	s.handleFileChange(path, fsnotify.Write)
	require.NoError(t, s.Stop(context.Background()))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), n.Load())
}

func TestServer_StartInitialFailure(t *testing.T) {
	boom := errors.New("boom")
	s := newTestServer(t, t.TempDir(), RegeneratorFunc(func(context.Context) error { return boom }))

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "initial generation failed")
}

func TestServer_StartWatches(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	root := t.TempDir()
	path := filepath.Join(root, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))

	n, regen := counter()
	s := newTestServer(t, root, regen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start(ctx)
	}()

	// Initial generation
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"a":2}`), 0644))
	assert.Eventually(t, func() bool { return n.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	// Ignored: does not match the patterns
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), n.Load())

	cancel()
	assert.ErrorIs(t, <-errChan, context.Canceled)
}

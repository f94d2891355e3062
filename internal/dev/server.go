// Package dev implements watch mode: it regenerates output whenever a
// watched input changes.
package dev

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const (
	// DefaultDebounce is how long the server waits for a burst of events to
	// settle before regenerating
	DefaultDebounce = 100 * time.Millisecond
	// DefaultDigestCacheSize bounds the number of file digests remembered
	DefaultDigestCacheSize = 256
)

// Server regenerates output when watched files change. Bursts of events
// are coalesced and files whose content is unchanged are ignored.
type Server struct {
	root     string
	patterns []string
	exclude  []string
	regen    Regenerator
	logger   zerolog.Logger
	debounce time.Duration
	watcher  *FileWatcher

	digests *lru.Cache[string, string]

	mu      sync.Mutex
	ctx     context.Context
	timer   *time.Timer
	pending map[string]fsnotify.Op

	// Serializes regeneration
	buildMutex sync.Mutex
	builds     int
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithDebounce sets the quiet period before regenerating
func WithDebounce(d time.Duration) ServerOption {
	return func(s *Server) {
		s.debounce = d
	}
}

// WithLogger sets the server's logger
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a watch server for the project at root
func NewServer(root string, patterns, exclude []string, regen Regenerator, opts ...ServerOption) (*Server, error) {
	digests, err := lru.New[string, string](DefaultDigestCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest cache: %w", err)
	}

	s := &Server{
		root:     root,
		patterns: patterns,
		exclude:  exclude,
		regen:    regen,
		logger:   zerolog.Nop(),
		debounce: DefaultDebounce,
		digests:  digests,
		pending:  make(map[string]fsnotify.Op),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "dev-server").Logger()
	return s, nil
}

// Start runs an initial regeneration and then watches until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("initial generation failed: %w", err)
	}

	watcher, err := NewFileWatcher(s.root, s.patterns, s.exclude, s.handleFileChange, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher
	defer s.watcher.Close()

	if err := s.watcher.AddDirectory(s.root); err != nil {
		return fmt.Errorf("failed to watch project directory: %w", err)
	}
	s.prime()

	s.logger.Info().Str("root", s.root).Strs("patterns", s.patterns).Msg("watching for changes")
	return s.watcher.Start(ctx)
}

// Stop cancels any pending regeneration
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	clear(s.pending)
	s.mu.Unlock()
	return nil
}

// Builds returns how many regenerations have run
func (s *Server) Builds() int {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()
	return s.builds
}

// handleFileChange is called when a watched file changes
func (s *Server) handleFileChange(path string, op fsnotify.Op) {
	if op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[path] |= op
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
}

// flush runs once a burst of events has settled
func (s *Server) flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]fsnotify.Op)
	s.timer = nil
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var changed []string
	for _, p := range paths {
		ok, err := s.changed(p)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", p).Msg("failed to read changed file")
			continue
		}
		if ok {
			changed = append(changed, p)
		}
	}
	if len(changed) == 0 {
		s.logger.Debug().Strs("paths", paths).Msg("content unchanged, skipping")
		return
	}

	s.logger.Info().Strs("paths", changed).Msg("input changed, regenerating")
	if err := s.rebuild(ctx); err != nil {
		s.logger.Error().Err(err).Msg("generation failed")
	}
}

func (s *Server) rebuild(ctx context.Context) error {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()
	s.builds++
	return s.regen.Regenerate(ctx)
}

// changed reports whether the content at path differs from the last digest
// seen for it. A removed file counts as a change once.
func (s *Server) changed(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.digests.Remove(path), nil
	}
	if err != nil {
		return false, err
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if prev, ok := s.digests.Get(path); ok && prev == digest {
		return false, nil
	}
	s.digests.Add(path, digest)
	return true, nil
}

// prime records the digests of the files present when watching starts so
// that touching an unchanged input does not regenerate
func (s *Server) prime() {
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && s.watcher.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.watcher.shouldWatch(path) {
			if _, err := s.changed(path); err != nil {
				s.logger.Debug().Err(err).Str("path", path).Msg("failed to prime digest")
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("failed to prime digests")
	}
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okra-platform/pojogen/internal/config"
	"github.com/okra-platform/pojogen/internal/dev"
)

// WatchDependencies for the watch command
type WatchDependencies struct {
	ServerFactory  WatchServerFactory
	SignalNotifier SignalNotifier
}

// Interfaces for dependency injection
type WatchServerFactory interface {
	NewServer(cfg *config.Config, projectRoot string, regen dev.Regenerator) (WatchServer, error)
}

type WatchServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type SignalNotifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// Default implementations
type defaultWatchServerFactory struct {
	ctrl *Controller
}

func (f *defaultWatchServerFactory) NewServer(cfg *config.Config, projectRoot string, regen dev.Regenerator) (WatchServer, error) {
	return dev.NewServer(projectRoot, cfg.Watch.Patterns, cfg.Watch.Exclude, regen, dev.WithLogger(f.ctrl.Logger))
}

type defaultSignalNotifier struct{}

func (defaultSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
func (defaultSignalNotifier) Stop(c chan<- os.Signal)                     { signal.Stop(c) }

// WatchCommand regenerates every target whenever a watched input changes
type WatchCommand struct {
	ctrl *Controller
	deps WatchDependencies
}

// NewWatchCommand creates a watch command with default dependencies
func NewWatchCommand(ctrl *Controller) *WatchCommand {
	return &WatchCommand{
		ctrl: ctrl,
		deps: WatchDependencies{
			ServerFactory:  &defaultWatchServerFactory{ctrl: ctrl},
			SignalNotifier: defaultSignalNotifier{},
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (wc *WatchCommand) WithDependencies(deps WatchDependencies) *WatchCommand {
	wc.deps = deps
	return wc
}

// Execute runs the watch command
func (wc *WatchCommand) Execute(ctx context.Context, o Overrides) error {
	cfg, projectRoot, err := wc.ctrl.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}
	if err := o.Apply(cfg, wc.ctrl.registry()); err != nil {
		return err
	}
	if cfg.Input == "-" {
		return errors.New("cannot watch standard input")
	}

	wc.ctrl.Logger.Info().
		Str("root", projectRoot).
		Str("input", cfg.Input).
		Int("targets", len(cfg.Targets)).
		Msg("starting watch mode")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	wc.deps.SignalNotifier.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer wc.deps.SignalNotifier.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			wc.ctrl.Logger.Info().Msg("shutting down watch mode")
			cancel()
		case <-ctx.Done():
		}
	}()

	pipeline := NewPipeline(cfg, projectRoot, wc.ctrl.registry(), wc.ctrl.out(), wc.ctrl.Logger)
	server, err := wc.deps.ServerFactory.NewServer(cfg, projectRoot, pipeline)
	if err != nil {
		return fmt.Errorf("failed to create watch server: %w", err)
	}
	defer server.Stop(context.Background())

	if err := server.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}

// Watch runs watch mode until interrupted
func (c *Controller) Watch(ctx context.Context, o Overrides) error {
	return NewWatchCommand(c).Execute(ctx, o)
}

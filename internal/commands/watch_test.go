package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/pojogen/internal/config"
	"github.com/okra-platform/pojogen/internal/dev"
)

// Mock implementations for the watch command
type mockWatchServer struct {
	mock.Mock
}

func (m *mockWatchServer) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockWatchServer) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockWatchServerFactory struct {
	mock.Mock
	regen dev.Regenerator
}

func (m *mockWatchServerFactory) NewServer(cfg *config.Config, projectRoot string, regen dev.Regenerator) (WatchServer, error) {
	m.regen = regen
	args := m.Called(cfg, projectRoot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(WatchServer), args.Error(1)
}

type mockSignalNotifier struct {
	mock.Mock
}

func (m *mockSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	m.Called(c, sig)
}

func (m *mockSignalNotifier) Stop(c chan<- os.Signal) {
	m.Called(c)
}

func newWatchMocks() (*mockWatchServerFactory, *mockWatchServer, *mockSignalNotifier) {
	factory := new(mockWatchServerFactory)
	server := new(mockWatchServer)
	notifier := new(mockSignalNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return()
	notifier.On("Stop", mock.Anything).Return()
	return factory, server, notifier
}

func TestWatchCommand_Execute_Success(t *testing.T) {
	// Test: the server receives the project config and a working pipeline
	ctrl, out, root := newProject(t, &config.Config{
		Input:   "sample.json",
		Targets: []config.Target{{Language: "go", Output: "-"}},
	}, map[string]string{"sample.json": sampleDoc})

	factory, server, notifier := newWatchMocks()
	factory.On("NewServer", mock.AnythingOfType("*config.Config"), root).Return(server, nil)
	server.On("Start", mock.Anything).Run(func(args mock.Arguments) {
		// Drive one regeneration the way the server would
		require.NoError(t, factory.regen.Regenerate(args.Get(0).(context.Context)))
	}).Return(context.Canceled)
	server.On("Stop", mock.Anything).Return(nil)

	cmd := NewWatchCommand(ctrl).WithDependencies(WatchDependencies{
		ServerFactory:  factory,
		SignalNotifier: notifier,
	})

	require.NoError(t, cmd.Execute(context.Background(), Overrides{}))
	assert.Contains(t, out.String(), "type GeneratedPojoKey3 struct {")

	cfg := factory.Calls[0].Arguments.Get(0).(*config.Config)
	assert.Equal(t, []string{"sample.json"}, cfg.Watch.Patterns)

	factory.AssertExpectations(t)
	server.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestWatchCommand_Execute_ServerError(t *testing.T) {
	ctrl, _, root := newProject(t, &config.Config{Input: "sample.json"}, map[string]string{"sample.json": sampleDoc})

	factory, server, notifier := newWatchMocks()
	factory.On("NewServer", mock.Anything, root).Return(server, nil)
	server.On("Start", mock.Anything).Return(errors.New("boom"))
	server.On("Stop", mock.Anything).Return(nil)

	err := NewWatchCommand(ctrl).WithDependencies(WatchDependencies{
		ServerFactory:  factory,
		SignalNotifier: notifier,
	}).Execute(context.Background(), Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch error: boom")
}

func TestWatchCommand_Execute_FactoryError(t *testing.T) {
	ctrl, _, _ := newProject(t, &config.Config{Input: "sample.json"}, nil)

	factory, _, notifier := newWatchMocks()
	factory.On("NewServer", mock.Anything, mock.Anything).Return(nil, errors.New("no watcher"))

	err := NewWatchCommand(ctrl).WithDependencies(WatchDependencies{
		ServerFactory:  factory,
		SignalNotifier: notifier,
	}).Execute(context.Background(), Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create watch server")
}

func TestWatchCommand_Execute_RejectsStdin(t *testing.T) {
	ctrl, _, _ := newProject(t, &config.Config{Input: "sample.json"}, nil)

	factory, _, notifier := newWatchMocks()
	err := NewWatchCommand(ctrl).WithDependencies(WatchDependencies{
		ServerFactory:  factory,
		SignalNotifier: notifier,
	}).Execute(context.Background(), Overrides{Input: "-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot watch standard input")
	factory.AssertNotCalled(t, "NewServer", mock.Anything, mock.Anything)
}

func TestWatchCommand_Execute_ConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pojogen.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	ctrl := &Controller{Flags: &Flags{Config: path}}

	err := ctrl.Watch(context.Background(), Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load project config")
}

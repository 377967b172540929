package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/photobot/internal/bot/tasks"
	"github.com/edgard/photobot/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeUpdates struct {
	polling atomic.Bool
	webhook atomic.Bool
}

func (f *fakeUpdates) Start(ctx context.Context) {
	f.polling.Store(true)
	<-ctx.Done()
}

func (f *fakeUpdates) StartWebhook(ctx context.Context) {
	f.webhook.Store(true)
	<-ctx.Done()
}

type fakeServer struct {
	startErr error
	stopped  chan struct{}
	once     sync.Once
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{startErr: startErr, stopped: make(chan struct{})}
}

func (f *fakeServer) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.once.Do(func() { close(f.stopped) })
	return nil
}

type fakeScheduler struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (f *fakeScheduler) Start(context.Context) error {
	f.started.Store(true)
	return nil
}

func (f *fakeScheduler) Stop() error {
	f.stopped.Store(true)
	return nil
}

func runUntilCancelled(t *testing.T, b *Bot) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
		return nil
	}
}

func TestRun_PollingGracefulShutdown(t *testing.T) {
	t.Parallel()

	updates, server, sched := &fakeUpdates{}, newFakeServer(nil), &fakeScheduler{}
	b := NewBot(discard, &config.Config{}, updates, server, sched)

	require.NoError(t, runUntilCancelled(t, b))
	assert.True(t, updates.polling.Load())
	assert.False(t, updates.webhook.Load())
	assert.True(t, sched.started.Load())
	assert.True(t, sched.stopped.Load())
}

func TestRun_Webhook(t *testing.T) {
	t.Parallel()

	updates := &fakeUpdates{}
	b := NewBot(discard, &config.Config{UseWebhook: true}, updates, newFakeServer(nil), &fakeScheduler{})

	require.NoError(t, runUntilCancelled(t, b))
	assert.True(t, updates.webhook.Load())
	assert.False(t, updates.polling.Load())
}

func TestRun_ServerFailureStopsEverything(t *testing.T) {
	t.Parallel()

	sched := &fakeScheduler{}
	b := NewBot(discard, &config.Config{}, &fakeUpdates{}, newFakeServer(errors.New("address already in use")), sched)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.True(t, sched.stopped.Load())
}

func TestScheduler_SchedulesValidTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
		"storage_report":  {Enabled: false, Schedule: "0 0 * * * *"},
		"unknown":         {Enabled: true, Schedule: "0 0 * * * *"},
		"empty":           {Enabled: true},
		"broken":          {Enabled: true, Schedule: "not cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"sql_maintenance": noop,
		"storage_report":  noop,
		"empty":           noop,
		"broken":          noop,
	}

	s, err := NewScheduler(discard, cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{"sql_maintenance"}, s.JobNames())
	assert.Error(t, s.Start(context.Background()), "second start is rejected")
}

func TestScheduler_RunsTask(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"tick": {Enabled: true, Schedule: "* * * * * *"},
	}}
	s, err := NewScheduler(discard, cfg, map[string]tasks.ScheduledTaskFunc{
		"tick": func(context.Context) error {
			runs.Add(1)
			return errors.New("failures are only logged")
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop(), "stopping twice is a no-op")
}

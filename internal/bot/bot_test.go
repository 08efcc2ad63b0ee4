package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/travelboss/travelbot/internal/bot/tasks"
	"github.com/travelboss/travelbot/internal/config"
)

type blockingListener struct{ started atomic.Bool }

func (l *blockingListener) Start(ctx context.Context) {
	l.started.Store(true)
	<-ctx.Done()
}

type fakeTransport struct {
	err       error
	connected atomic.Bool
}

func (t *fakeTransport) Connect(context.Context) error {
	if t.err != nil {
		return t.err
	}
	t.connected.Store(true)
	return nil
}

func (t *fakeTransport) Disconnect() { t.connected.Store(false) }

type fakeRunner struct {
	err error
	ran atomic.Bool
}

func (r *fakeRunner) Run(ctx context.Context) error {
	r.ran.Store(true)
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(discardLogger(), &config.SchedulerConfig{}, map[string]tasks.ScheduledTaskFunc{}, time.UTC)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	return s
}

func TestBotRun_GracefulShutdown(t *testing.T) {
	t.Parallel()

	listener := &blockingListener{}
	transport := &fakeTransport{}
	httpRunner := &fakeRunner{}
	recorder := &fakeRunner{}

	b := NewBot(discardLogger(), Components{
		Listener:  listener,
		Transport: transport,
		Scheduler: newTestScheduler(t),
		HTTP:      httpRunner,
		Recorder:  recorder,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !(listener.started.Load() && httpRunner.ran.Load() && recorder.ran.Load()) {
		if time.Now().After(deadline) {
			t.Fatal("components were not started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !transport.connected.Load() {
		t.Error("transport not connected while running")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if transport.connected.Load() {
		t.Error("transport still connected after shutdown")
	}
}

func TestBotRun_ConnectFailure(t *testing.T) {
	t.Parallel()

	b := NewBot(discardLogger(), Components{
		Listener:  &blockingListener{},
		Transport: &fakeTransport{err: errors.New("unauthorized")},
		Scheduler: newTestScheduler(t),
	})

	if err := b.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want connect failure")
	}
}

func TestBotRun_ComponentFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("listen tcp: address in use")
	b := NewBot(discardLogger(), Components{
		Listener:  &blockingListener{},
		Transport: &fakeTransport{},
		Scheduler: newTestScheduler(t),
		HTTP:      &fakeRunner{err: wantErr},
	})

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, wantErr) {
			t.Errorf("Run() error = %v, want %v", err, wantErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after component failure")
	}
}

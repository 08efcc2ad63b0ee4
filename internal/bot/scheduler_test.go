package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/travelboss/travelbot/internal/bot/tasks"
	"github.com/travelboss/travelbot/internal/config"
)

func TestScheduler_StartSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled_task":      {Enabled: true, Schedule: "*/5 * * * *"},
		"disabled_task":     {Enabled: false, Schedule: "*/5 * * * *"},
		"unregistered_task": {Enabled: true, Schedule: "*/5 * * * *"},
		"bad_schedule":      {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"enabled_task":  noop,
		"disabled_task": noop,
		"bad_schedule":  noop,
	}

	s, err := NewScheduler(discardLogger(), cfg, taskMap, time.UTC)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0] != "enabled_task" {
		t.Errorf("Jobs() = %v, want [enabled_task]", jobs)
	}

	if err := s.Start(); err == nil {
		t.Error("second Start() error = nil")
	}
}

func TestScheduler_StopIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() before Start error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestScheduler_WrapRunsTask(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	s := newTestScheduler(t)
	fn := s.wrap(func(context.Context) error {
		calls.Add(1)
		return errors.New("task failed")
	})

	fn(context.Background(), "sample")
	if calls.Load() != 1 {
		t.Errorf("task calls = %d, want 1", calls.Load())
	}
}

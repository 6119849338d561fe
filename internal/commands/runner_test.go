package commands

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRestartableRunnerCleanExit(t *testing.T) {
	var runs atomic.Int32
	r := NewRestartableRunner(RunnerConfig{Name: "test"}, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return runs.Load() == 1 })
	time.Sleep(20 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("run count = %d, want 1 (clean exit must not restart)", got)
	}
	if r.RestartCount() != 0 {
		t.Errorf("RestartCount() = %d, want 0", r.RestartCount())
	}
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRestartableRunnerRestartsOnError(t *testing.T) {
	var runs atomic.Int32
	r := NewRestartableRunner(RunnerConfig{
		Name:           "test",
		MaxRestarts:    3,
		RestartBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Initial run plus restarts until the limit: 3 runs total.
	waitFor(t, 2*time.Second, func() bool { return runs.Load() == 3 })
	time.Sleep(20 * time.Millisecond)

	if got := runs.Load(); got != 3 {
		t.Errorf("run count = %d, want 3", got)
	}
	if err := r.LastError(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("LastError() = %v, want boom", err)
	}
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRestartableRunnerRecoversPanic(t *testing.T) {
	r := NewRestartableRunner(RunnerConfig{
		Name:           "test",
		MaxRestarts:    1,
		RestartBackoff: time.Millisecond,
	}, func(ctx context.Context) error {
		panic("kaboom")
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		err := r.LastError()
		return err != nil && strings.Contains(err.Error(), "panic")
	})

	if err := r.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRestartableRunnerStop(t *testing.T) {
	started := make(chan struct{}, 1)
	r := NewRestartableRunner(RunnerConfig{Name: "test"}, func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-started

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if r.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}

func TestRestartableRunnerDoubleStart(t *testing.T) {
	block := make(chan struct{})
	r := NewRestartableRunner(RunnerConfig{Name: "test"}, func(ctx context.Context) error {
		<-block
		return nil
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Start(context.Background()); err == nil {
		t.Error("second Start() did not fail")
	}

	close(block)
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

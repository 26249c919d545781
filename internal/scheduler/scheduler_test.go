package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_RunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		Run(ctx, Job{Name: "test", Interval: 5 * time.Millisecond, Task: func(context.Context) error {
			if n.Add(1) == 2 {
				return errors.New("logged, not fatal")
			}
			return nil
		}})
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for n.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("task ran %d times", n.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ZeroIntervalRunsOnce(t *testing.T) {
	var n int
	Run(context.Background(), Job{Name: "once", Task: func(context.Context) error {
		n++
		return nil
	}})
	if n != 1 {
		t.Errorf("ran %d times", n)
	}
}

func TestRun_TimeoutBoundsEachRun(t *testing.T) {
	var sawDeadline bool
	Run(context.Background(), Job{Name: "slow", Timeout: 10 * time.Millisecond, Task: func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	}})
	if !sawDeadline {
		t.Error("run context had no deadline")
	}
}

func TestRun_SkipsWhenAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Run(ctx, Job{Name: "never", Interval: time.Hour, Task: func(context.Context) error {
		t.Error("task ran on a canceled context")
		return nil
	}})
}

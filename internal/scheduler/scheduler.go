// Package scheduler runs periodic background jobs such as the deadline sweep.
package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero leaves runs bounded only by ctx.
	Timeout time.Duration
	Task    Task
}

// Run executes the job immediately and then once per Interval until ctx is
// done. Runs never overlap: ticks that fire during a slow run are dropped.
// A non-positive Interval runs the job once.
func Run(ctx context.Context, job Job) {
	job.once(ctx)
	if job.Interval <= 0 {
		return
	}

	t := time.NewTicker(job.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			job.once(ctx)
		}
	}
}

func (j Job) once(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := j.Task(runCtx); err != nil && ctx.Err() == nil {
		log.Printf("level=warn msg=\"job failed\" job=%s dur_ms=%d err=%v", j.Name, time.Since(start).Milliseconds(), err)
	}
}

// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Runner runs each Job on its own ticker until stopped.
type Runner struct {
	jobs   []Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRunner creates a runner for jobs. Jobs with a non-positive interval are
// skipped.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, log: logger, stopCh: make(chan struct{})}
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		if j.Interval <= 0 || j.Run == nil {
			r.log.Warn("skipping job without interval", zap.String("job", j.Name))
			continue
		}
		r.wg.Add(1)
		go r.loop(j)
		r.log.Info("job scheduled",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals all jobs to stop and waits for running ones to finish.
func (r *Runner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
	r.log.Info("job runner stopped")
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.RunOnce(j)
		}
	}
}

// RunOnce runs j with a timeout of one interval and logs its error.
func (r *Runner) RunOnce(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), j.Interval)
	defer cancel()

	err := j.Run(ctx)
	metrics.ObserveJob(j.Name, err)
	if err != nil {
		r.log.Error("job failed", zap.String("job", j.Name), zap.Error(err))
	}
}

// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/audit"
	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/enrolldesk/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Job is a function run on a fixed interval by a Runner.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// ViewStateSweepJob creates a job that drops expired snapshots from the
// in-memory view-state store. Redis expires keys on its own and needs no job.
func ViewStateSweepJob(mem *viewstate.MemoryStore, logger *zap.Logger) Job {
	return Job{
		Name:     "viewstate-sweep",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			if n := mem.Sweep(); n > 0 {
				logger.Debug("swept expired view state",
					zap.Int("removed", n),
					zap.Int("remaining", mem.Len()))
			}
			return nil
		},
	}
}

// PartialApprovalReportJob creates a job that warns about approvals which
// completed the payment but failed to update the user within the window.
// Those need an operator to fix the user by hand.
func PartialApprovalReportJob(store *audit.Store, logger *zap.Logger, window time.Duration) Job {
	return Job{
		Name:     "partial-approval-report",
		Interval: window,
		Run: func(ctx context.Context) error {
			events, err := store.GetPartialApprovals(ctx, time.Now().Add(-window), 50)
			if err != nil {
				return err
			}
			for _, ev := range events {
				logger.Warn("payment approved but user not updated",
					zap.String("payment_id", ev.PaymentID),
					zap.String("user_id", ev.UserID),
					zap.String("run_id", ev.RunID),
					zap.Time("at", ev.Timestamp))
			}
			return nil
		},
	}
}

// SignInSweepJob creates a job that drops expired sign-in throttle windows.
func SignInSweepJob(l *ratelimit.SignInLimiter, logger *zap.Logger) Job {
	return Job{
		Name:     "signin-throttle-sweep",
		Interval: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			if n := l.Sweep(); n > 0 {
				logger.Debug("swept sign-in throttle windows", zap.Int("removed", n))
			}
			return nil
		},
	}
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/resources"
	"github.com/dalemusser/enrolldesk/internal/app/system/ratelimit"
	"github.com/dalemusser/enrolldesk/internal/app/system/tasks"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// partialApprovalWindow is how far back the partial-approval report looks,
// and how often it runs.
const partialApprovalWindow = 15 * time.Minute

// Background workers started in Startup and stopped in Shutdown.
var (
	paymentFeed   *workers.PaymentFeed
	jobRunner     *tasks.Runner
	signInLimiter *ratelimit.SignInLimiter
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	signInLimiter = ratelimit.NewSignInLimiter()

	if jobs := backgroundJobs(deps, logger); len(jobs) > 0 {
		jobRunner = tasks.NewRunner(logger, jobs...)
		jobRunner.Start()
	}

	if appCfg.PollToken != "" {
		paymentFeed = workers.NewPaymentFeed(deps.Backend, appCfg.PollToken, logger, appCfg.PollInterval, timeouts.Medium())
		paymentFeed.Start()
	} else {
		logger.Info("payment feed disabled (no poll_token)")
	}

	return nil
}

// backgroundJobs lists the periodic jobs that apply to the configured stores.
func backgroundJobs(deps DBDeps, logger *zap.Logger) []tasks.Job {
	jobs := []tasks.Job{tasks.SignInSweepJob(signInLimiter, logger)}
	if deps.Memory != nil {
		jobs = append(jobs, tasks.ViewStateSweepJob(deps.Memory, logger))
	}
	if deps.Audit != nil {
		jobs = append(jobs, tasks.PartialApprovalReportJob(deps.Audit, logger, partialApprovalWindow))
	}
	return jobs
}

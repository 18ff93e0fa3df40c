// Command adminctl runs console operations against the enrollment backend
// from a terminal: the dashboard summary and the payment queue.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"github.com/dalemusser/enrolldesk/internal/app/system/auditlog"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"go.uber.org/zap"
)

// Globals are shared by every command.
type Globals struct {
	Backend string        `help:"Base URL of the enrollment backend." env:"ENROLLDESK_BACKEND_URL" default:"http://localhost:5000"`
	Token   string        `help:"Admin bearer token." env:"ENROLLDESK_ADMIN_TOKEN" required:""`
	Timeout time.Duration `help:"Timeout for a single backend request." env:"ENROLLDESK_BACKEND_TIMEOUT" default:"15s"`
	Debug   bool          `help:"Enable debug logging."`
}

var cli struct {
	Globals

	Version kong.VersionFlag `help:"Print the version and exit."`

	Dashboard dashboardCmd `cmd:"" help:"Show the dashboard summary."`
	Payments  struct {
		List    paymentsListCmd    `cmd:"" help:"List payments."`
		Approve paymentsApproveCmd `cmd:"" help:"Approve a pending payment and unlock its user."`
		Reject  paymentsRejectCmd  `cmd:"" help:"Reject a pending payment."`
		Watch   paymentsWatchCmd   `cmd:"" help:"Poll the payment list and print changes."`
	} `cmd:"" help:"Work the payment queue."`
}

// env is what every command's Run receives.
type env struct {
	Globals
	Client *backend.Client
	Log    *zap.Logger
	Ctx    context.Context
}

func main() {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		version = info.Main.Version
	}
	kctx := kong.Parse(&cli,
		kong.Name("adminctl"),
		kong.Description("EnrollDesk admin operations from the command line."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger := zap.NewNop()
	if cli.Debug {
		l, err := zap.NewDevelopment()
		kctx.FatalIfErrorf(err)
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	client, err := backend.New(cli.Backend, cli.Timeout)
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&env{Globals: cli.Globals, Client: client, Log: logger, Ctx: ctx})
	kctx.FatalIfErrorf(err)
}

// workflow builds the approval workflow. Approvals run from the terminal are
// audited to the log only.
func (e *env) workflow(approveStatus, notifyMessage string) (*approval.Workflow, error) {
	rec := auditlog.New(nil, e.Log, auditlog.Config{Auth: "off", Admin: "log"})
	return approval.New(e.Client, approveStatus, notifyMessage, rec, e.Log)
}

// payment fetches the payment list and returns the row with id.
func (e *env) payment(id string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(e.Ctx, e.Timeout)
	defer cancel()
	ps, err := e.Client.ListPayments(ctx, e.Token)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		if ps[i].ID.String() == id {
			return &ps[i], nil
		}
	}
	return nil, nil
}

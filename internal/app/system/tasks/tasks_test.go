package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/audit"
	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/enrolldesk/internal/app/system/tasks"
	"github.com/dalemusser/enrolldesk/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestViewStateSweepJob(t *testing.T) {
	mem := viewstate.NewMemory()
	ctx := context.Background()
	if err := mem.Set(ctx, "k1", "v", time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := mem.Set(ctx, "k2", "v", time.Hour); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	job := tasks.ViewStateSweepJob(mem, zap.NewNop())
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mem.Len() != 1 {
		t.Errorf("expected 1 entry after sweep, got %d", mem.Len())
	}
}

func TestRunner_RunsJobsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	r := tasks.NewRunner(zap.NewNop(), tasks.Job{
		Name:     "count",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	r.Start()
	time.Sleep(40 * time.Millisecond)
	r.Stop()

	n := runs.Load()
	if n == 0 {
		t.Fatal("expected job to run at least once")
	}
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != n {
		t.Error("job ran after Stop")
	}
}

func TestRunner_RunOnceLogsError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := tasks.NewRunner(zap.New(core))

	r.RunOnce(tasks.Job{
		Name:     "broken",
		Interval: time.Second,
		Run:      func(ctx context.Context) error { return errors.New("boom") },
	})

	if logs.Len() != 1 || logs.All()[0].ContextMap()["job"] != "broken" {
		t.Errorf("expected one error entry for the job, got %+v", logs.All())
	}
}

func TestPartialApprovalReportJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventPaymentApprovalPartial,
		PaymentID: "1",
		UserID:    "u1",
	}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	job := tasks.PartialApprovalReportJob(store, zap.New(core), time.Hour)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["payment_id"] != "1" {
		t.Errorf("expected one warning for payment 1, got %+v", logs.All())
	}
}

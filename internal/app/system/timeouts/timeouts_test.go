package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Medium: 3 * time.Second})

	if got := timeouts.Medium(); got != 3*time.Second {
		t.Errorf("Medium = %v, want 3s", got)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long = %v, want default %v", got, timeouts.DefaultLong)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Setenv("ENROLLDESK_TIMEOUT_PING", "500ms")
	t.Setenv("ENROLLDESK_TIMEOUT_LONG", "not-a-duration")
	t.Setenv("ENROLLDESK_TIMEOUT_BATCH", " 2m ")
	t.Setenv("ENROLLDESK_TIMEOUT_SHORT", "-1s")

	if n := timeouts.ConfigureFromEnv(); n != 2 {
		t.Errorf("configured %d values, want 2", n)
	}
	if got := timeouts.Batch(); got != 2*time.Minute {
		t.Errorf("Batch = %v, want 2m", got)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short = %v, want default", got)
	}
	if got := timeouts.Ping(); got != 500*time.Millisecond {
		t.Errorf("Ping = %v, want 500ms", got)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long = %v, want default", got)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Minute, Batch: time.Hour})
	timeouts.Reset()

	cur := timeouts.Current()
	if cur.Ping != timeouts.DefaultPing || cur.Batch != timeouts.DefaultBatch {
		t.Errorf("Current after Reset = %+v", cur)
	}
}

func TestWithTimeout_LogsOnlyDeadline(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, log, "approve payment")
	<-ctx.Done()
	cancel()

	ctx, cancel = timeouts.WithTimeout(context.Background(), time.Minute, log, "export payments")
	cancel()
	if ctx.Err() != context.Canceled {
		t.Errorf("ctx.Err() = %v, want Canceled", ctx.Err())
	}

	entries := logs.FilterMessage("operation timed out").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 timeout warning, got %d", len(entries))
	}
	if op := entries[0].ContextMap()["operation"]; op != "approve payment" {
		t.Errorf("operation = %v", op)
	}
}

func TestWithTimeout_NilLogger(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Nanosecond, nil, "noop")
	<-ctx.Done()
	cancel()
}

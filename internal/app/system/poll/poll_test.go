package poll_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/poll"
	"go.uber.org/zap"
)

func TestFetchNow_AppliesValue(t *testing.T) {
	p := poll.New("test", time.Hour, func(ctx context.Context) (int, error) {
		return 42, nil
	}, zap.NewNop())

	if _, ok := p.Latest(); ok {
		t.Fatal("expected no value before the first fetch")
	}
	snap, err := p.FetchNow(context.Background())
	if err != nil {
		t.Fatalf("FetchNow: %v", err)
	}
	if snap.Value != 42 || snap.Seq != 1 {
		t.Errorf("snap = %+v", snap)
	}
}

func TestFailureKeepsPreviousValue(t *testing.T) {
	fail := false
	p := poll.New("test", time.Hour, func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("down")
		}
		return "rows", nil
	}, zap.NewNop())

	p.FetchNow(context.Background())
	fail = true
	if _, err := p.FetchNow(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap, ok := p.Latest()
	if !ok || snap.Value != "rows" {
		t.Errorf("previous value lost: %+v %v", snap, ok)
	}
	if p.LastError() == nil {
		t.Error("LastError should report the failure")
	}
}

// A slow fetch started first that completes after a faster, later fetch
// still wins: completion order decides, not launch order.
func TestLastCompletionWins(t *testing.T) {
	releaseFirst := make(chan struct{})
	secondDone := make(chan struct{})
	firstDone := make(chan struct{})
	var n atomic.Int32

	p := poll.New("test", time.Hour, func(ctx context.Context) (string, error) {
		switch n.Add(1) {
		case 1:
			<-releaseFirst
			return "first", nil
		default:
			return "second", nil
		}
	}, zap.NewNop(), poll.OnUpdate(func(s poll.Snapshot[string]) {
		switch s.Value {
		case "first":
			close(firstDone)
		case "second":
			close(secondDone)
		}
	}))

	p.Trigger()
	// wait until the first fetch is running before launching the second
	for n.Load() < 1 {
		time.Sleep(time.Millisecond)
	}
	p.Trigger()
	<-secondDone

	snap, _ := p.Latest()
	if snap.Value != "second" {
		t.Fatalf("after second completes, value = %q", snap.Value)
	}

	close(releaseFirst)
	<-firstDone
	snap, _ = p.Latest()
	if snap.Value != "first" || snap.Seq != 1 {
		t.Errorf("last completion should win, got %+v", snap)
	}
}

func TestStartStop_Ticks(t *testing.T) {
	var calls atomic.Int32
	p := poll.New("test", 10*time.Millisecond, func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}, zap.NewNop())

	p.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	if calls.Load() < 3 {
		t.Errorf("expected at least 3 fetches, got %d", calls.Load())
	}
	if _, ok := p.Latest(); !ok {
		t.Error("expected a value after ticking")
	}
}

func TestDefaultInterval(t *testing.T) {
	if poll.DefaultInterval != 20*time.Second {
		t.Errorf("DefaultInterval = %v", poll.DefaultInterval)
	}
}

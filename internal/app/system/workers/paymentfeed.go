// internal/app/system/workers/paymentfeed.go
package workers

import (
	"context"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/metrics"
	"github.com/dalemusser/enrolldesk/internal/app/system/poll"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"go.uber.org/zap"
)

// PaymentLister is the part of the backend client the feed needs.
type PaymentLister interface {
	ListPayments(ctx context.Context, token string) ([]models.Payment, error)
}

// PaymentFeed is a background worker that re-fetches the payment list with a
// service token and keeps the latest result for the dashboard.
type PaymentFeed struct {
	poller *poll.Poller[[]models.Payment]
	log    *zap.Logger
	cancel context.CancelFunc
}

// FeedStatus summarizes the latest applied poll.
type FeedStatus struct {
	Pending int
	Total   int
	At      time.Time
}

// NewPaymentFeed creates a new payment feed worker.
//
// Parameters:
//   - lister: the backend client
//   - token: the service bearer token used for polling
//   - logger: zap logger for logging
//   - interval: how often to poll (e.g., 20 seconds)
//   - timeout: per-poll timeout
func NewPaymentFeed(lister PaymentLister, token string, logger *zap.Logger, interval, timeout time.Duration) *PaymentFeed {
	fetch := func(ctx context.Context) ([]models.Payment, error) {
		return lister.ListPayments(ctx, token)
	}
	f := &PaymentFeed{log: logger}
	f.poller = poll.New("payment-feed", interval, fetch, logger,
		poll.WithTimeout[[]models.Payment](timeout),
		poll.OnUpdate(func(s poll.Snapshot[[]models.Payment]) {
			metrics.SetPendingPayments(countPending(s.Value))
		}),
	)
	return f
}

// Start begins the background poll loop.
func (f *PaymentFeed) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.poller.Start(ctx)
	f.log.Info("payment feed worker started")
}

// Stop signals the worker to stop and waits for in-flight polls.
func (f *PaymentFeed) Stop() {
	f.poller.Stop()
	if f.cancel != nil {
		f.cancel()
	}
	f.log.Info("payment feed worker stopped")
}

// Status returns the latest counts. ok is false until a poll has succeeded.
func (f *PaymentFeed) Status() (FeedStatus, bool) {
	if f == nil {
		return FeedStatus{}, false
	}
	snap, ok := f.poller.Latest()
	if !ok {
		return FeedStatus{}, false
	}
	return FeedStatus{
		Pending: countPending(snap.Value),
		Total:   len(snap.Value),
		At:      snap.At,
	}, true
}

// Refresh polls immediately, outside the ticker. Handlers call it after a
// mutating action so the dashboard counter does not lag a full interval.
func (f *PaymentFeed) Refresh() {
	if f == nil {
		return
	}
	f.poller.Trigger()
}

func countPending(ps []models.Payment) int {
	n := 0
	for _, p := range ps {
		if p.EffectiveStatus() == models.PaymentPending {
			n++
		}
	}
	return n
}

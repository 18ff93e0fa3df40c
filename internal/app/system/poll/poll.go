// Package poll re-fetches a value on a fixed interval.
//
// Every tick starts a new fetch without cancelling fetches still in flight.
// Whichever fetch completes last replaces the current value, even if it was
// started earlier than the value it replaces. Failed fetches leave the
// current value alone.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/metrics"
	"go.uber.org/zap"
)

// DefaultInterval matches the payments table refresh.
const DefaultInterval = 20 * time.Second

// Snapshot is the current value and when it arrived.
type Snapshot[T any] struct {
	Value T
	At    time.Time
	// Seq is the launch number of the fetch that produced Value.
	Seq uint64
}

// Poller runs Fetch every Interval.
type Poller[T any] struct {
	name     string
	fetch    func(ctx context.Context) (T, error)
	interval time.Duration
	timeout  time.Duration
	onUpdate func(Snapshot[T])
	log      *zap.Logger

	mu       sync.Mutex
	current  Snapshot[T]
	has      bool
	launched uint64
	lastErr  error

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Poller.
type Option[T any] func(*Poller[T])

// WithTimeout bounds each fetch.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(p *Poller[T]) { p.timeout = d }
}

// OnUpdate registers a callback run after each applied fetch.
func OnUpdate[T any](fn func(Snapshot[T])) Option[T] {
	return func(p *Poller[T]) { p.onUpdate = fn }
}

// New creates a Poller. A non-positive interval uses DefaultInterval.
func New[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), logger *zap.Logger, opts ...Option[T]) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Poller[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		log:      logger,
		stopCh:   make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start launches one fetch immediately and then one per interval.
func (p *Poller[T]) Start(parent context.Context) {
	p.ctx, p.cancel = context.WithCancel(parent)
	p.wg.Add(1)
	go p.run()
	p.log.Info("poller started",
		zap.String("poller", p.name),
		zap.Duration("interval", p.interval))
}

// Stop ends the ticker, cancels in-flight fetches and waits for them.
func (p *Poller[T]) Stop() {
	close(p.stopCh)
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info("poller stopped", zap.String("poller", p.name))
}

func (p *Poller[T]) run() {
	defer p.wg.Done()

	p.Trigger()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Trigger()
		}
	}
}

// Trigger starts one fetch in the background.
func (p *Poller[T]) Trigger() {
	p.mu.Lock()
	p.launched++
	seq := p.launched
	p.mu.Unlock()

	base := p.ctx
	if base == nil {
		base = context.Background()
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOnce(base, seq)
	}()
}

// FetchNow runs one fetch synchronously and applies it like a tick would.
func (p *Poller[T]) FetchNow(ctx context.Context) (Snapshot[T], error) {
	p.mu.Lock()
	p.launched++
	seq := p.launched
	p.mu.Unlock()

	if err := p.runOnce(ctx, seq); err != nil {
		return Snapshot[T]{}, err
	}
	snap, _ := p.Latest()
	return snap, nil
}

func (p *Poller[T]) runOnce(parent context.Context, seq uint64) error {
	ctx := parent
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, p.timeout)
		defer cancel()
	}

	v, err := p.fetch(ctx)
	if err != nil {
		metrics.ObservePoll("failed")
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		p.log.Warn("poll fetch failed",
			zap.String("poller", p.name),
			zap.Uint64("seq", seq),
			zap.Error(err))
		return err
	}

	snap := Snapshot[T]{Value: v, At: time.Now(), Seq: seq}
	p.mu.Lock()
	if p.has && p.current.Seq > seq {
		metrics.ObservePoll("stale")
	} else {
		metrics.ObservePoll("applied")
	}
	p.current = snap
	p.has = true
	p.lastErr = nil
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
	return nil
}

// Latest returns the current value. ok is false until a fetch succeeds.
func (p *Poller[T]) Latest() (Snapshot[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.has
}

// LastError returns the error of the most recent completed fetch, or nil if
// it succeeded.
func (p *Poller[T]) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

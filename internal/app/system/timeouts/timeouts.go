// Package timeouts holds the request budgets handlers put on backend calls,
// view-state access and audit writes. The backend client carries its own
// per-request timeout underneath these.
//
//   - Ping: /health checks against the backend, Redis and MongoDB
//   - Short: one view-state read or write, one audit insert
//   - Medium: one backend listing or a single mutating call
//   - Long: a whole approval (payment update, user update, notification)
//   - Batch: the payments CSV export
//
// LoadConfig derives Medium and Long from backend_timeout; any value can be
// overridden with ENROLLDESK_TIMEOUT_<NAME>.
package timeouts

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 15 * time.Second
	DefaultLong   = 45 * time.Second
	DefaultBatch  = 60 * time.Second
)

const envPrefix = "ENROLLDESK_TIMEOUT_"

type slot int

const (
	ping slot = iota
	short
	medium
	long
	batch
	numSlots
)

var names = [numSlots]string{"ping", "short", "medium", "long", "batch"}

var defaults = [numSlots]time.Duration{DefaultPing, DefaultShort, DefaultMedium, DefaultLong, DefaultBatch}

var (
	mu      sync.RWMutex
	current = defaults
)

func get(s slot) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return current[s]
}

func Ping() time.Duration   { return get(ping) }
func Short() time.Duration  { return get(short) }
func Medium() time.Duration { return get(medium) }
func Long() time.Duration   { return get(long) }
func Batch() time.Duration  { return get(batch) }

// Config holds timeout values. Zero fields leave the current value alone.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

func (c Config) slots() [numSlots]time.Duration {
	return [numSlots]time.Duration{c.Ping, c.Short, c.Medium, c.Long, c.Batch}
}

func fromSlots(v [numSlots]time.Duration) Config {
	return Config{Ping: v[ping], Short: v[short], Medium: v[medium], Long: v[long], Batch: v[batch]}
}

// Configure applies the positive values of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for i, d := range cfg.slots() {
		if d > 0 {
			current[i] = d
		}
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults
}

// ConfigureFromEnv applies ENROLLDESK_TIMEOUT_PING .. _BATCH. Unset, invalid
// or non-positive durations are skipped. It returns how many were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	n := 0
	for i, name := range names {
		v := strings.TrimSpace(os.Getenv(envPrefix + strings.ToUpper(name)))
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			current[i] = d
			n++
		}
	}
	return n
}

// Current returns the values in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return fromSlots(current)
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline, not the caller, ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}

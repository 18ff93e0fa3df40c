// Package loader fetches listing data from the backend once per visit and
// serves later section activations from the stored snapshot.
//
// A visit is one signed-in session. The first activation of a section within
// a visit calls the backend; later activations reuse the snapshot until the
// operator asks for a refresh or a mutating action invalidates it. Failed
// fetches are logged and never retried; the previous snapshot, if any, stays
// in place.
package loader

import (
	"context"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/enrolldesk/internal/app/system/metrics"
	"go.uber.org/zap"
)

// FetchFunc loads one listing. variant selects a filtered form of the
// listing (e.g. an application status); most listings ignore it.
type FetchFunc[T any] func(ctx context.Context, token, variant string) (T, error)

// Snapshot is what is stored for a visit.
type Snapshot[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Result describes one Load.
type Result[T any] struct {
	Data T
	// Loaded is true when Data holds a snapshot (fresh or reused).
	Loaded bool
	// Fresh is true when Data was fetched during this call.
	Fresh     bool
	FetchedAt time.Time
	// Err is the fetch failure of this call, if any. A failure with a prior
	// snapshot still returns that snapshot.
	Err error
}

// Loader is one listing's loader.
type Loader[T any] struct {
	Name  string
	Fetch FetchFunc[T]
	Store viewstate.Store
	TTL   time.Duration
	// Variants lists the non-empty variant names, so Invalidate can drop all
	// of them.
	Variants []string
	Log      *zap.Logger

	now func() time.Time
}

// New creates a Loader.
func New[T any](name string, fetch FetchFunc[T], store viewstate.Store, ttl time.Duration, logger *zap.Logger) *Loader[T] {
	return &Loader[T]{Name: name, Fetch: fetch, Store: store, TTL: ttl, Log: logger, now: time.Now}
}

// WithVariants records the variants this listing may be loaded with.
func (l *Loader[T]) WithVariants(v ...string) *Loader[T] {
	l.Variants = v
	return l
}

func (l *Loader[T]) key(visit, variant string) string {
	return viewstate.Key("snap", visit, l.Name, variant)
}

// Load returns the listing for the visit. refresh forces a backend call even
// when a snapshot exists.
func (l *Loader[T]) Load(ctx context.Context, visit, token, variant string, refresh bool) Result[T] {
	var prior Snapshot[T]
	hasPrior := false
	if l.Store != nil && visit != "" {
		ok, err := l.Store.Get(ctx, l.key(visit, variant), &prior)
		if err != nil {
			l.Log.Warn("snapshot read failed",
				zap.String("listing", l.Name), zap.Error(err))
		}
		hasPrior = ok
	}

	if hasPrior && !refresh {
		metrics.ObserveLoad(l.Name, "snapshot")
		return Result[T]{Data: prior.Data, Loaded: true, FetchedAt: prior.FetchedAt}
	}

	data, err := l.Fetch(ctx, token, variant)
	if err != nil {
		metrics.ObserveLoad(l.Name, "failed")
		l.Log.Error("listing load failed",
			zap.String("listing", l.Name),
			zap.String("variant", variant),
			zap.Error(err))
		if hasPrior {
			return Result[T]{Data: prior.Data, Loaded: true, FetchedAt: prior.FetchedAt, Err: err}
		}
		return Result[T]{Err: err}
	}

	metrics.ObserveLoad(l.Name, "backend")
	snap := Snapshot[T]{Data: data, FetchedAt: l.clock()}
	if l.Store != nil && visit != "" {
		if err := l.Store.Set(ctx, l.key(visit, variant), snap, l.TTL); err != nil {
			l.Log.Warn("snapshot write failed",
				zap.String("listing", l.Name), zap.Error(err))
		}
	}
	return Result[T]{Data: data, Loaded: true, Fresh: true, FetchedAt: snap.FetchedAt}
}

// Peek returns the stored snapshot without calling the backend.
func (l *Loader[T]) Peek(ctx context.Context, visit, variant string) (Snapshot[T], bool) {
	var snap Snapshot[T]
	if l.Store == nil || visit == "" {
		return snap, false
	}
	ok, err := l.Store.Get(ctx, l.key(visit, variant), &snap)
	if err != nil {
		l.Log.Warn("snapshot read failed", zap.String("listing", l.Name), zap.Error(err))
		return snap, false
	}
	return snap, ok
}

// Put replaces the visit's snapshot, e.g. with rows a poll just fetched.
func (l *Loader[T]) Put(ctx context.Context, visit, variant string, data T) error {
	if l.Store == nil || visit == "" {
		return nil
	}
	return l.Store.Set(ctx, l.key(visit, variant), Snapshot[T]{Data: data, FetchedAt: l.clock()}, l.TTL)
}

// Invalidate drops every variant of the visit's snapshot so the next
// activation fetches again.
func (l *Loader[T]) Invalidate(ctx context.Context, visit string) {
	if l.Store == nil || visit == "" {
		return
	}
	keys := []string{l.key(visit, "")}
	for _, v := range l.Variants {
		keys = append(keys, l.key(visit, v))
	}
	if err := l.Store.Delete(ctx, keys...); err != nil {
		l.Log.Warn("snapshot invalidate failed", zap.String("listing", l.Name), zap.Error(err))
	}
}

func (l *Loader[T]) clock() time.Time {
	if l.now == nil {
		return time.Now()
	}
	return l.now()
}

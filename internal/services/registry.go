package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"washops/internal/domain"
	"washops/internal/metrics"
	"washops/internal/utils"
)

// Registry is the polled, cached view of every order in the started state.
// The cached set is replaced wholesale on refresh and never mutated in place;
// consumers read copies. Refreshes already in flight absorb later requests
// instead of issuing parallel fetches. Recurring polling is the caller's job
// (a ticker in main); the registry only knows Refresh, Invalidate, Snapshot,
// Subscribe.
type Registry struct {
	Ledger   Ledger
	Recorder metrics.Recorder

	// PollInterval drives the staleness window: a snapshot younger than half
	// of it skips the network round trip.
	PollInterval time.Duration

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	set       map[string]domain.Order
	fetchedAt time.Time
	inflight  chan struct{}
	gen       int
	lastErr   error
	listeners []func()
}

// ActiveWash is one registry entry dressed with elapsed-time classification.
type ActiveWash struct {
	domain.Order
	ElapsedMinutes int                  `json:"elapsed_minutes"`
	Class          domain.DurationClass `json:"duration_class"`
	LongRunning    bool                 `json:"long_running"`
}

// Subscribe registers a change listener fired after every successful refresh.
func (r *Registry) Subscribe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Refresh replaces the whole set from the ledger. A call that finds another
// refresh in flight waits for that one and shares its result, unless an
// Invalidate bumped the generation meanwhile; a fetch from an old generation
// is discarded and a new one issued, so a known change can never be papered
// over by a fetch that started before it.
func (r *Registry) Refresh(ctx context.Context) error {
	for {
		r.mu.Lock()
		gen := r.gen
		if r.inflight != nil {
			done := r.inflight
			r.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			r.mu.Lock()
			err := r.lastErr
			superseded := r.gen != gen
			r.mu.Unlock()
			if superseded {
				continue
			}
			return err
		}
		done := make(chan struct{})
		r.inflight = done
		r.mu.Unlock()

		orders, err := r.Ledger.ListActive(ctx)

		r.mu.Lock()
		applied := r.gen == gen
		var notify []func()
		if err == nil && applied {
			set := make(map[string]domain.Order, len(orders))
			for _, o := range orders {
				if o.Status == domain.OrderStarted {
					set[o.ID] = o
				}
			}
			r.set = set
			r.fetchedAt = r.now()
			notify = append(notify, r.listeners...)
		}
		if applied {
			r.lastErr = err
		}
		r.inflight = nil
		close(done)
		size := len(r.set)
		r.mu.Unlock()

		if !applied {
			continue
		}

		rec := metrics.OrNop(r.Recorder)
		rec.RegistryRefresh(size, err != nil)
		if err == nil {
			rec.ActiveWashes(size)
		} else {
			utils.LogEvent("", "registry", "refresh", "ledger failure: "+err.Error())
		}
		for _, fn := range notify {
			fn()
		}
		return err
	}
}

// Invalidate forces an immediate out-of-cadence refresh after a confirmed
// start or end, so the cached set never outlives a known change. Bumping the
// generation invalidates any fetch already in flight; its result predates the
// change and must not be re-cached as current.
func (r *Registry) Invalidate(ctx context.Context) error {
	r.mu.Lock()
	r.gen++
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
	return r.Refresh(ctx)
}

// Remove drops one order optimistically after a confirmed end, ahead of the
// refresh catching up.
func (r *Registry) Remove(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.set, orderID)
}

// Snapshot returns the active washes, refreshing first when the cache is
// older than half the poll interval. The returned slice is a copy sorted by
// start time, oldest first.
func (r *Registry) Snapshot(ctx context.Context) ([]ActiveWash, error) {
	r.mu.Lock()
	fresh := !r.fetchedAt.IsZero() && r.now().Sub(r.fetchedAt) < r.freshWindow()
	r.mu.Unlock()

	if !fresh {
		if err := r.Refresh(ctx); err != nil {
			r.mu.Lock()
			empty := r.fetchedAt.IsZero()
			r.mu.Unlock()
			if empty {
				return nil, err
			}
			// serve the stale set rather than nothing; the poll driver retries
		}
	}
	return r.cachedSnapshot(), nil
}

// Count returns the size of the cached set without touching the network.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.set)
}

// LongRunning lists cached washes past the attention threshold.
func (r *Registry) LongRunning() []ActiveWash {
	out := []ActiveWash{}
	for _, w := range r.cachedSnapshot() {
		if w.LongRunning {
			out = append(out, w)
		}
	}
	return out
}

func (r *Registry) cachedSnapshot() []ActiveWash {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	out := make([]ActiveWash, 0, len(r.set))
	for _, o := range r.set {
		var elapsed time.Duration
		if o.StartedAt != nil {
			elapsed = now.Sub(*o.StartedAt)
		}
		out = append(out, ActiveWash{
			Order:          o,
			ElapsedMinutes: int(elapsed.Minutes()),
			Class:          domain.ClassifyDuration(elapsed),
			LongRunning:    elapsed >= domain.LongRunningThreshold,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].StartedAt, out[j].StartedAt
		if a == nil || b == nil {
			return out[i].ID < out[j].ID
		}
		if a.Equal(*b) {
			return out[i].ID < out[j].ID
		}
		return a.Before(*b)
	})
	return out
}

func (r *Registry) freshWindow() time.Duration {
	if r.PollInterval <= 0 {
		return 15 * time.Second
	}
	return r.PollInterval / 2
}

func (r *Registry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

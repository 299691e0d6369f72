// FilePath: internal/throttle/throttle.go
package throttle

import (
	"context"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Record tracks one source's request count inside the current fixed window
type Record struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}

// Store holds per-source throttle records. Implementations must tolerate
// concurrent Limiter instances only when they share one Limiter; the Limiter
// serializes access to the store itself.
type Store interface {
	Get(ctx context.Context, source string) (Record, bool, error)
	Put(ctx context.Context, source string, rec Record, ttl time.Duration) error
}

// Limiter is a fixed-window request counter keyed by source identifier.
// State lives for the process (or the store's) lifetime only; a restart
// resets all throttling. A call that would exceed the ceiling is rejected
// without incrementing the counter, so rejected traffic never extends the
// penalty.
type Limiter struct {
	mu     sync.Mutex
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a limiter over the given store. The now function is
// injectable so tests can advance a fake clock; pass nil for wall-clock time.
func NewLimiter(store Store, limit int, window time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Allow reports whether a request from source may proceed, counting it if so.
// On the first request from a source, or after window expiry, the record
// resets to count=1 atomically. Store failures fail open: throttling is a
// guard, not a correctness boundary.
func (l *Limiter) Allow(ctx context.Context, source string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok, err := l.store.Get(ctx, source)
	if err != nil {
		nuts.L.Warnf("[Throttle] store get failed for %s: %v", source, err)
		return true
	}

	if !ok || now.Sub(rec.WindowStart) > l.window {
		rec = Record{Count: 1, WindowStart: now}
		if err := l.store.Put(ctx, source, rec, l.window); err != nil {
			nuts.L.Warnf("[Throttle] store put failed for %s: %v", source, err)
		}
		return true
	}

	if rec.Count >= l.limit {
		return false
	}

	rec.Count++
	if err := l.store.Put(ctx, source, rec, l.window); err != nil {
		nuts.L.Warnf("[Throttle] store put failed for %s: %v", source, err)
	}
	return true
}

// MemoryStore keeps throttle records in a plain map. Records are overwritten
// on window rollover and never deleted; unbounded growth across distinct
// sources is an accepted limitation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(_ context.Context, source string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[source]
	return rec, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, source string, rec Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[source] = rec
	return nil
}

package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter держит token bucket на каждый ключ: max запросов сразу,
// дальше пополнение со скоростью max/window. Для одного инстанса без Redis.
type MemoryLimiter struct {
	visitors sync.Map
	rps      rate.Limit
	burst    int
	ttl      time.Duration
}

type visitor struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		rps:   rate.Limit(float64(max) / window.Seconds()),
		burst: max,
		ttl:   window,
	}
}

func (l *MemoryLimiter) get(key string, now time.Time) *visitor {
	v, _ := l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.rps, l.burst)})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = now
	vi.mu.Unlock()
	return vi
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := time.Now()
	vi := l.get(key, now)

	d := Decision{Limit: l.burst}
	r := vi.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		d.RetryAfter = delay
	} else {
		d.Allowed = true
	}
	d.Remaining = int(math.Max(0, math.Floor(vi.limiter.TokensAt(now))))
	return d, nil
}

// Cleanup удаляет ключи, которые не появлялись дольше окна. Работает до отмены ctx.
func (l *MemoryLimiter) Cleanup(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			cutoff := now.Add(-l.ttl)
			l.visitors.Range(func(k, v interface{}) bool {
				vi := v.(*visitor)
				vi.mu.Lock()
				stale := vi.lastSeen.Before(cutoff)
				vi.mu.Unlock()
				if stale {
					l.visitors.Delete(k)
				}
				return true
			})
		}
	}
}

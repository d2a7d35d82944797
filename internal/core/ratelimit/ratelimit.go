// Package ratelimit 按 key（用户 ID 或来源 IP）限制请求频率
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisWindow 多实例共享的固定窗口计数
type RedisWindow struct {
	RDB    *redis.Client
	Prefix string
	Window time.Duration
	Max    int64
}

func NewRedisWindow(addr, pass string, db int, window time.Duration, max int64) *RedisWindow {
	if window < time.Second {
		window = time.Second
	}
	return &RedisWindow{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "market:rl:",
		Window: window,
		Max:    max,
	}
}

func (w *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().Unix() / int64(w.Window/time.Second)
	k := w.Prefix + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := w.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, w.Window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= w.Max, nil
}

func (w *RedisWindow) Close() error { return w.RDB.Close() }

// Local 单实例令牌桶，redis 未配置时使用
type Local struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	buckets   map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewLocal(rps rate.Limit, burst int) *Local {
	idle := time.Minute
	if rps > 0 && rps != rate.Inf {
		if full := time.Duration(float64(burst) / float64(rps) * float64(time.Second)); full > idle {
			idle = full
		}
	}
	return &Local{
		rps:       rps,
		burst:     burst,
		idle:      idle,
		now:       time.Now,
		lastSweep: time.Now(),
		buckets:   make(map[string]*bucket),
	}
}

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()
	return b.lim.Allow(), nil
}

// sweep 空闲超过回满时间的桶与新建的桶等价，直接丢弃
func (l *Local) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.seen) >= l.idle {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

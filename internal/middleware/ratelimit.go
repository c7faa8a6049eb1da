package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

// bucket is a token bucket refilled in whole windows.
type bucket struct {
	tokens   int
	refilled time.Time
}

// take spends one token, first crediting capacity tokens for every full window since the
// last refill. Tokens never exceed capacity.
func (b *bucket) take(now time.Time, capacity int, window time.Duration) bool {
	if n := int(now.Sub(b.refilled) / window); n > 0 {
		b.tokens = min(b.tokens+n*capacity, capacity)
		b.refilled = b.refilled.Add(time.Duration(n) * window)
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

type visitor struct {
	conns int
	msgs  bucket
}

// IPRateLimiter caps open connections and message rate per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time

	maxConnsPerIP int
	msgRate       int
	msgWindow     time.Duration
}

// NewIPRateLimiter allows maxConnsPerIP concurrent connections and msgRate messages per
// msgWindow for each IP. Idle entries are swept until ctx is done.
func NewIPRateLimiter(ctx context.Context, maxConnsPerIP, msgRate int, msgWindow time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors:      make(map[string]*visitor),
		now:           time.Now,
		maxConnsPerIP: maxConnsPerIP,
		msgRate:       msgRate,
		msgWindow:     msgWindow,
	}
	go rl.cleanup(ctx)
	return rl
}

// visitor returns the entry for ip, creating one with a full bucket. Caller holds mu.
func (rl *IPRateLimiter) visitor(ip string) *visitor {
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{msgs: bucket{tokens: rl.msgRate, refilled: rl.now()}}
		rl.visitors[ip] = v
	}
	return v
}

// ConnectAllowed reserves a connection slot for ip. A true result must be paired with
// Disconnect.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v := rl.visitor(ip)
	if v.conns >= rl.maxConnsPerIP {
		return false
	}
	v.conns++
	return true
}

func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok && v.conns > 0 {
		v.conns--
	}
}

// Connections returns the open connection count for ip.
func (rl *IPRateLimiter) Connections(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.visitors[ip]; ok {
		return v.conns
	}
	return 0
}

// MessageAllowed spends one message token for ip.
func (rl *IPRateLimiter) MessageAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.visitor(ip).msgs.take(rl.now(), rl.msgRate, rl.msgWindow)
}

// sweep forgets IPs with no open connection.
func (rl *IPRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if v.conns == 0 {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *IPRateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-ctx.Done():
			return
		}
	}
}

// RealIP is the client address: the first X-Forwarded-For hop when a proxy set one,
// otherwise the host part of RemoteAddr.
func RealIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

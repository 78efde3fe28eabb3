package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/isdelr/taskhub-be/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// fixedWindowLua increments the counter and arms its expiry in one step. A key
// left without a TTL is re-armed on the next hit.
const fixedWindowLua = `
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`

// Limiter is a fixed-window request counter stored in Redis, shared by every instance of the service.
type Limiter struct {
	rdb        *redis.Client
	script     *redis.Script
	prefix     string
	limit      int64
	window     time.Duration
	trustProxy bool
}

// New creates a Limiter allowing limit requests per window for each key.
func New(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	if prefix == "" {
		prefix = "taskhub:ratelimit"
	}
	return &Limiter{
		rdb:    rdb,
		script: redis.NewScript(fixedWindowLua),
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// TrustProxy makes the limiter key clients by the forwarded address instead of the TCP peer.
// Enable it only when the service sits behind a proxy that sets X-Forwarded-For.
func (l *Limiter) TrustProxy(trust bool) *Limiter {
	if l != nil {
		l.trustProxy = trust
	}
	return l
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return true, nil
	}

	k := fmt.Sprintf("%s:%s", l.prefix, key)
	count, err := l.script.Run(ctx, l.rdb, []string{k}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return count <= l.limit, nil
}

// Middleware rejects clients over the limit with 429. Redis failures let the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.clientKey(r)
		allowed, err := l.Allow(r.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("client", key).Msg("Rate limiter unavailable, allowing request")
		}
		if !allowed {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"message": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type peerAddrKey struct{}

// CapturePeer records the TCP peer address before any middleware rewrites RemoteAddr
// from forwarding headers. Mount it ahead of middleware.RealIP.
func CapturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerAddrKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (l *Limiter) clientKey(r *http.Request) string {
	addr := r.RemoteAddr
	if !l.trustProxy {
		if peer, ok := r.Context().Value(peerAddrKey{}).(string); ok && peer != "" {
			addr = peer
		}
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

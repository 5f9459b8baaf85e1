package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 5 * time.Minute

type ipLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	l.cleanup()
	return actual.(*rate.Limiter)
}

// cleanup drops limiters whose bucket has refilled, i.e. idle clients.
func (l *ipLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCleanup) < limiterCleanupInterval {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitByIP allows requests per window per client IP, all available as a
// burst. Excess requests get 429. trustProxy is passed through to ClientIP.
func RateLimitByIP(requests int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	l := &ipLimiter{
		limit:       rate.Limit(float64(requests) / window.Seconds()),
		burst:       requests,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r, trustProxy)
			limiter := l.get(ip)
			if !limiter.Allow() {
				res := limiter.Reserve()
				delay := res.Delay()
				res.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(max(int(delay.Seconds()), 1)))
				log.WithFields(log.Fields{"ip": ip, "path": r.URL.Path}).Warn("Rate limit exceeded")
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the socket peer address. Proxy headers are honoured only
// when trustProxy is set, since any client can send them.
func ClientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return remoteIP(r)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return remoteIP(r)
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

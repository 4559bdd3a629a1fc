package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter mantém um token bucket por chave e descarta os ociosos.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	maxAge time.Duration
	now    func() time.Time

	mu    sync.Mutex
	store map[string]*limiterEntry
}

type limiterEntry struct {
	limiter *rate.Limiter
	updated time.Time
}

// NewRateLimiter cria o limitador compartilhado entre as chaves.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:  rate.Limit(reqPerSec),
		burst:  burst,
		maxAge: 10 * time.Minute,
		now:    time.Now,
		store:  make(map[string]*limiterEntry),
	}
}

// allow consome um token da chave e, quando esgotado, informa a espera.
func (r *RateLimiter) allow(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.store[key]
	if !ok {
		r.evict(now)
		entry = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.store[key] = entry
	}
	entry.updated = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}
	res := entry.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return false, wait
}

func (r *RateLimiter) evict(now time.Time) {
	for k, entry := range r.store {
		if now.Sub(entry.updated) > r.maxAge {
			delete(r.store, k)
		}
	}
}

// LimitByKey aplica o limite à chave extraída da requisição. Sem chave, passa.
func (r *RateLimiter) LimitByKey(next http.Handler, keyFunc func(*http.Request) (string, bool)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key, ok := keyFunc(req)
		if !ok || key == "" {
			next.ServeHTTP(w, req)
			return
		}

		if allowed, wait := r.allow(key); !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Max(1, math.Ceil(wait.Seconds())))))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Limite de requisições excedido")
			return
		}

		next.ServeHTTP(w, req)
	})
}

// IPRateLimit usa o IP de origem como chave.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			return "ip:" + realIPFromRequest(r), true
		})
	}
}

// UserRateLimit usa o usuário autenticado como chave.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			subject := GetSubject(r.Context())
			return "usr:" + subject, subject != ""
		})
	}
}

func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package leaderboardhandlers

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RelicDragon/bandeja-sub007/pkg/authjwt"
	"golang.org/x/time/rate"
)

// Idle buckets are dropped by a sweep that runs at most once per sweepEvery.
const (
	sweepEvery = time.Minute
	idleTTL    = 10 * time.Minute
)

type bucket struct {
	*rate.Limiter
	touched time.Time
}

// ClientLimiter throttles leaderboard reads per remote address.
type ClientLimiter struct {
	limit rate.Limit
	burst int
	clock func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		limit:   limit,
		burst:   burst,
		clock:   time.Now,
		buckets: map[string]*bucket{},
	}
}

// Reserve takes a token for client. When none is available it returns false and the wait
// until the next token.
func (c *ClientLimiter) Reserve(client string) (bool, time.Duration) {
	c.mu.Lock()
	now := c.clock()
	if !now.Before(c.nextSweep) {
		c.sweep(now)
	}
	b, ok := c.buckets[client]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(c.limit, c.burst)}
		c.buckets[client] = b
	}
	b.touched = now
	c.mu.Unlock()

	res := b.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// sweep must be called with mu held.
func (c *ClientLimiter) sweep(now time.Time) {
	for client, b := range c.buckets {
		if now.Sub(b.touched) > idleTTL {
			delete(c.buckets, client)
		}
	}
	c.nextSweep = now.Add(sweepEvery)
}

func (c *ClientLimiter) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Throttle answers 429 with a Retry-After header once a client has spent its burst.
func Throttle(limiter *ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Reserve(remoteHost(r))
			if !ok {
				if wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				}
				writeError(w, http.StatusTooManyRequests, "too many leaderboard requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type viewerKey struct{}

// ViewerFromContext returns the authenticated user id, or "" for anonymous requests.
func ViewerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(viewerKey{}).(string)
	return id
}

// OptionalAuthMiddleware resolves the viewer from a Bearer token. Requests without a token pass
// through anonymously; an invalid token is rejected with 401.
func OptionalAuthMiddleware(tokens authjwt.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), viewerKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

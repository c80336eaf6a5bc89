package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/gqlrequest"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/observability"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Rate limit budgets.
const (
	BudgetQuery    = "query"
	BudgetMutation = "mutation"
)

const defaultMaxClients = 10000

// RateLimitConfig gives every client QueryMax queries and MutationMax
// mutations per Window. A budget of zero or less is unlimited.
type RateLimitConfig struct {
	Enabled           bool
	Window            time.Duration
	QueryMax          int
	MutationMax       int
	MaxClients        int
	TrustForwardedFor bool
	MaxBodyBytes      int64
}

type clientLimiters struct {
	query    *rate.Limiter
	mutation *rate.Limiter
}

// RateLimiter tracks per-client budgets in a bounded LRU. The least recently
// seen client is forgotten once MaxClients is reached.
type RateLimiter struct {
	cfg     RateLimitConfig
	clients *lru.Cache[string, *clientLimiters]
	metrics *observability.SecurityMetrics
	now     func() time.Time
}

// NewRateLimiter builds a limiter. metrics may be nil.
func NewRateLimiter(cfg RateLimitConfig, metrics *observability.SecurityMetrics) (*RateLimiter, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = defaultMaxClients
	}
	rl := &RateLimiter{cfg: cfg, metrics: metrics, now: time.Now}
	clients, err := lru.NewWithEvict[string, *clientLimiters](cfg.MaxClients, func(string, *clientLimiters) {
		if rl.metrics != nil {
			rl.metrics.ClientTracked(context.Background(), -1)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create rate limit cache: %w", err)
	}
	rl.clients = clients
	return rl, nil
}

func (rl *RateLimiter) newLimiter(max int) *rate.Limiter {
	if max <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(rl.cfg.Window/time.Duration(max)), max)
}

func (rl *RateLimiter) limitersFor(client string) *clientLimiters {
	if l, ok := rl.clients.Get(client); ok {
		return l
	}
	fresh := &clientLimiters{query: rl.newLimiter(rl.cfg.QueryMax), mutation: rl.newLimiter(rl.cfg.MutationMax)}
	if prev, found, _ := rl.clients.PeekOrAdd(client, fresh); found {
		return prev
	}
	if rl.metrics != nil {
		rl.metrics.ClientTracked(context.Background(), 1)
	}
	return fresh
}

// Allow takes one token from client's budget. When the budget is spent it
// returns false and how long until the next token.
func (rl *RateLimiter) Allow(client, budget string) (bool, time.Duration) {
	l := rl.limitersFor(client)
	lim := l.query
	if budget == BudgetMutation {
		lim = l.mutation
	}

	now := rl.now()
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, rl.cfg.Window
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// budgetFor charges mutations, and documents that cannot be analyzed, to the
// mutation budget.
func budgetFor(a *gqlrequest.Analysis) string {
	if !a.Parsed() || a.IsMutation() {
		return BudgetMutation
	}
	return BudgetQuery
}

// Middleware analyzes the GraphQL request, charges the caller's budget and
// rejects over-budget requests with 429. The analysis is left in the context
// for the rest of the chain.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := gqlrequest.FromContext(r.Context())
		if a == nil {
			a = gqlrequest.Analyze(r, rl.cfg.MaxBodyBytes)
			r = r.WithContext(gqlrequest.WithAnalysis(r.Context(), a))
		}
		// Requests without a document (GraphiQL page loads, empty POSTs) execute
		// nothing and are not charged. Bodies that failed to decode still are.
		if errors.Is(a.Err, gqlrequest.ErrMissingQuery) {
			next.ServeHTTP(w, r)
			return
		}

		client := clientKey(r, rl.cfg.TrustForwardedFor)
		budget := budgetFor(a)
		ok, retryAfter := rl.Allow(client, budget)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimited(r.Context(), budget)
		}
		logging.FromContext(r.Context()).Warn("rate limit exceeded",
			"client", client,
			"budget", budget,
			"retry_after", retryAfter.String(),
		)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		writeGraphQLError(w, apperr.RateLimited(rateLimitMessage(budget)))
	})
}

func rateLimitMessage(budget string) string {
	if budget == BudgetMutation {
		return "Too many mutations from this client, please try again later"
	}
	return "Too many requests from this client, please try again later"
}

// RateLimitMiddleware returns a pass-through handler when cfg is disabled.
func RateLimitMiddleware(cfg RateLimitConfig, metrics *observability.SecurityMetrics) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	rl, err := NewRateLimiter(cfg, metrics)
	if err != nil {
		return nil, err
	}
	return rl.Middleware, nil
}

func clientKey(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

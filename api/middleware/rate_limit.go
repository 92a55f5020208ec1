package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/harborline/shipline-backend/api/responses"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
	"github.com/harborline/shipline-backend/pkg/metrics"
	"github.com/harborline/shipline-backend/pkg/ratelimit"
)

// RateLimitPolicy defines the throttling parameters for a traffic surface.
type RateLimitPolicy struct {
	Name    string
	Window  time.Duration
	Limit   int
	Code    pkgerrors.Code
	Message string
	// SkipSuccessful removes hits for responses below 400 from the window.
	SkipSuccessful bool
	// ExemptLoopback lets 127.0.0.1 and ::1 through unmetered.
	ExemptLoopback bool
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

func (p RateLimitPolicy) normalizedName() string {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return "general"
	}
	return name
}

func (p RateLimitPolicy) key(ip string) string {
	return fmt.Sprintf("%s:%s", p.normalizedName(), ip)
}

func (p RateLimitPolicy) code() pkgerrors.Code {
	if p.Code == "" {
		return pkgerrors.CodeTooManyRequests
	}
	return p.Code
}

// RateLimitOptions carries the shared collaborators of every policy.
type RateLimitOptions struct {
	Store   ratelimit.Store
	Metrics *metrics.HTTPMetrics
	Now     func() time.Time
}

// RateLimit enforces a sliding-window limit per client address. Store
// failures let the request through with a warning.
func RateLimit(policy RateLimitPolicy, opts RateLimitOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		if !policy.enabled() || opts.Store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			if policy.ExemptLoopback && isLoopback(ip) {
				next.ServeHTTP(w, r)
				return
			}

			key := policy.key(ip)
			current := now()
			entry, err := opts.Store.Record(ctx, key, current, policy.Window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy": policy.normalizedName(),
						"error":  err.Error(),
					}), "rate_limit.store_unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}

			remaining := policy.Limit - entry.Count
			if remaining < 0 {
				remaining = 0
			}
			resetSeconds := int(entry.ResetAt.Sub(current).Round(time.Second).Seconds())
			if resetSeconds < 1 {
				resetSeconds = 1
			}
			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(policy.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(resetSeconds))

			if entry.Count > policy.Limit {
				// rejected hits do not extend the block
				forget(ctx, opts.Store, key, entry.ID, logg)
				h.Set("Retry-After", strconv.Itoa(resetSeconds))
				opts.Metrics.IncRateLimited(policy.normalizedName())
				respondRateLimited(ctx, logg, w, policy, ip, entry.Count)
				return
			}

			if !policy.SkipSuccessful {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.Status() < http.StatusBadRequest {
				forget(ctx, opts.Store, key, entry.ID, logg)
			}
		})
	}
}

func forget(ctx context.Context, store ratelimit.Store, key, id string, logg *logger.Logger) {
	if err := store.Forget(ctx, key, id); err != nil && logg != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "rate_limit.forget_failed")
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, ip string, count int) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"policy":         policy.normalizedName(),
			"ip":             ip,
			"attempts":       count,
			"limit":          policy.Limit,
			"window_seconds": int(policy.Window.Seconds()),
		})
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	message := policy.Message
	if message == "" {
		message = pkgerrors.MetadataFor(policy.code()).PublicMessage
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(policy.code(), message))
}

// clientIP is the socket peer; RealIP has already resolved forwarded
// addresses when the service runs behind trusted proxies.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	return remoteHost(r.RemoteAddr)
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

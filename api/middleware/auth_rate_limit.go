package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/bookstore/api/responses"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
)

// RateLimiterStore counts attempts in a fixed window. *redis.Client satisfies it.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one user endpoint (login or register) per client IP
// and per submitted email. A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// attempt is one counter a request is charged against. Subject is the IP or
// the hashed email, never the raw address.
type attempt struct {
	kind    string
	subject string
	limit   int
}

func (a attempt) scope(policy string) string {
	return a.kind + ":" + policy + ":" + a.subject
}

// attempts lists the counters r is charged against, restoring the body it reads.
func (p AuthRateLimitPolicy) attempts(r *http.Request) ([]attempt, error) {
	var out []attempt
	if ip := clientIP(r); p.ipLimit > 0 && ip != "" {
		out = append(out, attempt{kind: "ip", subject: ip, limit: p.ipLimit})
	}
	if p.emailLimit <= 0 || r.Body == nil {
		return out, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if email := strings.ToLower(strings.TrimSpace(payload.Email)); email != "" {
			sum := sha256.Sum256([]byte(email))
			out = append(out, attempt{kind: "email", subject: hex.EncodeToString(sum[:]), limit: p.emailLimit})
		}
	}
	return out, nil
}

// AuthRateLimit rejects with 429 once any of the request's counters passes its limit.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			checks, err := policy.attempts(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			for _, a := range checks {
				allowed, count, err := store.FixedWindowAllow(ctx, a.scope(policy.name), int64(a.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":         policy.name,
							"scope":          a.kind,
							"subject":        a.subject,
							"attempts":       count,
							"limit":          a.limit,
							"window_seconds": int(policy.window.Seconds()),
						}), "users.rate_limit.blocked")
					}
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP takes the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(hop); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

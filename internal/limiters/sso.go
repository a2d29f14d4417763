package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSsoIssueRateLimited   = errors.New("sso issue rate limited")
	ErrSsoLimiterUnavailable = errors.New("sso limiter redis unavailable")
)

// SsoIssueConfig tunes the per-user SSO ticket issuance budget.
type SsoIssueConfig struct {
	Enabled           bool
	MaxIssuePerWindow int
	Window            time.Duration
}

// SsoIssueLimiter caps how many SSO tickets a single user can mint inside a
// rolling window, so a compromised session cannot flood the ticket namespace.
type SsoIssueLimiter struct {
	redis  redis.UniversalClient
	config SsoIssueConfig
}

func NewSsoIssueLimiter(redisClient redis.UniversalClient, cfg SsoIssueConfig) *SsoIssueLimiter {
	return &SsoIssueLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

func issueKey(userID string) string {
	return "sso:limit:issue:" + userID
}

// CheckIssue counts the issuance attempt and rejects it once the window
// budget is exhausted.
func (l *SsoIssueLimiter) CheckIssue(ctx context.Context, userID string) error {
	if !l.config.Enabled {
		return nil
	}

	key := issueKey(userID)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSsoLimiterUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrSsoLimiterUnavailable, err)
		}
	}

	if count > int64(l.config.MaxIssuePerWindow) {
		return ErrSsoIssueRateLimited
	}

	return nil
}

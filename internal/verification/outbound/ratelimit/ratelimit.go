// Package ratelimit enforces the issuance and attempt windows in Redis. All
// counters use INCR with an expiry set on the first increment of a window, so
// concurrent callers agree on the count without client-side coordination.
// Keys are derived from the normalized identifier, so every spelling of the
// same contact lands on the same window.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyIssueIdentifier = "vc:rl:issue:id:"
	keyIssueUser       = "vc:rl:issue:user:"
	keyCooldown        = "vc:rl:cooldown:"
	keyAttempt         = "vc:rl:attempt:"
)

// Config holds the window sizes and caps. Zero values are replaced by the
// defaults below.
type Config struct {
	IssueLimit    int64
	IssueWindow   time.Duration
	AttemptLimit  int64
	AttemptWindow time.Duration
	Cooldown      time.Duration
}

func (c Config) withDefaults() Config {
	if c.IssueLimit <= 0 {
		c.IssueLimit = 5
	}
	if c.IssueWindow <= 0 {
		c.IssueWindow = time.Hour
	}
	if c.AttemptLimit <= 0 {
		c.AttemptLimit = 3
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = 15 * time.Minute
	}
	if c.Cooldown <= 0 {
		c.Cooldown = time.Minute
	}
	return c
}

// Limiter is the Redis-backed rate limiter.
type Limiter struct {
	client *redis.Client
	cfg    Config
	ins    instrument.Instrumentation
}

// New constructs a Limiter on the shared Redis client.
func New(client *redis.Client, cfg Config, ins instrument.Instrumentation) *Limiter {
	return &Limiter{client: client, cfg: cfg.withDefaults(), ins: ins}
}

func (l *Limiter) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return l.ins.Tracer("verification.outbound.ratelimit").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// hit increments a fixed-window counter and returns the decision against the
// given limit. The window starts on the first increment.
func (l *Limiter) hit(ctx context.Context, key string, limit int64, window time.Duration) (entity.LimitDecision, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return entity.LimitDecision{}, err
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, key, window).Err(); err != nil {
			return entity.LimitDecision{}, err
		}
	}

	dec := entity.LimitDecision{Allowed: count <= limit, Remaining: limit - count}
	if dec.Remaining < 0 {
		dec.Remaining = 0
	}
	if !dec.Allowed {
		ttl, err := l.client.PTTL(ctx, key).Result()
		if err != nil {
			return entity.LimitDecision{}, err
		}
		if ttl > 0 {
			dec.RetryAfter = ttl
		} else {
			dec.RetryAfter = window
		}
	}
	return dec, nil
}

// HitIssue consumes one issuance slot for the identifier window.
func (l *Limiter) HitIssue(ctx context.Context, identifierNorm string) (dec entity.LimitDecision, err error) {
	ctx, span := l.startSpan(ctx, "HitIssue")
	defer func() { endSpan(span, err) }()

	return l.hit(ctx, keyIssueIdentifier+identifierNorm, l.cfg.IssueLimit, l.cfg.IssueWindow)
}

// HitIssueUser consumes one issuance slot for the authenticated user window.
func (l *Limiter) HitIssueUser(ctx context.Context, userID int64) (dec entity.LimitDecision, err error) {
	ctx, span := l.startSpan(ctx, "HitIssueUser")
	defer func() { endSpan(span, err) }()

	return l.hit(ctx, keyIssueUser+strconv.FormatInt(userID, 10), l.cfg.IssueLimit, l.cfg.IssueWindow)
}

// HitAttempt consumes one verification-attempt slot for the identifier. It is
// called before any code comparison, so failed and over-cap attempts count
// the same as successful ones.
func (l *Limiter) HitAttempt(ctx context.Context, identifierNorm string, purpose entity.Purpose) (dec entity.LimitDecision, err error) {
	ctx, span := l.startSpan(ctx, "HitAttempt")
	defer func() { endSpan(span, err) }()

	return l.hit(ctx, keyAttempt+purpose.String()+":"+identifierNorm, l.cfg.AttemptLimit, l.cfg.AttemptWindow)
}

// StampCooldown marks an issuance for the pair, starting the resend cooldown.
func (l *Limiter) StampCooldown(ctx context.Context, identifierNorm string, purpose entity.Purpose) (err error) {
	ctx, span := l.startSpan(ctx, "StampCooldown")
	defer func() { endSpan(span, err) }()

	err = l.client.Set(ctx, keyCooldown+purpose.String()+":"+identifierNorm, 1, l.cfg.Cooldown).Err()
	return err
}

// CheckCooldown reports whether the pair is still inside its resend cooldown.
func (l *Limiter) CheckCooldown(ctx context.Context, identifierNorm string, purpose entity.Purpose) (dec entity.LimitDecision, err error) {
	ctx, span := l.startSpan(ctx, "CheckCooldown")
	defer func() { endSpan(span, err) }()

	ttl, err := l.client.PTTL(ctx, keyCooldown+purpose.String()+":"+identifierNorm).Result()
	if err != nil {
		return entity.LimitDecision{}, err
	}
	if ttl > 0 {
		return entity.LimitDecision{Allowed: false, RetryAfter: ttl}, nil
	}
	return entity.LimitDecision{Allowed: true}, nil
}

// ResetAttempts clears the attempt window for the pair. Called after a
// successful verification so the next code starts clean.
func (l *Limiter) ResetAttempts(ctx context.Context, identifierNorm string, purpose entity.Purpose) (err error) {
	ctx, span := l.startSpan(ctx, "ResetAttempts")
	defer func() { endSpan(span, err) }()

	err = l.client.Del(ctx, keyAttempt+purpose.String()+":"+identifierNorm).Err()
	return err
}

// Package codestore persists hashed verification codes in Redis, keyed by
// (identifier, purpose). Raw codes are never stored. Supersede-on-put and
// mark-used are atomic so concurrent issuances and verifications resolve to
// a single winner inside Redis, never via read-then-write in the client.
package codestore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "vc:code:"

// markUsedScript consumes a code exactly once. It refuses to touch a record
// whose id no longer matches (superseded by a newer issuance) and relies on
// HSETNX so only the first caller observes a win.
var markUsedScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HGET', KEYS[1], 'id') ~= ARGV[1] then
	return -1
end
return redis.call('HSETNX', KEYS[1], 'used_at', ARGV[2])
`)

// Store is the Redis-backed code store.
type Store struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

// New constructs a Store on the shared Redis client.
func New(client *redis.Client, ins instrument.Instrumentation) *Store {
	return &Store{client: client, ins: ins}
}

func key(identifierNorm string, purpose entity.Purpose) string {
	return keyPrefix + purpose.String() + ":" + identifierNorm
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.outbound.codestore").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Put writes a new request for its (identifier, purpose) pair, superseding
// any prior active record. DEL+HSET+PEXPIRE run inside one MULTI/EXEC so two
// concurrent issuances cannot interleave.
func (s *Store) Put(ctx context.Context, req entity.VerificationRequest, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	k := key(req.Identifier, req.Purpose)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, map[string]any{
		"id":         req.ID,
		"hash":       req.CodeHash,
		"channel":    int16(req.Channel),
		"created_at": req.CreatedAt.UnixMilli(),
		"expires_at": req.ExpiresAt.UnixMilli(),
		"attempts":   0,
	})
	pipe.PExpire(ctx, k, ttl)

	_, err = pipe.Exec(ctx)
	return err
}

// Get returns the stored request for the pair, used or not. Callers decide
// between already-used and active from the UsedAt field; a missing key means
// the code expired or never existed.
func (s *Store) Get(ctx context.Context, identifierNorm string, purpose entity.Purpose) (req *entity.VerificationRequest, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	vals, err := s.client.HGetAll(ctx, key(identifierNorm, purpose)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, goerror.ErrNotFound
	}

	out := &entity.VerificationRequest{
		ID:         vals["id"],
		Identifier: identifierNorm,
		Purpose:    purpose,
		CodeHash:   vals["hash"],
	}

	if v, perr := strconv.ParseInt(vals["channel"], 10, 16); perr == nil {
		out.Channel = entity.Channel(v)
	}
	if v, perr := strconv.ParseInt(vals["created_at"], 10, 64); perr == nil {
		out.CreatedAt = time.UnixMilli(v)
	}
	if v, perr := strconv.ParseInt(vals["expires_at"], 10, 64); perr == nil {
		out.ExpiresAt = time.UnixMilli(v)
	}
	if v, perr := strconv.Atoi(vals["attempts"]); perr == nil {
		out.Attempts = v
	}
	if raw, ok := vals["used_at"]; ok {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			t := time.UnixMilli(v)
			out.UsedAt = &t
		}
	}

	return out, nil
}

// MarkUsed consumes the code identified by requestID exactly once.
func (s *Store) MarkUsed(ctx context.Context, identifierNorm string, purpose entity.Purpose, requestID string, at time.Time) (res entity.ConsumeResult, err error) {
	ctx, span := s.startSpan(ctx, "MarkUsed")
	defer func() { s.endSpan(span, err) }()

	n, err := markUsedScript.Run(ctx, s.client,
		[]string{key(identifierNorm, purpose)},
		requestID, at.UnixMilli(),
	).Int64()
	if err != nil {
		return entity.ConsumeGone, err
	}

	switch n {
	case 1:
		return entity.ConsumeWon, nil
	case 0:
		return entity.ConsumeAlreadyUsed, nil
	default:
		return entity.ConsumeGone, nil
	}
}

// IncrementAttempts bumps the per-request attempt counter kept alongside the
// code. The enforcing counter lives in the rate limiter; this one is for the
// record itself.
func (s *Store) IncrementAttempts(ctx context.Context, identifierNorm string, purpose entity.Purpose) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempts")
	defer func() { s.endSpan(span, err) }()

	err = s.client.HIncrBy(ctx, key(identifierNorm, purpose), "attempts", 1).Err()
	return err
}

// Package db is the Postgres persistence for verification audit data: the
// append-only attempt log and the verified-contacts table. Codes themselves
// never touch Postgres; they live hashed in Redis until they expire.
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

// - 23505 unique violation → goerror.ErrConflict
// - everything else passes through for the caller to classify
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateAttempt(ctx context.Context, att entity.AttemptRecord) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAttempt")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO verification_attempts (id, identifier, purpose, channel, success, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		att.ID, att.Identifier, int16(att.Purpose), int16(att.Channel), att.Success, att.AttemptedAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) UpsertVerifiedContact(ctx context.Context, vc entity.VerifiedContact) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertVerifiedContact")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO verified_contacts (identifier, kind, user_id, purpose, verified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identifier, purpose)
		DO UPDATE SET user_id = EXCLUDED.user_id, verified_at = EXCLUDED.verified_at`,
		vc.Identifier, vc.Kind, vc.UserID, int16(vc.Purpose), vc.VerifiedAt,
	)
	err = s.mapError(err)
	return err
}

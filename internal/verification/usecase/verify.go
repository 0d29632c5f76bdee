package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/identifier"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

type VerifyInput struct {
	Identifier string `validate:"required,max=320"`
	Purpose    string `validate:"required"`
	Code       string `validate:"required,min=4,max=12"`
}

type VerifyOutput struct {
	Verified          bool
	RequestID         string
	AttemptsRemaining int64
}

// Verify checks a submitted code against the active request for the pair.
// Every call consumes one attempt slot before any comparison happens, so
// mismatches, replays and over-cap calls all count the same. A correct code
// wins at most once; concurrent duplicates observe already-used.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Identifier = strings.TrimSpace(in.Identifier)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	purpose := entity.PurposeFromString(in.Purpose)
	if purpose.IsUnknown() {
		return nil, goerror.NewInvalidFormat("Unknown verification purpose")
	}

	kind := identifier.KindPhone
	if strings.Contains(in.Identifier, "@") {
		kind = identifier.KindEmail
	}
	vid, err := identifier.Validate(in.Identifier, kind)
	if err != nil {
		return nil, goerror.NewInvalidFormat("Identifier is not a valid phone number or email address")
	}

	masked := identifier.Mask(vid.Normalized)
	now := s.clock.Now()

	// The attempt window is consumed unconditionally, before any lookup or
	// comparison. Guessing against a missing code is still guessing.
	dec, err := s.limiter.HitAttempt(ctx, vid.Normalized, purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consult attempt limiter", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !dec.Allowed {
		s.recordAttempt(ctx, vid.Normalized, purpose, entity.ChannelUnknown, false, now)
		slog.WarnContext(ctx, "attempt cap reached", "identifier", masked, "purpose", purpose.String())
		return nil, goerror.NewRetryable("Too many verification attempts", goerror.CodeTooManyRequest, dec.RetryAfter)
	}

	req, err := s.store.Get(ctx, vid.Normalized, purpose)
	if errors.Is(err, goerror.ErrNotFound) {
		s.recordAttempt(ctx, vid.Normalized, purpose, entity.ChannelUnknown, false, now)
		return nil, goerror.NewBusiness("Verification code has expired or was never issued", goerror.CodeGone)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load verification request", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	if req.UsedAt != nil {
		s.recordAttempt(ctx, vid.Normalized, purpose, req.Channel, false, now)
		return &VerifyOutput{Verified: false, AttemptsRemaining: dec.Remaining}, nil
	}
	if !now.Before(req.ExpiresAt) {
		s.recordAttempt(ctx, vid.Normalized, purpose, req.Channel, false, now)
		return nil, goerror.NewBusiness("Verification code has expired or was never issued", goerror.CodeGone)
	}

	if !s.hmac.Verify(req.CodeHash, in.Code) {
		if err := s.store.IncrementAttempts(ctx, vid.Normalized, purpose); err != nil {
			slog.ErrorContext(ctx, "failed to bump request attempt counter", "identifier", masked, "error", err)
		}
		s.recordAttempt(ctx, vid.Normalized, purpose, req.Channel, false, now)
		return &VerifyOutput{Verified: false, AttemptsRemaining: dec.Remaining}, nil
	}

	res, err := s.store.MarkUsed(ctx, vid.Normalized, purpose, req.ID, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume verification code", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	switch res {
	case entity.ConsumeAlreadyUsed:
		s.recordAttempt(ctx, vid.Normalized, purpose, req.Channel, false, now)
		return &VerifyOutput{Verified: false, AttemptsRemaining: dec.Remaining}, nil

	case entity.ConsumeGone:
		s.recordAttempt(ctx, vid.Normalized, purpose, req.Channel, false, now)
		return nil, goerror.NewBusiness("Verification code has expired or was never issued", goerror.CodeGone)
	}

	// This caller won the code. Flip the durable record, then announce it.
	s.recordAttempt(ctx, vid.Normalized, purpose, req.Channel, true, now)

	var userID *int64
	if clm := jwt.GetAuth(ctx); clm != nil {
		userID = &clm.UserID
	}

	contact := entity.VerifiedContact{
		Identifier: vid.Normalized,
		Kind:       vid.Kind.String(),
		UserID:     userID,
		Purpose:    purpose,
		VerifiedAt: now,
	}
	if err := s.repoDB.UpsertVerifiedContact(ctx, contact); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert verified contact", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.limiter.ResetAttempts(ctx, vid.Normalized, purpose); err != nil {
		slog.ErrorContext(ctx, "failed to reset attempt window", "identifier", masked, "error", err)
	}

	s.publishEvent(ctx, func(ctx context.Context) error {
		if err := s.repoMessaging.PublishVerificationVerified(ctx, VerificationVerifiedEvent{
			RequestID:  req.ID,
			Identifier: vid.Normalized,
			Kind:       vid.Kind.String(),
			Purpose:    purpose.String(),
			UserID:     userID,
			VerifiedAt: now,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish verification verified", "request_id", req.ID, "error", err)
		}
		return nil
	})

	return &VerifyOutput{Verified: true, RequestID: req.ID, AttemptsRemaining: dec.Remaining}, nil
}

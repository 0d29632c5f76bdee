package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/identifier"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

type IssueInput struct {
	Identifier string `validate:"required,max=320"`
	Purpose    string `validate:"required"`
	Channel    string `validate:"required"`
	Locale     string `validate:"omitempty,max=35"`
}

type IssueOutput struct {
	RequestID string
	ExpiresAt time.Time
	Cooldown  time.Duration
}

// Issue validates the request, generates a fresh code, stores its hash and
// hands it to the delivery channel. A new issuance supersedes any active code
// for the same (identifier, purpose).
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Identifier = strings.TrimSpace(in.Identifier)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	purpose := entity.PurposeFromString(in.Purpose)
	if purpose.IsUnknown() {
		return nil, goerror.NewInvalidFormat("Unknown verification purpose")
	}

	channel := entity.ChannelFromString(in.Channel)
	if channel.IsUnknown() {
		return nil, goerror.NewInvalidFormat("Unknown delivery channel")
	}
	if !s.dispatcher.Supports(channel) {
		return nil, goerror.NewBusiness("Delivery channel is not available", goerror.CodeInvalidInput)
	}

	vid, err := identifier.Validate(in.Identifier, channel.IdentifierKind())
	if err != nil {
		return nil, goerror.NewInvalidFormat("Identifier is not valid for the requested channel")
	}

	return s.issue(ctx, vid, purpose, channel, in.Locale)
}

// issue is the shared issuance path behind Issue and Resend. It assumes the
// identifier is already normalized and the channel is supported.
func (s *Usecase) issue(ctx context.Context, vid *identifier.Validated, purpose entity.Purpose, channel entity.Channel, locale string) (*IssueOutput, error) {
	masked := identifier.Mask(vid.Normalized)

	dec, err := s.limiter.HitIssue(ctx, vid.Normalized)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consult issuance limiter", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !dec.Allowed {
		slog.WarnContext(ctx, "issuance cap reached for identifier", "identifier", masked, "purpose", purpose.String())
		return nil, goerror.NewRetryable("Too many verification codes requested", goerror.CodeTooManyRequest, dec.RetryAfter)
	}

	if clm := jwt.GetAuth(ctx); clm != nil {
		dec, err := s.limiter.HitIssueUser(ctx, clm.UserID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to consult user issuance limiter", "user_id", clm.UserID, "error", err)
			return nil, goerror.NewServer(err)
		}
		if !dec.Allowed {
			slog.WarnContext(ctx, "issuance cap reached for user", "user_id", clm.UserID, "purpose", purpose.String())
			return nil, goerror.NewRetryable("Too many verification codes requested", goerror.CodeTooManyRequest, dec.RetryAfter)
		}
	}

	var code string
	if s.cfg.GetBool("modules.verification.alphanumeric_codes") {
		code, err = s.codes.Alphanumeric(s.cfg.GetInt("modules.verification.code_length"))
	} else {
		code, err = s.codes.Numeric(s.cfg.GetInt("modules.verification.code_length"))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification code", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.codeTTL()
	req := entity.VerificationRequest{
		ID:         s.uuid.Generate(),
		Identifier: vid.Normalized,
		Purpose:    purpose,
		Channel:    channel,
		CodeHash:   string(codeHash),
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := s.store.Put(ctx, req, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to store verification request", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.limiter.StampCooldown(ctx, vid.Normalized, purpose); err != nil {
		slog.ErrorContext(ctx, "failed to stamp resend cooldown", "identifier", masked, "error", err)
	}

	res, err := s.dispatcher.Send(ctx, entity.DeliveryOrder{
		To:      vid.Normalized,
		Channel: channel,
		Purpose: purpose,
		Locale:  locale,
		Code:    code,
	})
	if err != nil {
		return nil, goerror.NewServer(err)
	}
	if !res.Success {
		// The stored code stays valid; recovery is an explicit resend.
		return nil, goerror.NewBusiness("Verification code could not be delivered", goerror.CodeInternal)
	}

	s.publishEvent(ctx, func(ctx context.Context) error {
		if err := s.repoMessaging.PublishVerificationIssued(ctx, VerificationIssuedEvent{
			RequestID:        req.ID,
			MaskedIdentifier: masked,
			Purpose:          purpose.String(),
			Channel:          channel.String(),
			ExpiresAt:        req.ExpiresAt,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish verification issued", "request_id", req.ID, "error", err)
		}
		return nil
	})

	return &IssueOutput{
		RequestID: req.ID,
		ExpiresAt: req.ExpiresAt,
		Cooldown:  s.cooldown(),
	}, nil
}

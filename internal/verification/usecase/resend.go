package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/identifier"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

type ResendInput struct {
	Identifier string `validate:"required,max=320"`
	Purpose    string `validate:"required"`
	Channel    string `validate:"required"`
	Locale     string `validate:"omitempty,max=35"`
}

// Resend issues a fresh code for the pair after the cooldown has elapsed,
// superseding whatever code is still active. It is the recovery path after a
// failed delivery as well as the plain "send it again" button.
func (s *Usecase) Resend(ctx context.Context, in ResendInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Resend")
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

	dec, err := s.limiter.CheckCooldown(ctx, vid.Normalized, purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consult resend cooldown", "identifier", identifier.Mask(vid.Normalized), "error", err)
		return nil, goerror.NewServer(err)
	}
	if !dec.Allowed {
		return nil, goerror.NewRetryable("Please wait before requesting another code", goerror.CodeTooManyRequest, dec.RetryAfter)
	}

	return s.issue(ctx, vid, purpose, channel, in.Locale)
}

// Package dispatch routes rendered verification messages to channel senders:
// an HTTP SMS gateway, the shared mail provider, and a text-to-speech call
// gateway. The raw code appears only in provider payloads, never in logs.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/identifier"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
)

// TextSender delivers a plain-text message to a phone number.
type TextSender interface {
	Send(ctx context.Context, to, text string) entity.DeliveryResult
	Close() error
}

// MailSender delivers a subject plus HTML body to a mailbox.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) entity.DeliveryResult
	Close() error
}

// CallSender places a text-to-speech call to a phone number.
type CallSender interface {
	Call(ctx context.Context, to, say string) entity.DeliveryResult
	Close() error
}

// Router fans delivery orders out to the sender configured for each channel.
type Router struct {
	sms     TextSender
	email   MailSender
	voice   CallSender
	catalog *Catalog
	ins     instrument.Instrumentation
}

// RouterConfig wires the senders. A nil sender disables its channel; at
// least one channel must be enabled.
type RouterConfig struct {
	SMS     TextSender
	Email   MailSender
	Voice   CallSender
	Catalog *Catalog
}

// NewRouter validates the channel wiring and builds the router.
func NewRouter(cfg RouterConfig, ins instrument.Instrumentation) (*Router, error) {
	if cfg.SMS == nil && cfg.Email == nil && cfg.Voice == nil {
		return nil, errors.New("dispatch: no channel sender configured")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("dispatch: message catalog is required")
	}

	return &Router{
		sms:     cfg.SMS,
		email:   cfg.Email,
		voice:   cfg.Voice,
		catalog: cfg.Catalog,
		ins:     ins,
	}, nil
}

// Supported lists the channels this router can deliver to.
func (r *Router) Supported() []string {
	pairs := map[entity.Channel]bool{
		entity.ChannelSMS:   r.sms != nil,
		entity.ChannelEmail: r.email != nil,
		entity.ChannelVoice: r.voice != nil,
	}

	names := lo.FilterMap(lo.Keys(pairs), func(c entity.Channel, _ int) (string, bool) {
		return c.String(), pairs[c]
	})
	slices.Sort(names)
	return names
}

// Supports reports whether the channel has a configured sender.
func (r *Router) Supports(channel entity.Channel) bool {
	switch channel {
	case entity.ChannelSMS:
		return r.sms != nil
	case entity.ChannelEmail:
		return r.email != nil
	case entity.ChannelVoice:
		return r.voice != nil
	default:
		return false
	}
}

// Send renders the message for the channel and hands it to the sender. An
// unconfigured channel is a business error; a provider failure comes back
// inside the DeliveryResult.
func (r *Router) Send(ctx context.Context, in entity.DeliveryOrder) (entity.DeliveryResult, error) {
	ctx, span := r.ins.Tracer("verification.outbound.dispatch").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("channel", in.Channel.String()),
		attribute.String("purpose", in.Purpose.String()),
	)

	if !r.Supports(in.Channel) {
		return entity.DeliveryResult{}, goerror.NewBusiness("verification channel is not available", goerror.CodeInvalidInput)
	}

	set, err := r.catalog.Resolve(in.Locale, in.Purpose, in.Code)
	if err != nil {
		return entity.DeliveryResult{}, err
	}

	var res entity.DeliveryResult
	switch in.Channel {
	case entity.ChannelSMS:
		res = r.sms.Send(ctx, in.To, set.Text)
	case entity.ChannelEmail:
		res = r.email.Send(ctx, in.To, set.EmailSubject, set.EmailHTML)
	case entity.ChannelVoice:
		res = r.voice.Call(ctx, in.To, set.VoiceSay)
	}

	if res.Err != nil {
		slog.WarnContext(ctx, "verification delivery failed",
			"identifier", identifier.Mask(in.To),
			"channel", in.Channel.String(),
			"purpose", in.Purpose.String(),
			"error", res.Err,
		)
	}

	return res, nil
}

// Close closes every configured sender and joins their errors.
func (r *Router) Close() error {
	var errs []error
	if r.sms != nil {
		errs = append(errs, r.sms.Close())
	}
	if r.email != nil {
		errs = append(errs, r.email.Close())
	}
	if r.voice != nil {
		errs = append(errs, r.voice.Close())
	}
	return errors.Join(errs...)
}

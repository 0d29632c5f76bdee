package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/messaging"
	"github.com/shandysiswandi/goverify/internal/shared/event"
	"github.com/shandysiswandi/goverify/internal/verification/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// publish sends one event body with a short retry. Events are advisory;
// after the backoff is exhausted the error goes back to the caller, which
// logs and moves on.
func (m *Messaging) publish(ctx context.Context, destination string, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)

	b := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		_, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
			Body:    body,
			Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (m *Messaging) PublishVerificationIssued(ctx context.Context, msg usecase.VerificationIssuedEvent) error {
	ctx, span := m.ins.Tracer("verification.outbound.mq").Start(ctx, "PublishVerificationIssued")
	defer span.End()

	body, err := json.Marshal(event.VerificationIssuedMessage{
		RequestID:        msg.RequestID,
		MaskedIdentifier: msg.MaskedIdentifier,
		Purpose:          msg.Purpose,
		Channel:          msg.Channel,
		ExpiresAt:        msg.ExpiresAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.VerificationIssuedDestination, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishVerificationVerified(ctx context.Context, msg usecase.VerificationVerifiedEvent) error {
	ctx, span := m.ins.Tracer("verification.outbound.mq").Start(ctx, "PublishVerificationVerified")
	defer span.End()

	body, err := json.Marshal(event.VerificationVerifiedMessage{
		RequestID:  msg.RequestID,
		Identifier: msg.Identifier,
		Kind:       msg.Kind,
		Purpose:    msg.Purpose,
		UserID:     msg.UserID,
		VerifiedAt: msg.VerifiedAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.VerificationVerifiedDestination, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

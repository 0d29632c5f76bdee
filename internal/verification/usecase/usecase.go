package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goverify/internal/pkg/clock"
	"github.com/shandysiswandi/goverify/internal/pkg/codegen"
	"github.com/shandysiswandi/goverify/internal/pkg/config"
	"github.com/shandysiswandi/goverify/internal/pkg/goroutine"
	"github.com/shandysiswandi/goverify/internal/pkg/hash"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/uid"
	"github.com/shandysiswandi/goverify/internal/pkg/validator"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/trace"
)

type VerificationIssuedEvent struct {
	RequestID        string
	MaskedIdentifier string
	Purpose          string
	Channel          string
	ExpiresAt        time.Time
}

type VerificationVerifiedEvent struct {
	RequestID  string
	Identifier string
	Kind       string
	Purpose    string
	UserID     *int64
	VerifiedAt time.Time
}

type repoMessaging interface {
	PublishVerificationIssued(ctx context.Context, msg VerificationIssuedEvent) error
	PublishVerificationVerified(ctx context.Context, msg VerificationVerifiedEvent) error
}

type repoDB interface {
	CreateAttempt(ctx context.Context, att entity.AttemptRecord) error
	UpsertVerifiedContact(ctx context.Context, vc entity.VerifiedContact) error
}

type codeStore interface {
	Put(ctx context.Context, req entity.VerificationRequest, ttl time.Duration) error
	Get(ctx context.Context, identifierNorm string, purpose entity.Purpose) (*entity.VerificationRequest, error)
	MarkUsed(ctx context.Context, identifierNorm string, purpose entity.Purpose, requestID string, at time.Time) (entity.ConsumeResult, error)
	IncrementAttempts(ctx context.Context, identifierNorm string, purpose entity.Purpose) error
}

type rateLimiter interface {
	HitIssue(ctx context.Context, identifierNorm string) (entity.LimitDecision, error)
	HitIssueUser(ctx context.Context, userID int64) (entity.LimitDecision, error)
	HitAttempt(ctx context.Context, identifierNorm string, purpose entity.Purpose) (entity.LimitDecision, error)
	StampCooldown(ctx context.Context, identifierNorm string, purpose entity.Purpose) error
	CheckCooldown(ctx context.Context, identifierNorm string, purpose entity.Purpose) (entity.LimitDecision, error)
	ResetAttempts(ctx context.Context, identifierNorm string, purpose entity.Purpose) error
}

type dispatcher interface {
	Supports(channel entity.Channel) bool
	Send(ctx context.Context, in entity.DeliveryOrder) (entity.DeliveryResult, error)
}

type Usecase struct {
	store         codeStore
	limiter       rateLimiter
	repoDB        repoDB
	repoMessaging repoMessaging
	dispatcher    dispatcher
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	codes         codegen.Generator
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	Store         codeStore
	Limiter       rateLimiter
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Dispatcher    dispatcher
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Codes         codegen.Generator
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		store:         dep.Store,
		limiter:       dep.Limiter,
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		dispatcher:    dep.Dispatcher,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		codes:         dep.Codes,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

func (s *Usecase) codeTTL() time.Duration {
	ttl := s.cfg.GetSecond("modules.verification.code_ttl_seconds")
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return ttl
}

func (s *Usecase) cooldown() time.Duration {
	cd := s.cfg.GetSecond("modules.verification.resend_cooldown_seconds")
	if cd <= 0 {
		cd = time.Minute
	}
	return cd
}

// publishEvent hands an event publish to the goroutine manager when one is
// wired, keeping broker round-trips off the request latency. Without a
// manager the publish runs inline. Publishing is advisory either way, so fn
// logs its own failure and returns nil.
func (s *Usecase) publishEvent(ctx context.Context, fn func(ctx context.Context) error) {
	if s.goroutine == nil {
		//nolint:errcheck // fn handles its own error
		fn(ctx)
		return
	}
	s.goroutine.Go(context.WithoutCancel(ctx), fn)
}

// recordAttempt appends one row to the attempt log. The log is advisory;
// failure to write it never blocks the verification outcome.
func (s *Usecase) recordAttempt(ctx context.Context, identifierNorm string, purpose entity.Purpose, channel entity.Channel, success bool, at time.Time) {
	att := entity.AttemptRecord{
		ID:          s.uid.Generate(),
		Identifier:  identifierNorm,
		Purpose:     purpose,
		Channel:     channel,
		Success:     success,
		AttemptedAt: at,
	}
	if err := s.repoDB.CreateAttempt(ctx, att); err != nil {
		slog.ErrorContext(ctx, "failed to repo create verification attempt", "purpose", purpose.String(), "error", err)
	}
}

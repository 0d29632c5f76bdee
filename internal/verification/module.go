package verification

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/clock"
	"github.com/shandysiswandi/goverify/internal/pkg/codegen"
	"github.com/shandysiswandi/goverify/internal/pkg/config"
	"github.com/shandysiswandi/goverify/internal/pkg/goroutine"
	"github.com/shandysiswandi/goverify/internal/pkg/hash"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/mail"
	"github.com/shandysiswandi/goverify/internal/pkg/messaging"
	"github.com/shandysiswandi/goverify/internal/pkg/router"
	"github.com/shandysiswandi/goverify/internal/pkg/uid"
	"github.com/shandysiswandi/goverify/internal/pkg/validator"
	"github.com/shandysiswandi/goverify/internal/verification/inbound"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/codestore"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/db"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/dispatch"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/mq"
	"github.com/shandysiswandi/goverify/internal/verification/outbound/ratelimit"
	"github.com/shandysiswandi/goverify/internal/verification/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store := codestore.New(dep.CacheConn, dep.Instrument)
	limiter := ratelimiterFromConfig(dep)
	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	dispatcher, err := dispatcherFromConfig(dep)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Store:         store,
		Limiter:       limiter,
		RepoDB:        repoDB,
		RepoMessaging: repoMsg,
		Dispatcher:    dispatcher,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Codes:         codegen.New(),
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

func ratelimiterFromConfig(dep Dependency) *ratelimit.Limiter {
	return ratelimit.New(dep.CacheConn, ratelimit.Config{
		IssueLimit:    dep.Config.GetInt64("modules.verification.issue_limit"),
		IssueWindow:   dep.Config.GetSecond("modules.verification.issue_window_seconds"),
		AttemptLimit:  dep.Config.GetInt64("modules.verification.attempt_limit"),
		AttemptWindow: dep.Config.GetSecond("modules.verification.attempt_window_seconds"),
		Cooldown:      dep.Config.GetSecond("modules.verification.resend_cooldown_seconds"),
	}, dep.Instrument)
}

func dispatcherFromConfig(dep Dependency) (*dispatch.Router, error) {
	catalog := dispatch.NewCatalog(dispatch.CatalogConfig{
		DefaultLocale: dep.Config.GetString("modules.verification.default_locale"),
		Product:       dep.Config.GetString("app.name"),
		TTLMinutes:    int(dep.Config.GetSecond("modules.verification.code_ttl_seconds").Minutes()),
	})

	sms, err := dispatch.NewSMSGateway(dispatch.SMSGatewayConfig{
		URL:     dep.Config.GetString("providers.sms.url"),
		APIKey:  dep.Config.GetString("providers.sms.api_key"),
		Sender:  dep.Config.GetString("providers.sms.sender"),
		DryRun:  dep.Config.GetBool("providers.sms.dry_run"),
		Timeout: dep.Config.GetSecond("providers.sms.timeout_seconds"),
	})
	if err != nil {
		return nil, err
	}

	voice, err := dispatch.NewVoiceGateway(dispatch.VoiceGatewayConfig{
		URL:      dep.Config.GetString("providers.voice.url"),
		APIKey:   dep.Config.GetString("providers.voice.api_key"),
		CallerID: dep.Config.GetString("providers.voice.caller_id"),
		DryRun:   dep.Config.GetBool("providers.voice.dry_run"),
		Timeout:  dep.Config.GetSecond("providers.voice.timeout_seconds"),
	})
	if err != nil {
		return nil, err
	}

	return dispatch.NewRouter(dispatch.RouterConfig{
		SMS:     sms,
		Email:   dispatch.NewEmailSender(dep.Mail),
		Voice:   voice,
		Catalog: catalog,
	}, dep.Instrument)
}

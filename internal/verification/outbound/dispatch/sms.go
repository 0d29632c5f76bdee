package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.uber.org/atomic"
)

// ErrSenderClosed is returned by a sender after Close.
var ErrSenderClosed = errors.New("sender is closed")

// SMSGatewayConfig configures the HTTP SMS gateway client.
type SMSGatewayConfig struct {
	// URL is the gateway send endpoint.
	URL string
	// APIKey authenticates against the gateway.
	APIKey string
	// Sender is the optional sender ID shown to recipients.
	Sender string
	// DryRun skips the HTTP call and reports success. For local development.
	DryRun bool
	// Timeout bounds one send request.
	Timeout time.Duration
}

// smsGatewayResponse is the provider's send acknowledgement.
type smsGatewayResponse struct {
	Code int `json:"code"`
	Data struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// SMSGateway sends text messages through a form-POST HTTP gateway.
type SMSGateway struct {
	cfg    SMSGatewayConfig
	client *http.Client
	closed atomic.Bool
}

// NewSMSGateway constructs the gateway client.
func NewSMSGateway(cfg SMSGatewayConfig) (*SMSGateway, error) {
	if !cfg.DryRun && cfg.URL == "" {
		return nil, errors.New("sms gateway url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &SMSGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Send delivers one text message to a phone number in E.164 form.
func (g *SMSGateway) Send(ctx context.Context, to, text string) entity.DeliveryResult {
	if g.closed.Load() {
		return entity.DeliveryResult{Err: ErrSenderClosed}
	}
	if g.cfg.DryRun {
		return entity.DeliveryResult{Success: true, MessageID: "dry-run"}
	}

	form := url.Values{
		"apiKey":    {g.cfg.APIKey},
		"recipient": {to},
		"text":      {text},
	}
	if g.cfg.Sender != "" {
		form.Set("from", g.cfg.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return entity.DeliveryResult{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return entity.DeliveryResult{Err: fmt.Errorf("sms gateway request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return entity.DeliveryResult{Err: fmt.Errorf("sms gateway response: %w", err)}
	}

	var out smsGatewayResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return entity.DeliveryResult{Err: fmt.Errorf("sms gateway response: %w", err)}
	}
	if out.Code != 0 {
		return entity.DeliveryResult{Err: fmt.Errorf("sms gateway returned code %d", out.Code)}
	}

	return entity.DeliveryResult{Success: true, MessageID: out.Data.MessageID}
}

// Close stops the sender. Subsequent sends fail with ErrSenderClosed.
func (g *SMSGateway) Close() error {
	g.closed.Store(true)
	g.client.CloseIdleConnections()
	return nil
}

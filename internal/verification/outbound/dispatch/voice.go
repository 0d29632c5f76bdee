package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.uber.org/atomic"
)

// VoiceGatewayConfig configures the text-to-speech call gateway client.
type VoiceGatewayConfig struct {
	// URL is the gateway call endpoint.
	URL string
	// APIKey authenticates against the gateway.
	APIKey string
	// CallerID is the optional number shown to recipients.
	CallerID string
	// DryRun skips the HTTP call and reports success. For local development.
	DryRun bool
	// Timeout bounds one call request.
	Timeout time.Duration
}

type voiceCallRequest struct {
	To       string `json:"to"`
	Say      string `json:"say"`
	CallerID string `json:"caller_id,omitempty"`
}

type voiceCallResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// VoiceGateway places text-to-speech calls through a JSON HTTP gateway.
type VoiceGateway struct {
	cfg    VoiceGatewayConfig
	client *http.Client
	closed atomic.Bool
}

// NewVoiceGateway constructs the gateway client.
func NewVoiceGateway(cfg VoiceGatewayConfig) (*VoiceGateway, error) {
	if !cfg.DryRun && cfg.URL == "" {
		return nil, errors.New("voice gateway url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &VoiceGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Call places one call to a phone number in E.164 form, speaking the given text.
func (g *VoiceGateway) Call(ctx context.Context, to, say string) entity.DeliveryResult {
	if g.closed.Load() {
		return entity.DeliveryResult{Err: ErrSenderClosed}
	}
	if g.cfg.DryRun {
		return entity.DeliveryResult{Success: true, MessageID: "dry-run"}
	}

	payload, err := json.Marshal(voiceCallRequest{To: to, Say: say, CallerID: g.cfg.CallerID})
	if err != nil {
		return entity.DeliveryResult{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return entity.DeliveryResult{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return entity.DeliveryResult{Err: fmt.Errorf("voice gateway request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return entity.DeliveryResult{Err: fmt.Errorf("voice gateway response: %w", err)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return entity.DeliveryResult{Err: fmt.Errorf("voice gateway returned status %d", resp.StatusCode)}
	}

	var out voiceCallResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return entity.DeliveryResult{Err: fmt.Errorf("voice gateway response: %w", err)}
	}

	return entity.DeliveryResult{Success: true, MessageID: out.CallID}
}

// Close stops the sender. Subsequent calls fail with ErrSenderClosed.
func (g *VoiceGateway) Close() error {
	g.closed.Store(true)
	g.client.CloseIdleConnections()
	return nil
}

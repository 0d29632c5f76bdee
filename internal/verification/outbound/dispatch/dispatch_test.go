package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

type fakeTextSender struct {
	to, text string
	result   entity.DeliveryResult
	closed   bool
}

func (f *fakeTextSender) Send(_ context.Context, to, text string) entity.DeliveryResult {
	f.to, f.text = to, text
	return f.result
}

func (f *fakeTextSender) Close() error {
	f.closed = true
	return nil
}

type fakeMailSender struct {
	to, subject, html string
	result            entity.DeliveryResult
}

func (f *fakeMailSender) Send(_ context.Context, to, subject, htmlBody string) entity.DeliveryResult {
	f.to, f.subject, f.html = to, subject, htmlBody
	return f.result
}

func (f *fakeMailSender) Close() error { return nil }

type fakeCallSender struct {
	to, say string
	result  entity.DeliveryResult
}

func (f *fakeCallSender) Call(_ context.Context, to, say string) entity.DeliveryResult {
	f.to, f.say = to, say
	return f.result
}

func (f *fakeCallSender) Close() error { return nil }

func newTestRouter(t *testing.T, cfg RouterConfig) *Router {
	t.Helper()

	if cfg.Catalog == nil {
		cfg.Catalog = NewCatalog(CatalogConfig{Product: "Acme", TTLMinutes: 10})
	}
	r, err := NewRouter(cfg, instrument.NewNoop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func TestRouterRequiresSender(t *testing.T) {
	_, err := NewRouter(RouterConfig{Catalog: NewCatalog(CatalogConfig{})}, instrument.NewNoop())
	if err == nil {
		t.Fatal("NewRouter accepted a config with no senders")
	}
}

func TestRouterSendSMS(t *testing.T) {
	sms := &fakeTextSender{result: entity.DeliveryResult{Success: true, MessageID: "m-1"}}
	r := newTestRouter(t, RouterConfig{SMS: sms})

	res, err := r.Send(context.Background(), entity.DeliveryOrder{
		To:      "+14155551234",
		Channel: entity.ChannelSMS,
		Purpose: entity.PurposeLogin,
		Locale:  "en",
		Code:    "482913",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !res.Success || res.MessageID != "m-1" {
		t.Fatalf("result = %+v", res)
	}
	if sms.to != "+14155551234" {
		t.Errorf("to = %q", sms.to)
	}
	if !strings.Contains(sms.text, "482913") {
		t.Errorf("text %q does not carry the code", sms.text)
	}
	if !strings.Contains(sms.text, "Acme") {
		t.Errorf("text %q does not carry the product name", sms.text)
	}
}

func TestRouterSendEmail(t *testing.T) {
	mailer := &fakeMailSender{result: entity.DeliveryResult{Success: true}}
	r := newTestRouter(t, RouterConfig{Email: mailer})

	_, err := r.Send(context.Background(), entity.DeliveryOrder{
		To:      "farmer.joe@example.com",
		Channel: entity.ChannelEmail,
		Purpose: entity.PurposeRegistration,
		Locale:  "en-US",
		Code:    "482913",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mailer.subject == "" || !strings.Contains(mailer.html, "482913") {
		t.Errorf("subject = %q, html = %q", mailer.subject, mailer.html)
	}
}

func TestRouterSendVoiceSpellsCode(t *testing.T) {
	voice := &fakeCallSender{result: entity.DeliveryResult{Success: true}}
	r := newTestRouter(t, RouterConfig{Voice: voice})

	_, err := r.Send(context.Background(), entity.DeliveryOrder{
		To:      "+14155551234",
		Channel: entity.ChannelVoice,
		Purpose: entity.PurposeTwoFactor,
		Locale:  "en",
		Code:    "4829",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(voice.say, "4, 8, 2, 9") {
		t.Errorf("say = %q, want digits spelled out", voice.say)
	}
}

func TestRouterUnsupportedChannel(t *testing.T) {
	r := newTestRouter(t, RouterConfig{SMS: &fakeTextSender{}})

	_, err := r.Send(context.Background(), entity.DeliveryOrder{
		To:      "a@example.com",
		Channel: entity.ChannelEmail,
		Purpose: entity.PurposeLogin,
		Code:    "482913",
	})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("err = %v, want *goerror.Error", err)
	}
}

func TestRouterSupported(t *testing.T) {
	r := newTestRouter(t, RouterConfig{SMS: &fakeTextSender{}, Voice: &fakeCallSender{}})

	got := r.Supported()
	want := []string{"sms", "voice"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Supported() = %v, want %v", got, want)
	}
	if r.Supports(entity.ChannelEmail) {
		t.Error("Supports(email) = true, want false")
	}
}

func TestRouterProviderFailure(t *testing.T) {
	sms := &fakeTextSender{result: entity.DeliveryResult{Err: errors.New("gateway down")}}
	r := newTestRouter(t, RouterConfig{SMS: sms})

	res, err := r.Send(context.Background(), entity.DeliveryOrder{
		To:      "+14155551234",
		Channel: entity.ChannelSMS,
		Purpose: entity.PurposeLogin,
		Code:    "482913",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Success || res.Err == nil {
		t.Fatalf("result = %+v, want provider failure", res)
	}
}

func TestCatalogLocaleFallback(t *testing.T) {
	c := NewCatalog(CatalogConfig{Product: "Acme", TTLMinutes: 10})

	set, err := c.Resolve("sw-KE", entity.PurposeLogin, "482913")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(set.Text, "482913") {
		t.Errorf("fallback text = %q", set.Text)
	}

	id, err := c.Resolve("id-ID", entity.PurposeLogin, "482913")
	if err != nil {
		t.Fatalf("Resolve id: %v", err)
	}
	if id.Text == set.Text {
		t.Error("indonesian locale fell back to default unexpectedly")
	}
}

func TestSMSGateway(t *testing.T) {
	var gotRecipient, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotRecipient = r.FormValue("recipient")
		gotKey = r.FormValue("apiKey")
		w.Write([]byte(`{"code":0,"data":{"messageId":"msg-77"}}`))
	}))
	defer srv.Close()

	g, err := NewSMSGateway(SMSGatewayConfig{URL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewSMSGateway: %v", err)
	}

	res := g.Send(context.Background(), "+14155551234", "hello")
	if !res.Success || res.MessageID != "msg-77" {
		t.Fatalf("result = %+v", res)
	}
	if gotRecipient != "+14155551234" || gotKey != "k" {
		t.Errorf("recipient = %q, apiKey = %q", gotRecipient, gotKey)
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if res := g.Send(context.Background(), "+14155551234", "hello"); !errors.Is(res.Err, ErrSenderClosed) {
		t.Fatalf("send after close = %+v, want ErrSenderClosed", res)
	}
}

func TestSMSGatewayProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":4}`))
	}))
	defer srv.Close()

	g, err := NewSMSGateway(SMSGatewayConfig{URL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewSMSGateway: %v", err)
	}

	res := g.Send(context.Background(), "+14155551234", "hello")
	if res.Success || res.Err == nil {
		t.Fatalf("result = %+v, want failure", res)
	}
}

func TestVoiceGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"call_id":"call-9","status":"queued"}`))
	}))
	defer srv.Close()

	g, err := NewVoiceGateway(VoiceGatewayConfig{URL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewVoiceGateway: %v", err)
	}

	res := g.Call(context.Background(), "+14155551234", "your code is 1, 2, 3")
	if !res.Success || res.MessageID != "call-9" {
		t.Fatalf("result = %+v", res)
	}
}

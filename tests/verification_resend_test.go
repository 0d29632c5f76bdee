package tests

import (
	"net/http"
	"testing"
)

func TestResendDuringCooldown(t *testing.T) {

	// Arrange
	identifier := uniquePhone()
	issueCode(t, identifier, "registration", "sms")

	// Act
	payload := map[string]string{
		"identifier": identifier,
		"purpose":    "registration",
		"channel":    "sms",
		"locale":     "en",
	}
	status, resp := doJSON(t, http.MethodPost, "/api/v1/verification/resend", payload, "")

	// Assert
	if status != http.StatusTooManyRequests {
		errEnv := decodeError(t, resp)
		t.Fatalf("resend inside cooldown: status=%d message=%q, want %d", status, errEnv.Message, http.StatusTooManyRequests)
	}
}

func TestResendUnknownPurpose(t *testing.T) {
	payload := map[string]string{
		"identifier": uniquePhone(),
		"purpose":    "world-domination",
		"channel":    "sms",
		"locale":     "en",
	}

	status, _ := doJSON(t, http.MethodPost, "/api/v1/verification/resend", payload, "")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", status, http.StatusBadRequest)
	}
}

package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type issueData struct {
	RequestID  string    `json:"request_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	RetryAfter int64     `json:"retry_after"`
}

type verifyData struct {
	Verified          bool   `json:"verified"`
	RequestID         string `json:"request_id"`
	AttemptsRemaining int64  `json:"attempts_remaining"`
}

func uniquePhone() string {
	// E.164 US number with a unique suffix so runs do not trip each
	// other's rate limits.
	return fmt.Sprintf("+1415555%04d", time.Now().UnixNano()%10000)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s+%d@goverify.dev", prefix, time.Now().UnixNano())
}

func issueCode(t *testing.T, identifier, purpose, channel string) issueData {
	t.Helper()

	payload := map[string]string{
		"identifier": identifier,
		"purpose":    purpose,
		"channel":    channel,
		"locale":     "en",
	}

	status, body := doJSON(t, http.MethodPost, "/api/v1/verification/issue", payload, "")
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("issue failed: status=%d message=%q", status, errEnv.Message)
	}

	var data issueData
	decodeSuccess(t, body, &data)

	return data
}

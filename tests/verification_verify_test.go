package tests

import (
	"net/http"
	"testing"
)

// The black-box suite cannot read the delivered code, so verify tests
// exercise the failure paths; the success path is covered in-process by
// the usecase tests.

func TestVerifyWrongCode(t *testing.T) {

	// Arrange
	identifier := uniquePhone()
	issueCode(t, identifier, "registration", "sms")

	// Act
	payload := map[string]string{
		"identifier": identifier,
		"purpose":    "registration",
		"code":       "000000",
	}
	status, body := doJSON(t, http.MethodPost, "/api/v1/verification/verify", payload, "")

	// Assert
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("verify failed: status=%d message=%q", status, errEnv.Message)
	}
	var data verifyData
	decodeSuccess(t, body, &data)
	if data.Verified {
		t.Fatal("wrong code must not verify")
	}
}

func TestVerifyNoActiveCode(t *testing.T) {
	payload := map[string]string{
		"identifier": uniquePhone(),
		"purpose":    "registration",
		"code":       "123456",
	}

	status, _ := doJSON(t, http.MethodPost, "/api/v1/verification/verify", payload, "")
	if status != http.StatusGone {
		t.Fatalf("status = %d, want %d", status, http.StatusGone)
	}
}

func TestVerifyAttemptsExhausted(t *testing.T) {
	identifier := uniquePhone()
	issueCode(t, identifier, "login", "sms")

	payload := map[string]string{
		"identifier": identifier,
		"purpose":    "login",
		"code":       "000000",
	}

	var lastStatus int
	for i := 0; i < 10; i++ {
		lastStatus, _ = doJSON(t, http.MethodPost, "/api/v1/verification/verify", payload, "")
		if lastStatus == http.StatusTooManyRequests {
			return
		}
	}
	t.Fatalf("attempt window never closed, last status = %d", lastStatus)
}

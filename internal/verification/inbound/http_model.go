package inbound

import "time"

type IssueRequest struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
	Channel    string `json:"channel"`
	Locale     string `json:"locale"`
}

type IssueResponse struct {
	RequestID  string    `json:"request_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	RetryAfter int64     `json:"retry_after"`
}

func (IssueResponse) Message() string {
	return "If the identifier is reachable, a verification code has been sent."
}

type VerifyRequest struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
	Code       string `json:"code"`
}

type VerifyResponse struct {
	Verified          bool   `json:"verified"`
	RequestID         string `json:"request_id,omitempty"`
	AttemptsRemaining int64  `json:"attempts_remaining"`
}

type ResendRequest struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
	Channel    string `json:"channel"`
	Locale     string `json:"locale"`
}

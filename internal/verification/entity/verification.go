package entity

import "time"

// VerificationRequest is one issued code for an (identifier, purpose) pair.
// At most one active (unused, unexpired) request exists per pair; a new
// issuance supersedes any prior active request.
type VerificationRequest struct {
	ID         string
	Identifier string
	Purpose    Purpose
	Channel    Channel
	CodeHash   string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	UsedAt     *time.Time
	Attempts   int
}

// Active reports whether the request can still be verified at the given time.
func (r *VerificationRequest) Active(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}

// AttemptRecord is one verification attempt, success or failure. Records are
// append-only and drive rolling-window attempt auditing.
type AttemptRecord struct {
	ID          int64
	Identifier  string
	Purpose     Purpose
	Channel     Channel
	Success     bool
	AttemptedAt time.Time
}

// VerifiedContact is the durable outcome of a successful verification: the
// owning record whose verified flag was flipped.
type VerifiedContact struct {
	Identifier string
	Kind       string
	UserID     *int64
	Purpose    Purpose
	VerifiedAt time.Time
}

// DeliveryResult is what a channel sender reports back after a send.
type DeliveryResult struct {
	Success   bool
	MessageID string
	Err       error
}

// ConsumeResult is the outcome of atomically consuming a code.
type ConsumeResult int

const (
	// ConsumeWon means this caller consumed the code; exactly one caller wins.
	ConsumeWon ConsumeResult = iota
	// ConsumeAlreadyUsed means another caller consumed the code first.
	ConsumeAlreadyUsed
	// ConsumeGone means the record vanished or was superseded by a newer issuance.
	ConsumeGone
)

// DeliveryOrder asks the dispatcher to deliver one code.
type DeliveryOrder struct {
	// To is the normalized identifier: E.164 for phones, lowercased address
	// for email.
	To      string
	Channel Channel
	Purpose Purpose
	Locale  string
	Code    string
}

// LimitDecision is the outcome of consulting one rate-limit window.
type LimitDecision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

package event

const VerificationIssuedDestination string = "verification_issued"

// VerificationIssuedMessage announces that a code was generated and handed to
// a delivery channel. The identifier is carried in masked form; downstream
// consumers correlate on RequestID.
type VerificationIssuedMessage struct {
	RequestID        string `json:"request_id"`
	MaskedIdentifier string `json:"masked_identifier"`
	Purpose          string `json:"purpose"`
	Channel          string `json:"channel"`
	ExpiresAt        int64  `json:"expires_at"`
}

const VerificationVerifiedDestination string = "verification_verified"

// VerificationVerifiedMessage announces a successful verification. Consumers
// that own the contact record (user service, onboarding) flip their own flags
// off this event.
type VerificationVerifiedMessage struct {
	RequestID  string `json:"request_id"`
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Purpose    string `json:"purpose"`
	UserID     *int64 `json:"user_id,omitempty"`
	VerifiedAt int64  `json:"verified_at"`
}

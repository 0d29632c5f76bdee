package entity

import "github.com/shandysiswandi/goverify/internal/pkg/identifier"

// Purpose is the business reason a code was issued. It scopes the uniqueness
// key of a verification request: one active code per (identifier, purpose).
type Purpose int16

const (
	PurposeUnknown       Purpose = 0
	PurposeRegistration  Purpose = 1
	PurposeLogin         Purpose = 2
	PurposePasswordReset Purpose = 3
	PurposeContactChange Purpose = 4
	PurposeTwoFactor     Purpose = 5
)

// PurposeFromString parses the wire representation of a purpose.
func PurposeFromString(str string) Purpose {
	switch str {
	case "registration":
		return PurposeRegistration
	case "login":
		return PurposeLogin
	case "password_reset":
		return PurposePasswordReset
	case "contact_change":
		return PurposeContactChange
	case "two_factor":
		return PurposeTwoFactor
	default:
		return PurposeUnknown
	}
}

func (p Purpose) String() string {
	switch p {
	case PurposeRegistration:
		return "registration"
	case PurposeLogin:
		return "login"
	case PurposePasswordReset:
		return "password_reset"
	case PurposeContactChange:
		return "contact_change"
	case PurposeTwoFactor:
		return "two_factor"
	default:
		return "unknown"
	}
}

func (p Purpose) IsUnknown() bool {
	switch p {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset, PurposeContactChange, PurposeTwoFactor:
		return false
	default:
		return true
	}
}

// Channel is the delivery transport for a verification code.
type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelSMS     Channel = 1
	ChannelEmail   Channel = 2
	ChannelVoice   Channel = 3
)

// ChannelFromString parses the wire representation of a channel.
func ChannelFromString(str string) Channel {
	switch str {
	case "sms":
		return ChannelSMS
	case "email":
		return ChannelEmail
	case "voice":
		return ChannelVoice
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelSMS:
		return "sms"
	case ChannelEmail:
		return "email"
	case ChannelVoice:
		return "voice"
	default:
		return "unknown"
	}
}

func (c Channel) IsUnknown() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelVoice:
		return false
	default:
		return true
	}
}

// IdentifierKind maps the channel onto the identifier kind it can deliver to.
// SMS and voice reach phones; email reaches mailboxes.
func (c Channel) IdentifierKind() identifier.Kind {
	switch c {
	case ChannelSMS, ChannelVoice:
		return identifier.KindPhone
	case ChannelEmail:
		return identifier.KindEmail
	default:
		return identifier.KindUnknown
	}
}

// Package identifier normalizes and validates the contact identifiers a
// verification code can be delivered to: E.164 phone numbers and email
// addresses.
//
// Validation is a pure function over a static dialing-code table. The
// normalized form is the canonical key used everywhere codes and rate-limit
// counters are stored, so every caller must go through Validate before
// touching a store.
package identifier

import (
	"errors"
	"net/mail"
	"strings"
)

// Kind tells Validate how to interpret a raw identifier.
type Kind int16

const (
	// KindUnknown means the kind has not been set.
	KindUnknown Kind = 0
	// KindPhone is an E.164 phone number.
	KindPhone Kind = 1
	// KindEmail is an email address.
	KindEmail Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	case KindEmail:
		return "email"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidFormat is returned when the raw value cannot be a valid
	// identifier of the requested kind.
	ErrInvalidFormat = errors.New("identifier: invalid format")
	// ErrUnknownKind is returned when Validate is called with an unsupported kind.
	ErrUnknownKind = errors.New("identifier: unknown kind")
)

const (
	minNationalDigits = 7
	maxNationalDigits = 15
)

// Validated is the result of a successful validation.
type Validated struct {
	// Normalized is the canonical form: "+<digits>" for phones, lowercase
	// trimmed address for emails. Validating a Normalized value again yields
	// the same Normalized value.
	Normalized string
	// Display is the human-readable rendering per country convention.
	Display string
	// Kind echoes the validated kind.
	Kind Kind
	// Country holds dialing metadata; nil for emails.
	Country *CountryInfo
}

// Validate normalizes and validates a raw identifier of the given kind.
func Validate(raw string, kind Kind) (*Validated, error) {
	switch kind {
	case KindPhone:
		return validatePhone(raw)
	case KindEmail:
		return validateEmail(raw)
	default:
		return nil, ErrUnknownKind
	}
}

func validatePhone(raw string) (*Validated, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	if !strings.HasPrefix(s, "+") {
		return nil, ErrInvalidFormat
	}

	digits := s[1:]
	if strings.Contains(digits, "+") {
		return nil, ErrInvalidFormat
	}

	country := lookupCountry(digits)
	if country == nil {
		return nil, ErrInvalidFormat
	}

	national := digits[len(country.DialingCode):]
	if len(national) < minNationalDigits || len(national) > maxNationalDigits {
		return nil, ErrInvalidFormat
	}

	return &Validated{
		Normalized: "+" + digits,
		Display:    "+" + country.DialingCode + " " + formatNational(national, country.FormatTemplate),
		Kind:       KindPhone,
		Country:    country,
	}, nil
}

func validateEmail(raw string) (*Validated, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil, ErrInvalidFormat
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return nil, ErrInvalidFormat
	}

	return &Validated{
		Normalized: s,
		Display:    s,
		Kind:       KindEmail,
	}, nil
}

// Mask redacts an identifier for logs and error payloads. Phones keep the
// dialing prefix and last two digits, emails keep the first character of the
// local part and the domain.
func Mask(identifier string) string {
	if identifier == "" {
		return ""
	}

	if at := strings.LastIndex(identifier, "@"); at > 0 {
		local := identifier[:at]
		return local[:1] + strings.Repeat("*", max(len(local)-1, 2)) + identifier[at:]
	}

	if strings.HasPrefix(identifier, "+") {
		if len(identifier) <= 6 {
			return "+******"
		}
		return identifier[:4] + strings.Repeat("*", len(identifier)-6) + identifier[len(identifier)-2:]
	}

	if len(identifier) <= 4 {
		return "****"
	}
	return identifier[:2] + strings.Repeat("*", len(identifier)-4) + identifier[len(identifier)-2:]
}

package identifier

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		normalized string
		country    string
	}{
		{name: "us number", raw: "+14155551234", normalized: "+14155551234", country: "US"},
		{name: "with punctuation", raw: "+1 (415) 555-1234", normalized: "+14155551234", country: "US"},
		{name: "indonesia", raw: "+62 812-3456-7890", normalized: "+6281234567890", country: "ID"},
		{name: "kenya", raw: "+254712345678", normalized: "+254712345678", country: "KE"},
		{name: "india", raw: "+91 98765 43210", normalized: "+919876543210", country: "IN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Validate(tt.raw, KindPhone)
			if err != nil {
				t.Fatalf("Validate(%q) error: %v", tt.raw, err)
			}
			if v.Normalized != tt.normalized {
				t.Errorf("Normalized = %q, want %q", v.Normalized, tt.normalized)
			}
			if v.Country == nil || v.Country.Country != tt.country {
				t.Errorf("Country = %+v, want %s", v.Country, tt.country)
			}
		})
	}
}

func TestValidatePhoneInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no plus", raw: "14155551234"},
		{name: "too short", raw: "+1415"},
		{name: "too long", raw: "+1" + strings.Repeat("5", 16)},
		{name: "unknown prefix", raw: "+999123456789"},
		{name: "empty", raw: ""},
		{name: "letters only", raw: "call-me-maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Validate(tt.raw, KindPhone); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("Validate(%q) = %v, want ErrInvalidFormat", tt.raw, err)
			}
		})
	}
}

// Validating a normalized output must return the same normalized value.
func TestValidatePhoneIdempotent(t *testing.T) {
	raws := []string{"+14155551234", "+62 812 3456 7890", "+44 7911 123456", "+8613912345678"}

	for _, raw := range raws {
		first, err := Validate(raw, KindPhone)
		if err != nil {
			t.Fatalf("Validate(%q) error: %v", raw, err)
		}
		second, err := Validate(first.Normalized, KindPhone)
		if err != nil {
			t.Fatalf("Validate(%q) error: %v", first.Normalized, err)
		}
		if second.Normalized != first.Normalized {
			t.Errorf("normalization not idempotent: %q -> %q -> %q", raw, first.Normalized, second.Normalized)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	v, err := Validate("  Farmer.Joe@Example.COM ", KindEmail)
	if err != nil {
		t.Fatalf("Validate email error: %v", err)
	}
	if v.Normalized != "farmer.joe@example.com" {
		t.Errorf("Normalized = %q", v.Normalized)
	}
	if v.Country != nil {
		t.Errorf("email should carry no country info")
	}

	for _, bad := range []string{"", "not-an-email", "a@", "@b.com", "a b@c.com"} {
		if _, err := Validate(bad, KindEmail); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidFormat", bad, err)
		}
	}
}

func TestValidateUnknownKind(t *testing.T) {
	if _, err := Validate("+14155551234", KindUnknown); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "+14155551234", want: "+141******34"},
		{in: "farmer.joe@example.com", want: "f*********@example.com"},
		{in: "ab@x.io", want: "a**@x.io"},
		{in: "+123", want: "+******"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNational(t *testing.T) {
	got := formatNational("4155551234", "(XXX) XXX-XXXX")
	if got != "(415) 555-1234" {
		t.Errorf("formatNational = %q", got)
	}

	// digits beyond the template are appended untouched
	got = formatNational("123456789012", "XXXX XXXX")
	if got != "1234 56789012" {
		t.Errorf("formatNational overflow = %q", got)
	}
}

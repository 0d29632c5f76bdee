package codegen

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// AlphabetDigits is the default alphabet for numeric codes.
	AlphabetDigits = "0123456789"
	// AlphabetAlphanumeric covers uppercase letters and digits, without
	// lookalike removal; callers wanting 0/O separation should pass their own.
	AlphabetAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultLength is the code length used when callers pass a non-positive length.
	DefaultLength = 6
)

// ErrEmptyAlphabet is returned when a custom alphabet has no characters.
var ErrEmptyAlphabet = errors.New("codegen: alphabet is empty")

// Generator produces verification codes from a cryptographically secure source.
type Generator interface {
	// Numeric returns a digits-only code of the given length.
	Numeric(length int) (string, error)
	// Alphanumeric returns an uppercase+digits code of the given length.
	Alphanumeric(length int) (string, error)
}

// CryptoRand implements Generator using crypto/rand.
//
// Selection is unbiased: each character is drawn with rand.Int over the
// alphabet size rather than a modulo over raw bytes.
type CryptoRand struct{}

// New returns a CryptoRand generator.
func New() *CryptoRand {
	return &CryptoRand{}
}

// Numeric returns a digits-only code of the given length.
func (g *CryptoRand) Numeric(length int) (string, error) {
	return g.fromAlphabet(length, AlphabetDigits)
}

// Alphanumeric returns an uppercase+digits code of the given length.
func (g *CryptoRand) Alphanumeric(length int) (string, error) {
	return g.fromAlphabet(length, AlphabetAlphanumeric)
}

func (g *CryptoRand) fromAlphabet(length int, alphabet string) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	if alphabet == "" {
		return "", ErrEmptyAlphabet
	}

	size := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}

	return string(out), nil
}

package validator

// Validator checks struct fields against their validation tags.
type Validator interface {
	// Validate returns an error describing the first set of failed rules.
	Validate(data any) error
}

var _ Validator = (*V10Validator)(nil)

package validator

import (
	"errors"
	"testing"
)

func TestV10ValidatorValidate(t *testing.T) {
	v10, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator: %v", err)
	}

	type payload struct {
		Identifier string `validate:"required,max=320"`
		Purpose    string `validate:"required"`
	}

	var v Validator = v10

	if err := v.Validate(payload{Identifier: "+14155551234", Purpose: "login"}); err != nil {
		t.Errorf("Validate valid payload: %v", err)
	}

	err = v.Validate(payload{Identifier: "+14155551234"})
	if err == nil {
		t.Fatal("Validate accepted a payload missing a required field")
	}

	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %T, want V10ValidationError", err)
	}
	if _, ok := verr.Values()["purpose"]; !ok {
		t.Errorf("error map = %v, want a purpose entry", verr.Values())
	}
}

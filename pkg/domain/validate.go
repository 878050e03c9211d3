package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// contactValidate is shared; validator.Validate caches struct metadata and is
// safe for concurrent use.
var contactValidate = validator.New(validator.WithRequiredStructEnabled())

// ValidateContact checks that both name and email are present.
func ValidateContact(c Contact) error {
	err := contactValidate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return ValidationError{Fields: fields}
}

// ValidateName checks that a lookup or removal key is present.
func ValidateName(name string) error {
	if err := contactValidate.Var(name, "required"); err != nil {
		return ValidationError{Fields: []string{"name"}}
	}
	return nil
}

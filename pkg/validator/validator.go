package validator

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the `validate` tags of a wire-decoded payload. Used to
// reject partial backend responses instead of silently accepting them.
func Struct(v any) error {
	return validate.Struct(v)
}

package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var digitsRE = regexp.MustCompile(`^[0-9]+$`)

// digitsValidator ensures the value is made up of ASCII digits only. Unlike
// the built-in numeric tag, signs and decimal points are rejected.
func digitsValidator(fl validator.FieldLevel) bool {
	return digitsRE.MatchString(fl.Field().String())
}

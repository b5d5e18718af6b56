package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	digits   = "digits"
	length   = "len"
	mx       = "max"
	mn       = "min"
	required = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case digits:
		return fmt.Sprintf("%q must contain only digits", field)
	case length:
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%q must contain exactly %s", field, plural(err.Param(), "element"))
		}
		return fmt.Sprintf("%q length must be exactly %s", field, plural(err.Param(), "character"))
	case mx:
		return formatBound(err, "less than or equal to")
	case mn:
		return formatBound(err, "greater than or equal to")
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q failed the %q rule", field, err.Tag())
	}
}

// formatBound describes a min or max violation. Numbers are compared by value,
// strings and slices by length.
func formatBound(err validator.FieldError, relation string) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", err.Field(), relation, err.Param())
	case reflect.Slice:
		return fmt.Sprintf("%q length must be %s %s", err.Field(), relation, plural(err.Param(), "element"))
	default:
		return fmt.Sprintf("%q length must be %s %s", err.Field(), relation, plural(err.Param(), "character"))
	}
}

func plural(n, noun string) string {
	if n != "1" {
		noun += "s"
	}
	return n + " " + noun
}

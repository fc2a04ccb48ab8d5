// Package validator checks decoded request bodies against their struct tags.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidRequest = errors.New("invalid request")

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return jsonName(field.Tag.Get("json"))
	})
	return v
}

// Struct validates req and returns one message per failing field, keyed by its JSON name.
func Struct(req any) (map[string]string, error) {
	err := validate.Struct(req)
	if err == nil {
		return nil, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = message(e)
	}
	return fields, ErrInvalidRequest
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must have minimum length %s", e.Param())
	case "max":
		return fmt.Sprintf("must have maximum length %s", e.Param())
	default:
		return fmt.Sprintf("is invalid (%s)", e.Tag())
	}
}

func jsonName(tag string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

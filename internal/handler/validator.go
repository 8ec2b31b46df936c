package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Pool ids are lowercase slugs of at most 64 characters.
var poolIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// requestValidator is shared by every handler; validator.Validate caches
// struct metadata and is safe for concurrent use.
var requestValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("poolid", validatePoolID); err != nil {
		panic(err)
	}
	return v
})

func validateRequest(req interface{}) error {
	return requestValidator().Struct(req)
}

func validatePoolID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return id == "" || poolIDPattern.MatchString(id)
}

// fieldMessage turns one failed rule into a message safe to show callers.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "poolid":
		return "Invalid pool id"
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	}
	return "Invalid value"
}

// FormatValidationError maps each failed field, by JSON name, to a message.
// Errors that did not come from the validator collapse into a single entry.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"error": "Invalid request format"}
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

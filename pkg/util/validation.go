package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"oneof":    "%s must be one of [%s]",
	"uuid":     "%s must be a valid UUID",
}

// ValidateStruct runs validator tags on s and returns a VALIDATION_FAILED
// DomainError whose details map JSON field names to messages.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("invalid payload", nil)
	}

	structType := reflect.TypeOf(s)
	for structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := jsonName(structType, fe.StructField())
		details[name] = fieldMessage(name, fe)
	}
	return NewValidationError("validation failed", details)
}

func jsonName(t reflect.Type, field string) string {
	f, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	tag := strings.Split(f.Tag.Get("json"), ",")[0]
	if tag == "" || tag == "-" {
		return field
	}
	return tag
}

func fieldMessage(name string, fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", name)
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, name, fe.Param())
	}
	return fmt.Sprintf(msg, name)
}

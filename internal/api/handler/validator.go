package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

var _ echo.Validator = (*echoValidator)(nil)

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in reported errors follow the json tags.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// invalidInput lists every failed field of a request.
type invalidInput struct {
	fields []domain.FieldError
}

func (e *invalidInput) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := &invalidInput{fields: make([]domain.FieldError, 0, len(ve))}
			for _, fe := range ve {
				out.fields = append(out.fields, domain.FieldError{Field: fieldPath(fe), Message: fieldError(fe)})
			}
			return out
		}
		return err
	}
	return nil
}

// bind decodes and validates the request body. Any failure is a validation
// error with msg as its message.
func bind(c echo.Context, req any, msg string) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation(msg)
	}
	if err := c.Validate(req); err != nil {
		var in *invalidInput
		if errors.As(err, &in) {
			return domain.Validation(msg, in.fields...)
		}
		return domain.Validation(msg)
	}
	return nil
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

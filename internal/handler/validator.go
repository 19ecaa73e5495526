package handler

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "medtrack/internal/errors"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that also understands the lenient body
// field types used by the handlers, so `required` rejects an absent value.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if f, ok := field.Interface().(flexUint); ok && f.Set {
			return f.Value
		}
		return nil
	}, flexUint{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(optionalDecimal); ok && d.Valid {
			return d.Decimal.String()
		}
		return nil
	}, optionalDecimal{})
	return &Validator{validator: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var _ echo.Validator = (*Validator)(nil)

// bindRequired decodes the body and validates it, answering any missing
// required field with message.
func bindRequired(c echo.Context, req interface{}, message string) error {
	if err := bind(c, req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return apperrors.BadRequest(message)
	}
	return nil
}

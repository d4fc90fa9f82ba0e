package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sanctified-studios/studio/internal/money"
)

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs v over s and converts the first failure into a
// ValidationError.
func ValidateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError{Msg: err.Error()}
	}
	fe := fieldErrs[0]
	return ValidationError{Field: fieldPath(fe), Msg: describe(fe)}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "e164":
		return "must be an international phone number"
	case "datetime":
		return fmt.Sprintf("must match %s", fe.Param())
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}

// PriceField unwraps a decoded price, turning malformed input into a
// ValidationError for field.
func PriceField(field string, p money.Price) (money.Money, error) {
	if err := p.Err(); err != nil {
		return money.Zero, ValidationError{Field: field, Msg: err.Error()}
	}
	return p.Money, nil
}

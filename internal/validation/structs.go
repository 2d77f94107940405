package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator wraps go-playground/validator with the app's rules and messages.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a validator with the nohtml rule and label-based field names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return strings.ToLower(f.Name)
	})
	strict := bluemonday.StrictPolicy()
	_ = v.RegisterValidation("nohtml", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		// Entities like "&" survive; any tag or attribute changes the value.
		return html.UnescapeString(strict.Sanitize(s)) == s
	})
	return &Validator{v: v}
}

// Validate checks s against its `validate` tags.
func (v *Validator) Validate(s any) Outcome {
	err := v.v.Struct(s)
	if err == nil {
		return Valid{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalid{Fields: []FieldError{{Field: "value", Message: fmt.Sprintf("%q is invalid", "value")}}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return Invalid{Fields: fields}
}

// ValidateStruct is the error-returning form of Validate.
func (v *Validator) ValidateStruct(s any) error {
	if inv, ok := v.Validate(s).(Invalid); ok {
		return inv.Err()
	}
	return nil
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", label)
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%q must be less than or equal to %s", label, fe.Param())
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", label, fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email", label)
	case "nohtml":
		return fmt.Sprintf("%q must not include HTML!", label)
	}
	return fmt.Sprintf("%q is invalid", label)
}

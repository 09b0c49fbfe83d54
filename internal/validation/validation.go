// Package validation configures go-playground/validator for the API and turns
// its errors into apperrors.ValidationError values keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags registered.
func New(institutionalDomain string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v, institutionalDomain)
	return v
}

// Register adds the custom tags and reports fields by their json/form name.
//
//	notblank       the string has a non-space character
//	institutional  the e-mail belongs to institutionalDomain
func Register(v *validator.Validate, institutionalDomain string) {
	v.RegisterTagNameFunc(fieldName)

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	domain := "@" + strings.ToLower(strings.TrimPrefix(institutionalDomain, "@"))
	_ = v.RegisterValidation("institutional", func(fl validator.FieldLevel) bool {
		return strings.HasSuffix(strings.ToLower(strings.TrimSpace(fl.Field().String())), domain)
	})
}

// RegisterGin installs the same tags on gin's binding engine.
func RegisterGin(institutionalDomain string) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v, institutionalDomain)
	}
}

// Fields converts validator errors into an *apperrors.ValidationError. Any
// other error is returned unchanged.
func Fields(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperrors.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out.OrNil()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return field + " must be at least " + fe.Param() + " characters"
		}
		return field + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return field + " must be at most " + fe.Param() + " characters"
		}
		return field + " must be at most " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	case "institutional":
		return field + " must be an institutional email address"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " is invalid"
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

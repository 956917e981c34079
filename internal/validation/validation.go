// Package validation wraps go-playground/validator with the sheep
// service's custom tags.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sleepsheep/sheep/internal/timemath"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return timemath.IsValidHHMM(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := timemath.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Struct validates s against its `validate` tags and flattens failures into
// one readable error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "hhmm":
		return fmt.Sprintf("%s must be HH:MM, got %q", fe.Field(), fe.Value())
	case "date":
		return fmt.Sprintf("%s must be YYYY-MM-DD, got %q", fe.Field(), fe.Value())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

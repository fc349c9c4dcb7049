// Package validation wires custom rules into gin's validator and turns
// validator errors into per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	registerOnce    sync.Once
)

// Register adds the custom rules to gin's default validator and makes error
// field names follow json tags. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// ValidUsername reports whether s only uses letters, digits and .@+-_.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// FieldErrors maps each failing field to a readable message. It returns nil
// when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath drops the root struct name: "RecipeInput.ingredients[0].amount"
// becomes "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Only letters, digits and @/./+/-/_ are allowed."
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("Must contain at least %s item(s) or characters.", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("Must contain at most %s item(s) or characters.", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "unique":
		return "Items must not repeat."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

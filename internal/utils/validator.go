package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	Validate *validator.Validate

	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	indexPattern    = regexp.MustCompile(`\[(\d+)\]`)
)

func InitValidator() {
	if Validate != nil {
		return
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				continue
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "id" || s == "en"
	})
	Validate = v
}

// ValidUsername reports whether s satisfies the username format and length.
func ValidUsername(s string) bool {
	return len(s) >= 3 && len(s) <= 50 && usernamePattern.MatchString(s)
}

// ValidationErrors flattens validator output into field -> messages, using
// dotted paths for nested items (ingredients.0.quantity). It returns nil when
// err is not a validation error.
func ValidationErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out[field] = append(out[field], translateError(fe, field))
	}
	return out
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

var messageTemplates = map[string]string{
	"required":         "The %s field is required.",
	"required_without": "The %s field is required.",
	"email":            "The %s must be a valid email address.",
	"uuid":             "The %s must be a valid UUID.",
	"username":         "The %s must start with a letter and contain only letters, numbers, dashes and underscores.",
	"language":         "The selected %s is invalid.",
}

func translateError(fe validator.FieldError, field string) string {
	if tpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tpl, field)
	}

	isString := fe.Kind() == reflect.String
	isSlice := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "min":
		switch {
		case isString:
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		case isSlice:
			return fmt.Sprintf("The %s must have at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		switch {
		case isString:
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		case isSlice:
			return fmt.Sprintf("The %s may not have more than %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", strings.TrimSuffix(field, "_confirmation"))
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

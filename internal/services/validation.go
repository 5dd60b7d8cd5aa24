package services

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// ReservedUsername is the path segment of the self-profile endpoint.
	ReservedUsername = "me"

	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 256
	SlugMaxLength     = 50
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	validate = newValidator()
)

// ValidUsername reports whether s matches the username pattern.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	RegisterValidations(v)
	return v
}

// RegisterValidations adds the "username" and "slug" tags and reports
// field names by their json tag. Shared with gin's binding engine.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

func validEmail(s string) bool {
	return validate.Var(s, "required,email,max=254") == nil
}

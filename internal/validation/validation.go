// Package validation builds the shared validator instance with the
// project's custom rules registered.
package validation

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// displayNamePattern allows letters and whitespace only.
var displayNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z\s]*$`)

// New returns a validator with the custom rules registered:
//
//	display_name    letters and whitespace only
//	strong_password 8 to 72 bytes, at least one digit and one uppercase letter
func New() *validator.Validate {
	v := validator.New()
	// RegisterValidation only errors on an empty tag or nil func.
	_ = v.RegisterValidation("display_name", validDisplayName)
	_ = v.RegisterValidation("strong_password", validStrongPassword)
	return v
}

func validDisplayName(fl validator.FieldLevel) bool {
	return displayNamePattern.MatchString(fl.Field().String())
}

func validStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	// 72 bytes is bcrypt's input limit; beyond it GenerateFromPassword errors.
	if len(password) < 8 || len(password) > 72 {
		return false
	}
	var hasDigit, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	return hasDigit && hasUpper
}

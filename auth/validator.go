package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"session-lab/errors"
)

var validate = validator.New()

type LoginRequest struct {
	AdminID  string `validate:"required,max=64"`
	Password string `validate:"required,max=72"`
}

func ValidateLogin(req LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "invalid login request", err)
	}
	return nil
}

// NewPasswordRequest is checked before an admin password is hashed for configuration.
type NewPasswordRequest struct {
	Password string `validate:"required,min=12,max=72"`
}

func ValidateNewPassword(req NewPasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}

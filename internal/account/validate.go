// File: internal/account/validate.go
package account

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"learnease_backend/internal/common"
)

// SignupProfile is the validated input to the signup orchestrator.
// Username is required for students only; teachers log in by email.
type SignupProfile struct {
	Role            string `json:"role" validate:"required,oneof=student teacher"`
	FullName        string `json:"full_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required_if=Role student,omitempty,max=100"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	AgreedToTerms   bool   `json:"agreed_to_terms" validate:"eq=true"`
}

// Credentials is the validated input to the login orchestrator. Identifier
// is either an email or an opaque username.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

var validate = validator.New()

// ValidateSignup checks a signup profile and returns a field -> message map.
// An empty map means the profile is valid. Pure and deterministic: identical
// input always yields an identical mapping.
func ValidateSignup(p SignupProfile) map[string]string {
	return runValidation(p)
}

// ValidateCredentials checks login credentials the same way.
func ValidateCredentials(c Credentials) map[string]string {
	return runValidation(c)
}

func runValidation(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return map[string]string{}
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return common.FormatValidationErrors(ve)
	}
	// Non-field error (invalid input type); surface it under a catch-all key.
	return map[string]string{"_": err.Error()}
}

// IsEmailShaped reports whether the identifier looks like an email address.
// The login orchestrator uses this to pick its probing strategy.
func IsEmailShaped(identifier string) bool {
	return validate.Var(identifier, "required,email") == nil
}

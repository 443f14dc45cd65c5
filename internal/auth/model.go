// File: internal/auth/model.go
package auth

import (
	"net/http"

	"learnease_backend/internal/common"
	"learnease_backend/internal/shared"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// LoginRequest is the body of the role-specific login endpoints.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UnifiedLoginRequest is the body of the role-agnostic login endpoint.
// Identifier may be an email or a student username.
type UnifiedLoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
}

// PatchTeacherRequest backfills the identity-provider UID on a teacher record.
type PatchTeacherRequest struct {
	FirebaseUID string `json:"firebase_uid" binding:"required"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the reset flow with the emailed code.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
	Code        string `json:"code" binding:"required"`
}

// CheckEmailResponse reports which account stores hold an email.
type CheckEmailResponse struct {
	Exists    bool `json:"exists"`
	InStudent bool `json:"inStudent"`
	InTeacher bool `json:"inTeacher"`
}

// Result is the payload of a successful signup or login: exactly one of
// Student/Teacher is set, matching Role.
type Result struct {
	Role    string                `json:"role"`
	Token   *shared.TokenResponse `json:"token"`
	Student *student.Student      `json:"-"`
	Teacher *teacher.Teacher      `json:"-"`
	Route   shared.Route          `json:"route"`
}

// errAlreadyRegistered is the "go to login" signup outcome: the email is
// already claimed in some store, so account creation never proceeds.
var errAlreadyRegistered = common.NewAPIError(
	http.StatusConflict,
	"ALREADY_REGISTERED",
	"An account with this email already exists. Please log in instead.",
)

// IsAlreadyRegistered reports whether an error is the "go to login" outcome.
func IsAlreadyRegistered(err error) bool {
	apiErr, ok := common.IsAPIError(err)
	return ok && apiErr.Code == errAlreadyRegistered.Code
}

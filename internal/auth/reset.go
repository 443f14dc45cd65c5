// File: internal/auth/reset.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/account"
	"learnease_backend/internal/common"
	"learnease_backend/internal/config"
	"learnease_backend/internal/email"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/platform/crypto"
	"learnease_backend/internal/session"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

const resetCodeDigits = 6

// PasswordResetService runs the two-step reset flow: a numeric code is
// emailed out, then exchanged together with the new password. The new hash
// lands in the application store first and is pushed to the identity
// provider best-effort, keeping the store that logins actually check
// authoritative.
type PasswordResetService struct {
	directory *account.Directory
	students  student.Repository
	teachers  teacher.Repository
	provider  identity.Provider
	codes     ResetCodeRepository
	emails    email.Service
	sessions  session.Store
	cfg       *config.Config
	logger    *zap.Logger
}

// NewPasswordResetService creates the reset orchestrator.
func NewPasswordResetService(
	directory *account.Directory,
	students student.Repository,
	teachers teacher.Repository,
	provider identity.Provider,
	codes ResetCodeRepository,
	emails email.Service,
	sessions session.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		directory: directory,
		students:  students,
		teachers:  teachers,
		provider:  provider,
		codes:     codes,
		emails:    emails,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logger,
	}
}

// RequestReset issues and emails a reset code. The response is identical
// whether or not the email is registered, so the endpoint cannot be used to
// enumerate accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, emailAddr string) error {
	presence, err := s.directory.LookupEmail(ctx, emailAddr)
	if err != nil {
		s.logger.Error("Email presence check failed during reset request", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not process the reset request.")
	}
	if !presence.Exists() {
		s.logger.Info("Reset requested for unknown email, replying as if sent",
			zap.String("email", emailAddr))
		return nil
	}

	code, err := crypto.GenerateNumericCode(resetCodeDigits)
	if err != nil {
		s.logger.Error("Failed to generate reset code", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not process the reset request.")
	}
	hash, err := common.HashPassword(code)
	if err != nil {
		s.logger.Error("Failed to hash reset code", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not process the reset request.")
	}

	rec := &ResetCode{
		Email:     emailAddr,
		Role:      presence.Role(),
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(s.cfg.ResetCodeTTL),
	}
	if err := s.codes.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to store reset code", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not process the reset request.")
	}

	fullName := s.lookupFullName(ctx, emailAddr, presence.Role())
	s.emails.SendMessages(&email.Message{
		ToName:      fullName,
		ToAddress:   emailAddr,
		Subject:     "Your LearnEase password reset code",
		TextContent: fmt.Sprintf("Your password reset code is %s. It expires in %s.\nIf you did not request a reset, you can ignore this email.\n", code, s.cfg.ResetCodeTTL),
		HTMLContent: fmt.Sprintf("<p>Your password reset code is <strong>%s</strong>. It expires in %s.</p><p>If you did not request a reset, you can ignore this email.</p>", code, s.cfg.ResetCodeTTL),
	})

	s.logger.Info("Reset code issued", zap.String("email", emailAddr), zap.String("role", presence.Role()))
	return nil
}

// Reset exchanges a valid code for a new password. A wrong or expired code
// leaves every store untouched.
func (s *PasswordResetService) Reset(ctx context.Context, req ResetPasswordRequest) error {
	active, err := s.codes.FindActiveByEmail(ctx, req.Email)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == common.ErrNotFound.StatusCode {
			return common.ErrUnauthorized.WithDetails("The reset code is invalid or has expired.")
		}
		s.logger.Error("Failed to look up reset code", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not reset the password.")
	}
	if !common.CheckPasswordHash(req.Code, active.CodeHash) {
		s.logger.Warn("Reset attempted with wrong code", zap.String("email", req.Email))
		return common.ErrUnauthorized.WithDetails("The reset code is invalid or has expired.")
	}

	newHash, err := common.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("Failed to hash new password", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not reset the password.")
	}

	accountID, firebaseUID, err := s.applyNewHash(ctx, req.Email, active.Role, newHash)
	if err != nil {
		return err
	}

	// The code is single-use once the application store accepted the change.
	if err := s.codes.MarkConsumed(ctx, active); err != nil {
		s.logger.Error("Failed to mark reset code consumed", zap.Error(err))
	}

	// Keep the identity provider in step. Best-effort: the application store
	// is what logins verify against.
	if firebaseUID != "" {
		if provErr := s.provider.UpdatePassword(ctx, firebaseUID, req.NewPassword); provErr != nil {
			s.logger.Warn("Identity provider password sync failed after reset",
				zap.Error(provErr), zap.String("email", req.Email))
		}
	}

	// Existing sessions were issued under the old credential.
	if err := s.sessions.Clear(ctx, accountID); err != nil {
		s.logger.Warn("Failed to clear sessions after password reset", zap.Error(err))
	}

	s.logger.Info("Password reset completed", zap.String("email", req.Email), zap.String("role", active.Role))
	return nil
}

func (s *PasswordResetService) applyNewHash(ctx context.Context, emailAddr, role, newHash string) (accountID uuid.UUID, firebaseUID string, err error) {
	switch role {
	case common.RoleStudent:
		rec, findErr := s.students.FindByEmail(ctx, emailAddr)
		if findErr != nil {
			return accountID, "", common.ErrUnauthorized.WithDetails("The reset code is invalid or has expired.")
		}
		rec.PasswordHash = newHash
		if updErr := s.students.Update(ctx, rec); updErr != nil {
			s.logger.Error("Failed to persist new student password", zap.Error(updErr))
			return accountID, "", common.ErrInternalServer.WithDetails("Could not reset the password.")
		}
		if rec.FirebaseUID != nil {
			firebaseUID = *rec.FirebaseUID
		}
		return rec.ID, firebaseUID, nil

	case common.RoleTeacher:
		rec, findErr := s.teachers.FindByEmail(ctx, emailAddr)
		if findErr != nil {
			return accountID, "", common.ErrUnauthorized.WithDetails("The reset code is invalid or has expired.")
		}
		rec.PasswordHash = newHash
		if updErr := s.teachers.Update(ctx, rec); updErr != nil {
			s.logger.Error("Failed to persist new teacher password", zap.Error(updErr))
			return accountID, "", common.ErrInternalServer.WithDetails("Could not reset the password.")
		}
		if rec.FirebaseUID != nil {
			firebaseUID = *rec.FirebaseUID
		}
		return rec.ID, firebaseUID, nil

	default:
		return accountID, "", common.ErrInternalServer.WithDetails("Could not reset the password.")
	}
}

func (s *PasswordResetService) lookupFullName(ctx context.Context, emailAddr, role string) string {
	switch role {
	case common.RoleStudent:
		if rec, err := s.students.FindByEmail(ctx, emailAddr); err == nil {
			return rec.FullName
		}
	case common.RoleTeacher:
		if rec, err := s.teachers.FindByEmail(ctx, emailAddr); err == nil {
			return rec.FullName
		}
	}
	return ""
}

// File: internal/auth/signup.go
package auth

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/account"
	"learnease_backend/internal/common"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/session"
	"learnease_backend/internal/shared"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// SignupService creates dually-registered accounts: one record at the
// identity provider and one in the role-appropriate application store.
// Invariant: when this service returns an error and rollback succeeded, at
// most one of the two records exists - never both orphaned together.
type SignupService struct {
	directory *account.Directory
	students  student.Repository
	teachers  teacher.Repository
	provider  identity.Provider
	sessions  session.Store
	tokens    shared.TokenService
	logger    *zap.Logger
}

// NewSignupService creates the signup orchestrator.
func NewSignupService(
	directory *account.Directory,
	students student.Repository,
	teachers teacher.Repository,
	provider identity.Provider,
	sessions session.Store,
	tokens shared.TokenService,
	logger *zap.Logger,
) *SignupService {
	return &SignupService{
		directory: directory,
		students:  students,
		teachers:  teachers,
		provider:  provider,
		sessions:  sessions,
		tokens:    tokens,
		logger:    logger,
	}
}

// Signup runs the full registration workflow for either role.
func (s *SignupService) Signup(ctx context.Context, profile account.SignupProfile) (*Result, error) {
	if fieldErrs := account.ValidateSignup(profile); len(fieldErrs) > 0 {
		return nil, common.NewValidationAPIError(fieldErrs)
	}

	// Step 1: if the email is already present in either store, stop before
	// touching the identity provider at all.
	presence, err := s.directory.LookupEmail(ctx, profile.Email)
	if err != nil {
		// Directory unavailable: proceed and rely on the provider and the
		// unique constraints to reject duplicates.
		s.logger.Warn("Email presence check failed during signup, continuing",
			zap.Error(err), zap.String("email", profile.Email))
	} else if presence.Exists() {
		return nil, errAlreadyRegistered
	}

	// Step 2: create the identity-provider account.
	idAccount, err := s.provider.CreateAccount(ctx, profile.Email, profile.Password)
	if err != nil {
		switch identity.KindOf(err) {
		case identity.KindEmailAlreadyInUse:
			// Probe for the existing account so the message can distinguish
			// verified from unverified; the distinction is best-effort.
			if existing, probeErr := s.provider.AccountByEmail(ctx, profile.Email); probeErr == nil && !existing.EmailVerified {
				return nil, errAlreadyRegistered.WithDetails("This email is registered but not yet verified. Log in to resend the verification email.")
			}
			return nil, errAlreadyRegistered
		case identity.KindWeakPassword:
			return nil, common.NewValidationAPIError(map[string]string{"password": "The password must be at least 6 characters long."})
		case identity.KindInvalidEmail:
			return nil, common.NewValidationAPIError(map[string]string{"email": "The email field must be a valid email address."})
		default:
			s.logger.Error("Identity provider account creation failed", zap.Error(err), zap.String("email", profile.Email))
			return nil, common.ErrServiceUnavailable.WithDetails("Could not create the account right now. Please try again.")
		}
	}

	// Step 3: register the application account record carrying the UID.
	result, err := s.register(ctx, profile, idAccount.UID)
	if err != nil {
		// Roll back the just-created identity account so it does not outlive
		// a failed registration. Best-effort: log and continue on failure.
		if delErr := s.provider.DeleteAccount(ctx, idAccount.UID); delErr != nil {
			s.logger.Error("Rollback of identity account failed; account is orphaned",
				zap.Error(delErr), zap.String("uid", idAccount.UID), zap.String("email", profile.Email))
		}
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == common.ErrConflict.StatusCode {
			return nil, errAlreadyRegistered
		}
		return nil, err
	}

	// Token generation happens after both records exist: a failure here must
	// not tear down a consistent account pair.
	var tokenErr error
	if result.Student != nil {
		result.Token, tokenErr = s.tokenResponse(result.Student)
	} else {
		result.Token, tokenErr = s.tokenResponse(result.Teacher)
	}
	if tokenErr != nil {
		return nil, tokenErr
	}

	// Step 4: send the verification email unless the provider already
	// considers the address verified. Failure here is non-fatal.
	if !idAccount.EmailVerified {
		if sendErr := s.provider.SendVerificationEmail(ctx, profile.FullName, profile.Email); sendErr != nil {
			s.logger.Warn("Verification email send failed, continuing",
				zap.Error(sendErr), zap.String("email", profile.Email))
		}
	}

	// Step 5: students get a provisional session that is promoted once the
	// email is verified.
	if profile.Role == common.RoleStudent && result.Student != nil {
		provisional := session.Session{
			Token:     result.Token.AccessToken,
			Role:      common.RoleStudent,
			AccountID: result.Student.ID,
			UserName:  result.Student.FullName,
			UserEmail: result.Student.Email,
		}
		if sessErr := s.sessions.SaveTemporary(ctx, provisional); sessErr != nil {
			s.logger.Warn("Failed to stash provisional session, continuing",
				zap.Error(sessErr), zap.String("email", profile.Email))
		}
	}

	// Step 6: route the caller to the verification screen with navigation context.
	result.Route = shared.Route{
		Name: shared.RouteVerifyEmail,
		State: map[string]string{
			"email":    profile.Email,
			"role":     profile.Role,
			"fullName": profile.FullName,
		},
	}

	s.logger.Info("Signup completed",
		zap.String("role", profile.Role), zap.String("email", profile.Email))
	return result, nil
}

// ConfirmVerification re-reads the identity account and, once the provider
// reports the email verified, promotes the student's provisional session to
// the permanent slot.
func (s *SignupService) ConfirmVerification(ctx context.Context, studentID uuid.UUID) (*session.Session, error) {
	rec, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if rec.FirebaseUID == nil || *rec.FirebaseUID == "" {
		return nil, common.ErrConflict.WithDetails("Account has no linked identity record.")
	}

	idAccount, err := s.provider.Reload(ctx, *rec.FirebaseUID)
	if err != nil {
		s.logger.Warn("Identity account reload failed during verification confirm",
			zap.Error(err), zap.String("studentID", studentID.String()))
		return nil, common.ErrServiceUnavailable.WithDetails("Could not confirm verification right now.")
	}
	if !idAccount.EmailVerified {
		return nil, common.ErrForbidden.WithDetails("Email address is not verified yet.")
	}

	return s.sessions.PromoteTemporary(ctx, studentID)
}

func (s *SignupService) register(ctx context.Context, profile account.SignupProfile, firebaseUID string) (*Result, error) {
	hash, err := common.HashPassword(profile.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during signup", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process the password.")
	}

	uid := firebaseUID
	switch profile.Role {
	case common.RoleStudent:
		rec := &student.Student{
			Email:        profile.Email,
			Username:     profile.Username,
			FullName:     profile.FullName,
			PasswordHash: hash,
			FirebaseUID:  &uid,
		}
		if err := s.students.Create(ctx, rec); err != nil {
			return nil, err
		}
		return &Result{Role: common.RoleStudent, Student: rec}, nil

	case common.RoleTeacher:
		rec := &teacher.Teacher{
			Email:        profile.Email,
			FullName:     profile.FullName,
			PasswordHash: hash,
			FirebaseUID:  &uid,
		}
		if err := s.teachers.Create(ctx, rec); err != nil {
			return nil, err
		}
		return &Result{Role: common.RoleTeacher, Teacher: rec}, nil

	default:
		return nil, common.ErrBadRequest.WithDetails("Unknown account role.")
	}
}

func (s *SignupService) tokenResponse(acct shared.AccountDataForToken) (*shared.TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.tokens.GenerateAccessToken(acct)
	if err != nil {
		s.logger.Error("Failed to generate access token after registration", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}

	refreshToken, _, err := s.tokens.GenerateRefreshToken(acct)
	if err != nil {
		// Proceed without a refresh token; the access token is the crucial one.
		s.logger.Error("Failed to generate refresh token after registration", zap.Error(err))
	}

	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiresAt,
	}, nil
}

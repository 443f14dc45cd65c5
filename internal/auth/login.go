// File: internal/auth/login.go
package auth

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"learnease_backend/internal/account"
	"learnease_backend/internal/common"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/session"
	"learnease_backend/internal/shared"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// LoginService authenticates against the role-tagged account stores,
// probing them in a declarative order with short-circuit semantics.
type LoginService struct {
	directory *account.Directory
	students  student.Repository
	teachers  teacher.Repository
	provider  identity.Provider
	sessions  session.Store
	tokens    shared.TokenService
	router    *PostLoginRouter
	logger    *zap.Logger
}

// NewLoginService creates the login orchestrator.
func NewLoginService(
	directory *account.Directory,
	students student.Repository,
	teachers teacher.Repository,
	provider identity.Provider,
	sessions session.Store,
	tokens shared.TokenService,
	router *PostLoginRouter,
	logger *zap.Logger,
) *LoginService {
	return &LoginService{
		directory: directory,
		students:  students,
		teachers:  teachers,
		provider:  provider,
		sessions:  sessions,
		tokens:    tokens,
		router:    router,
		logger:    logger,
	}
}

// strategy is one ordered login attempt against a single store.
type strategy struct {
	role    string
	attempt func(ctx context.Context) (*Result, error)
}

// Login resolves the identifier to an ordered strategy list and evaluates it
// with short-circuit semantics. On overall failure, the most specific error
// seen wins: InvalidCredential over NotFound over anything else.
func (s *LoginService) Login(ctx context.Context, creds account.Credentials) (*Result, error) {
	if fieldErrs := account.ValidateCredentials(creds); len(fieldErrs) > 0 {
		return nil, common.NewValidationAPIError(fieldErrs)
	}

	strategies, err := s.resolveStrategies(ctx, creds)
	if err != nil {
		return nil, err
	}

	var mostSpecific error
	for _, st := range strategies {
		result, attemptErr := st.attempt(ctx)
		if attemptErr == nil {
			return s.complete(ctx, result)
		}
		mostSpecific = preferSpecific(mostSpecific, attemptErr)
	}
	return nil, asLoginError(mostSpecific)
}

// LoginStudent is the role-pinned entrypoint behind POST /api/students/auth/login.
func (s *LoginService) LoginStudent(ctx context.Context, email, password string) (*Result, error) {
	result, err := s.attemptStudentByEmail(ctx, email, password)
	if err != nil {
		return nil, asLoginError(err)
	}
	return s.complete(ctx, result)
}

// LoginTeacher is the role-pinned entrypoint behind POST /api/teachers/auth/login.
func (s *LoginService) LoginTeacher(ctx context.Context, email, password string) (*Result, error) {
	result, err := s.attemptTeacher(ctx, email, password)
	if err != nil {
		return nil, asLoginError(err)
	}
	return s.complete(ctx, result)
}

// resolveStrategies builds the ordered attempt list for an identifier.
func (s *LoginService) resolveStrategies(ctx context.Context, creds account.Credentials) ([]strategy, error) {
	teacherStrat := strategy{role: common.RoleTeacher, attempt: func(ctx context.Context) (*Result, error) {
		return s.attemptTeacher(ctx, creds.Identifier, creds.Password)
	}}
	studentEmailStrat := strategy{role: common.RoleStudent, attempt: func(ctx context.Context) (*Result, error) {
		return s.attemptStudentByEmail(ctx, creds.Identifier, creds.Password)
	}}
	studentUsernameStrat := strategy{role: common.RoleStudent, attempt: func(ctx context.Context) (*Result, error) {
		return s.attemptStudentByUsername(ctx, creds.Identifier, creds.Password)
	}}

	if !account.IsEmailShaped(creds.Identifier) {
		// Username-style identifiers are assumed student-first.
		return []strategy{studentUsernameStrat, teacherStrat}, nil
	}

	presence, err := s.directory.LookupEmail(ctx, creds.Identifier)
	if err != nil {
		// Directory unavailable: probe both stores, teacher first.
		s.logger.Warn("Email presence check failed during login, falling back to sequential probing",
			zap.Error(err), zap.String("identifier", creds.Identifier))
		return []strategy{teacherStrat, studentEmailStrat}, nil
	}

	// Exactly one strategy when the directory answered. Teacher wins the
	// tie-break if the email somehow appears in both stores.
	switch presence.Role() {
	case common.RoleTeacher:
		return []strategy{teacherStrat}, nil
	case common.RoleStudent:
		return []strategy{studentEmailStrat}, nil
	default:
		return nil, common.ErrNotFound.WithDetails("No account found with this email.")
	}
}

func (s *LoginService) attemptTeacher(ctx context.Context, email, password string) (*Result, error) {
	rec, err := s.teachers.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !common.CheckPasswordHash(password, rec.PasswordHash) {
		s.logger.Warn("Invalid teacher password attempt", zap.String("teacherID", rec.ID.String()))
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	// Teachers also need a live identity-provider account for provider-gated
	// actions. Verify reachability and backfill a missing UID without
	// blocking the login.
	s.ensureProviderLink(rec)

	return &Result{Role: common.RoleTeacher, Teacher: rec}, nil
}

func (s *LoginService) attemptStudentByEmail(ctx context.Context, email, password string) (*Result, error) {
	rec, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.checkStudent(rec, password)
}

func (s *LoginService) attemptStudentByUsername(ctx context.Context, username, password string) (*Result, error) {
	rec, err := s.students.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.checkStudent(rec, password)
}

func (s *LoginService) checkStudent(rec *student.Student, password string) (*Result, error) {
	if !common.CheckPasswordHash(password, rec.PasswordHash) {
		s.logger.Warn("Invalid student password attempt", zap.String("studentID", rec.ID.String()))
		return nil, common.ErrUnauthorized.WithDetails("Invalid credentials.")
	}
	return &Result{Role: common.RoleStudent, Student: rec}, nil
}

// ensureProviderLink checks the identity account and patches a missing UID
// onto the teacher record. Fire-and-forget: a navigation away abandons it.
func (s *LoginService) ensureProviderLink(rec *teacher.Teacher) {
	if rec.FirebaseUID != nil && *rec.FirebaseUID != "" {
		return
	}
	teacherID := rec.ID
	email := rec.Email
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		idAccount, err := s.provider.AccountByEmail(ctx, email)
		if err != nil {
			s.logger.Warn("Identity account lookup for UID backfill failed, ignoring",
				zap.Error(err), zap.String("teacherID", teacherID.String()))
			return
		}
		if err := s.teachers.PatchFirebaseUID(ctx, teacherID, idAccount.UID); err != nil {
			s.logger.Warn("Firebase UID backfill failed, ignoring",
				zap.Error(err), zap.String("teacherID", teacherID.String()))
			return
		}
		s.logger.Info("Backfilled identity UID on teacher record",
			zap.String("teacherID", teacherID.String()))
	}()
}

// complete stamps last-login, issues tokens, persists the session, and asks
// the post-login router for the next screen.
func (s *LoginService) complete(ctx context.Context, result *Result) (*Result, error) {
	now := time.Now()
	var acct shared.AccountDataForToken
	var fullName string

	switch {
	case result.Student != nil:
		result.Student.LastLoginAt = &now
		if err := s.students.Update(ctx, result.Student); err != nil {
			s.logger.Error("Failed to update student last login time", zap.Error(err))
		}
		acct = result.Student
		fullName = result.Student.FullName
	case result.Teacher != nil:
		result.Teacher.LastLoginAt = &now
		if err := s.teachers.Update(ctx, result.Teacher); err != nil {
			s.logger.Error("Failed to update teacher last login time", zap.Error(err))
		}
		acct = result.Teacher
		fullName = result.Teacher.FullName
	default:
		return nil, common.ErrInternalServer.WithDetails("Login produced no account record.")
	}

	token, err := s.issueTokens(acct)
	if err != nil {
		return nil, err
	}
	result.Token = token

	sess := session.Session{
		Token:     token.AccessToken,
		Role:      result.Role,
		AccountID: acct.GetID(),
		UserName:  fullName,
		UserEmail: acct.GetEmail(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Error("Failed to persist session after login", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not establish a session.")
	}

	result.Route = s.router.Route(ctx, result)

	s.logger.Info("Login successful",
		zap.String("role", result.Role), zap.String("accountID", acct.GetID().String()))
	return result, nil
}

func (s *LoginService) issueTokens(acct shared.AccountDataForToken) (*shared.TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.tokens.GenerateAccessToken(acct)
	if err != nil {
		s.logger.Error("Failed to generate access token on login", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}
	refreshToken, _, err := s.tokens.GenerateRefreshToken(acct)
	if err != nil {
		s.logger.Error("Failed to generate refresh token on login", zap.Error(err))
	}
	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiresAt,
	}, nil
}

// preferSpecific keeps the more actionable of two login errors.
// InvalidCredential beats NotFound beats generic failures.
func preferSpecific(current, candidate error) error {
	if current == nil {
		return candidate
	}
	return pickByRank(current, candidate)
}

func pickByRank(a, b error) error {
	if rankLoginError(b) < rankLoginError(a) {
		return b
	}
	return a
}

func rankLoginError(err error) int {
	apiErr, ok := common.IsAPIError(err)
	if !ok {
		return 3
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return 0
	case http.StatusNotFound:
		return 1
	default:
		return 2
	}
}

// asLoginError converts store errors into the single user-facing message the
// form shows, collapsing NotFound and bad-password into one 401 so the
// response does not leak which stores hold an account.
func asLoginError(err error) error {
	if err == nil {
		return common.ErrUnauthorized.WithDetails("Invalid credentials.")
	}
	apiErr, ok := common.IsAPIError(err)
	if !ok {
		return common.ErrInternalServer.WithDetails("Login failed due to an internal error.")
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized.WithDetails("Invalid email or password.")
	case http.StatusNotFound:
		return common.ErrUnauthorized.WithDetails("Invalid credentials.")
	default:
		return apiErr
	}
}

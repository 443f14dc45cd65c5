package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnease_backend/internal/account"
	"learnease_backend/internal/common"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/session"
	"learnease_backend/internal/shared"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

type signupFixture struct {
	students *fakeStudentRepo
	teachers *fakeTeacherRepo
	provider *fakeProvider
	sessions *fakeSessionStore
	service  *SignupService
}

func newSignupFixture(t *testing.T) *signupFixture {
	t.Helper()
	logger := zap.NewNop()
	students := newFakeStudentRepo()
	teachers := newFakeTeacherRepo()
	provider := newFakeProvider()
	sessions := newFakeSessionStore()
	dir := account.NewDirectory(students, teachers, logger)
	svc := NewSignupService(dir, students, teachers, provider, sessions, &fakeTokens{}, logger)
	return &signupFixture{
		students: students,
		teachers: teachers,
		provider: provider,
		sessions: sessions,
		service:  svc,
	}
}

func validStudentProfile() account.SignupProfile {
	return account.SignupProfile{
		Role:            common.RoleStudent,
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Username:        "ada",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		AgreedToTerms:   true,
	}
}

func validTeacherProfile() account.SignupProfile {
	return account.SignupProfile{
		Role:            common.RoleTeacher,
		FullName:        "Grace Hopper",
		Email:           "grace@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		AgreedToTerms:   true,
	}
}

func TestSignup_StudentHappyPath(t *testing.T) {
	fx := newSignupFixture(t)

	result, err := fx.service.Signup(context.Background(), validStudentProfile())
	require.NoError(t, err)
	require.NotNil(t, result.Student)
	assert.Equal(t, common.RoleStudent, result.Role)
	assert.NotEmpty(t, result.Token.AccessToken)
	assert.Equal(t, shared.RouteVerifyEmail, result.Route.Name)
	assert.Equal(t, "ada@example.com", result.Route.State["email"])

	// Both records exist and are linked by UID.
	stored, err := fx.students.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.FirebaseUID)
	assert.Equal(t, "uid-ada@example.com", *stored.FirebaseUID)

	// Verification email went out, and the provisional session was stashed.
	assert.Contains(t, fx.provider.sentEmails, "ada@example.com")
	assert.Contains(t, fx.sessions.temporary, stored.ID)
	assert.NotContains(t, fx.sessions.permanent, stored.ID)
}

func TestSignup_TeacherGetsNoProvisionalSession(t *testing.T) {
	fx := newSignupFixture(t)

	result, err := fx.service.Signup(context.Background(), validTeacherProfile())
	require.NoError(t, err)
	require.NotNil(t, result.Teacher)
	assert.Empty(t, fx.sessions.temporary)
}

func TestSignup_EmailAlreadyInTeacherStore(t *testing.T) {
	fx := newSignupFixture(t)
	fx.teachers.add(&teacher.Teacher{Email: "ada@example.com", FullName: "Other Ada"})

	_, err := fx.service.Signup(context.Background(), validStudentProfile())
	require.Error(t, err)
	assert.True(t, IsAlreadyRegistered(err))
	// The identity provider must never have been touched.
	assert.Empty(t, fx.provider.createdEmails)
}

func TestSignup_ProviderReportsEmailInUse(t *testing.T) {
	fx := newSignupFixture(t)
	// Directory is clean but the provider already holds the email, unverified.
	fx.provider.existing["ada@example.com"] = &identity.Account{
		UID: "uid-existing", Email: "ada@example.com", EmailVerified: false,
	}

	_, err := fx.service.Signup(context.Background(), validStudentProfile())
	require.Error(t, err)
	assert.True(t, IsAlreadyRegistered(err))
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Contains(t, apiErr.Details, "not yet verified")
}

func TestSignup_RollbackOnRegistrationConflict(t *testing.T) {
	fx := newSignupFixture(t)
	// Sneak a conflicting student in after the directory check would pass:
	// the fake repo rejects duplicate usernames only via email key, so use
	// the same email to force the Create conflict.
	fx.students.students["ada@example.com"] = &student.Student{Email: "ada@example.com"}
	// Make the directory miss it so the flow reaches the provider.
	fx.students.failWith = common.ErrInternalServer.WithDetails("directory degraded")

	_, err := fx.service.Signup(context.Background(), validStudentProfile())
	require.Error(t, err)

	// The provider-side account must have been deleted again.
	assert.Equal(t, []string{"uid-ada@example.com"}, fx.provider.deletedUIDs)
}

func TestSignup_WeakPasswordMapsToValidationError(t *testing.T) {
	fx := newSignupFixture(t)
	fx.provider.createErr = &identity.ProviderError{Kind: identity.KindWeakPassword}

	_, err := fx.service.Signup(context.Background(), validStudentProfile())
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestSignup_ValidationRejectsMismatchedPasswords(t *testing.T) {
	fx := newSignupFixture(t)
	profile := validStudentProfile()
	profile.ConfirmPassword = "different"

	_, err := fx.service.Signup(context.Background(), profile)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	// Nothing was created anywhere.
	assert.Empty(t, fx.provider.createdEmails)
}

func TestConfirmVerification_PromotesOnlyWhenVerified(t *testing.T) {
	fx := newSignupFixture(t)
	uid := "uid-ada@example.com"
	rec := &student.Student{Email: "ada@example.com", Username: "ada", FirebaseUID: &uid}
	fx.students.add(rec)
	fx.sessions.temporary[rec.ID] = session.Session{AccountID: rec.ID, Role: common.RoleStudent}

	// Not verified yet: promotion refused, temp slot untouched.
	fx.provider.reloaded[uid] = &identity.Account{UID: uid, EmailVerified: false}
	_, err := fx.service.ConfirmVerification(context.Background(), rec.ID)
	require.Error(t, err)
	assert.Contains(t, fx.sessions.temporary, rec.ID)

	// Verified: promoted to the permanent slot.
	fx.provider.reloaded[uid] = &identity.Account{UID: uid, EmailVerified: true}
	promoted, err := fx.service.ConfirmVerification(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, promoted.AccountID)
	assert.Contains(t, fx.sessions.permanent, rec.ID)
	assert.NotContains(t, fx.sessions.temporary, rec.ID)
}

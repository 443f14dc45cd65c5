package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnease_backend/internal/account"
	"learnease_backend/internal/common"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/shared"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

type loginFixture struct {
	students *fakeStudentRepo
	teachers *fakeTeacherRepo
	provider *fakeProvider
	sessions *fakeSessionStore
	quiz     *fakeQuiz
	service  *LoginService
}

func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()
	logger := zap.NewNop()
	students := newFakeStudentRepo()
	teachers := newFakeTeacherRepo()
	provider := newFakeProvider()
	sessions := newFakeSessionStore()
	quiz := &fakeQuiz{}
	dir := account.NewDirectory(students, teachers, logger)
	router := NewPostLoginRouter(quiz, logger)
	svc := NewLoginService(dir, students, teachers, provider, sessions, &fakeTokens{}, router, logger)
	return &loginFixture{
		students: students,
		teachers: teachers,
		provider: provider,
		sessions: sessions,
		quiz:     quiz,
		service:  svc,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := common.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func (fx *loginFixture) seedStudent(t *testing.T, email, username, password string) *student.Student {
	t.Helper()
	rec := &student.Student{Email: email, Username: username, FullName: "Some Student", PasswordHash: mustHash(t, password)}
	fx.students.add(rec)
	return rec
}

func (fx *loginFixture) seedTeacher(t *testing.T, email, password string) *teacher.Teacher {
	t.Helper()
	uid := "uid-" + email
	rec := &teacher.Teacher{Email: email, FullName: "Some Teacher", PasswordHash: mustHash(t, password), FirebaseUID: &uid}
	fx.teachers.add(rec)
	return rec
}

func TestLogin_StudentByEmail(t *testing.T) {
	fx := newLoginFixture(t)
	rec := fx.seedStudent(t, "ada@example.com", "ada", "secret123")

	result, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, common.RoleStudent, result.Role)
	assert.NotEmpty(t, result.Token.AccessToken)

	// Quiz not done: routed into it with history replacement.
	assert.Equal(t, shared.RouteDiagnosticQuiz, result.Route.Name)
	assert.True(t, result.Route.ReplaceHistory)

	// A permanent session exists and last-login was stamped.
	assert.Contains(t, fx.sessions.permanent, rec.ID)
	assert.NotNil(t, rec.LastLoginAt)
}

func TestLogin_CompletedQuizRoutesToDashboard(t *testing.T) {
	fx := newLoginFixture(t)
	fx.seedStudent(t, "ada@example.com", "ada", "secret123")
	fx.quiz.completed = true

	result, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.RouteStudentDashboard, result.Route.Name)
}

func TestLogin_TeacherWinsWhenEmailInBothStores(t *testing.T) {
	fx := newLoginFixture(t)
	fx.seedStudent(t, "dual@example.com", "dual", "studentpass")
	fx.seedTeacher(t, "dual@example.com", "teacherpass")

	// The teacher store owns the email on collision, so only the teacher
	// password works.
	result, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "dual@example.com", Password: "teacherpass",
	})
	require.NoError(t, err)
	assert.Equal(t, common.RoleTeacher, result.Role)

	_, err = fx.service.Login(context.Background(), account.Credentials{
		Identifier: "dual@example.com", Password: "studentpass",
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogin_DirectoryOutageFallsBackToProbing(t *testing.T) {
	fx := newLoginFixture(t)
	fx.seedStudent(t, "ada@example.com", "ada", "secret123")
	// Teacher store errors break the directory; probing still reaches the
	// student store.
	fx.teachers.failWith = common.ErrInternalServer.WithDetails("store down")

	result, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, common.RoleStudent, result.Role)
}

func TestLogin_UsernameIdentifier(t *testing.T) {
	fx := newLoginFixture(t)
	fx.seedStudent(t, "ada@example.com", "ada", "secret123")

	result, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "ada", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, common.RoleStudent, result.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	fx := newLoginFixture(t)
	fx.seedStudent(t, "ada@example.com", "ada", "secret123")

	_, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "ada@example.com", Password: "wrongpass",
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	fx := newLoginFixture(t)

	_, err := fx.service.Login(context.Background(), account.Credentials{
		Identifier: "nobody@example.com", Password: "secret123",
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestLogin_TeacherUIDBackfill(t *testing.T) {
	fx := newLoginFixture(t)
	rec := &teacher.Teacher{Email: "grace@example.com", FullName: "Grace", PasswordHash: mustHash(t, "secret123")}
	fx.teachers.add(rec)
	fx.provider.existing["grace@example.com"] = &identity.Account{UID: "uid-backfilled", Email: "grace@example.com"}

	_, err := fx.service.LoginTeacher(context.Background(), "grace@example.com", "secret123")
	require.NoError(t, err)

	// The backfill runs in the background.
	assert.Eventually(t, func() bool {
		fx.teachers.mu.Lock()
		defer fx.teachers.mu.Unlock()
		return fx.teachers.patchedUIDs[rec.ID] == "uid-backfilled"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLogin_TeacherOnboardingRoutes(t *testing.T) {
	fx := newLoginFixture(t)

	cv := "https://cdn.example.com/cv.pdf"
	tests := []struct {
		name      string
		mutate    func(*teacher.Teacher)
		wantRoute string
	}{
		{
			name:      "no expertise yet",
			mutate:    func(rec *teacher.Teacher) {},
			wantRoute: shared.RouteProfileStepSubject,
		},
		{
			name: "expertise but no CV",
			mutate: func(rec *teacher.Teacher) {
				rec.AreasOfExpertise = []string{"math"}
			},
			wantRoute: shared.RouteProfileStepCV,
		},
		{
			name: "awaiting review",
			mutate: func(rec *teacher.Teacher) {
				rec.AreasOfExpertise = []string{"math"}
				rec.CVURL = &cv
			},
			wantRoute: shared.RouteProfileStepReview,
		},
		{
			name: "onboarding complete",
			mutate: func(rec *teacher.Teacher) {
				rec.InformationGatheringComplete = true
			},
			wantRoute: shared.RouteTeacherDashboard,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := "t" + string(rune('a'+i)) + "@example.com"
			rec := fx.seedTeacher(t, email, "secret123")
			tt.mutate(rec)

			result, err := fx.service.LoginTeacher(context.Background(), email, "secret123")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoute, result.Route.Name)
		})
	}
}

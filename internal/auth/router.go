// File: internal/auth/router.go
package auth

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/shared"
)

// QuizStatusService reports whether a student has finished the diagnostic quiz.
type QuizStatusService interface {
	Completed(ctx context.Context, studentID uuid.UUID) (bool, error)
}

// PostLoginRouter decides the screen an account lands on after
// authentication: teachers resume onboarding where they left off, students
// are steered through the diagnostic quiz.
type PostLoginRouter struct {
	quiz   QuizStatusService
	logger *zap.Logger
}

// NewPostLoginRouter creates the post-login destination resolver.
func NewPostLoginRouter(quiz QuizStatusService, logger *zap.Logger) *PostLoginRouter {
	return &PostLoginRouter{quiz: quiz, logger: logger}
}

// Route never fails: when the quiz status cannot be read the student goes to
// the dashboard rather than being bounced back to login.
func (r *PostLoginRouter) Route(ctx context.Context, result *Result) shared.Route {
	switch result.Role {
	case common.RoleTeacher:
		return r.teacherRoute(result)
	case common.RoleStudent:
		return r.studentRoute(ctx, result)
	default:
		return shared.Route{Name: shared.RouteLogin}
	}
}

// teacherRoute resumes the information-gathering flow at the first step
// missing data: expertise, then CV, then the final review.
func (r *PostLoginRouter) teacherRoute(result *Result) shared.Route {
	rec := result.Teacher
	if rec == nil || rec.InformationGatheringComplete {
		return shared.Route{Name: shared.RouteTeacherDashboard}
	}
	switch {
	case len(rec.AreasOfExpertise) == 0:
		return shared.Route{Name: shared.RouteProfileStepSubject}
	case rec.CVURL == nil || *rec.CVURL == "":
		return shared.Route{Name: shared.RouteProfileStepCV}
	default:
		return shared.Route{Name: shared.RouteProfileStepReview}
	}
}

func (r *PostLoginRouter) studentRoute(ctx context.Context, result *Result) shared.Route {
	rec := result.Student
	if rec == nil {
		return shared.Route{Name: shared.RouteStudentDashboard}
	}
	done, err := r.quiz.Completed(ctx, rec.ID)
	if err != nil {
		r.logger.Warn("Quiz status check failed, routing to dashboard",
			zap.Error(err), zap.String("studentID", rec.ID.String()))
		return shared.Route{Name: shared.RouteStudentDashboard}
	}
	if !done {
		// Replace history so back does not land on the login form.
		return shared.Route{Name: shared.RouteDiagnosticQuiz, ReplaceHistory: true}
	}
	return shared.Route{Name: shared.RouteStudentDashboard}
}

// File: internal/quiz/service.go
package quiz

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
)

// Service answers completion queries and records submissions. It backs the
// post-login routing decision for students, so Status must stay cheap.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates the quiz service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Completed reports whether the student has finished the diagnostic quiz.
func (s *Service) Completed(ctx context.Context, studentID uuid.UUID) (bool, error) {
	_, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Status returns the full completion view for the status endpoint.
func (s *Service) Status(ctx context.Context, studentID uuid.UUID) (*StatusResponse, error) {
	sub, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return &StatusResponse{Completed: false}, nil
		}
		return nil, err
	}
	return &StatusResponse{
		Completed:   true,
		Score:       &sub.Score,
		CompletedAt: &sub.CompletedAt,
	}, nil
}

// Submit records the completion. Idempotent: a second submission is a no-op
// and the stored result reflects the first one.
func (s *Service) Submit(ctx context.Context, studentID uuid.UUID, score int) (*StatusResponse, error) {
	sub := &Submission{
		StudentID:   studentID,
		Score:       score,
		CompletedAt: time.Now(),
	}
	if err := s.repo.CreateIfAbsent(ctx, sub); err != nil {
		s.logger.Error("Failed to record quiz submission", zap.Error(err),
			zap.String("studentID", studentID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not record the quiz submission.")
	}
	// Read back: an earlier submission may have won the insert race.
	return s.Status(ctx, studentID)
}

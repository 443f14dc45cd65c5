// File: internal/quiz/model.go
package quiz

import (
	"time"

	"github.com/google/uuid"

	"learnease_backend/internal/common"
)

// Submission records a student's diagnostic quiz completion. One row per
// student; the first submission wins.
type Submission struct {
	common.BaseModel
	StudentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Score       int       `gorm:"not null"`
	CompletedAt time.Time `gorm:"not null"`
}

func (Submission) TableName() string {
	return "quiz_submissions"
}

// StatusResponse is the quiz-status API shape.
type StatusResponse struct {
	Completed   bool       `json:"completed"`
	Score       *int       `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SubmitRequest is the body of the submit endpoint.
type SubmitRequest struct {
	Score int `json:"score" binding:"min=0,max=100"`
}

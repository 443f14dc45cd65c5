// File: internal/quiz/repository.go
package quiz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnease_backend/internal/common"
)

// Repository stores quiz submissions.
type Repository interface {
	FindByStudentID(ctx context.Context, studentID uuid.UUID) (*Submission, error)
	CreateIfAbsent(ctx context.Context, sub *Submission) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a database-backed quiz repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) (*Submission, error) {
	var sub Submission
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No quiz submission for this student.")
		}
		return nil, err
	}
	return &sub, nil
}

// CreateIfAbsent inserts the submission unless the student already has one.
// Conflicts are silently dropped so re-submission keeps the first completion.
func (r *gormRepository) CreateIfAbsent(ctx context.Context, sub *Submission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoNothing: true,
	}).Create(sub).Error
}

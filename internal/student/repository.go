// File: internal/student/repository.go
package student

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnease_backend/internal/common"
)

// Repository defines the interface for student data operations.
type Repository interface {
	Create(ctx context.Context, s *Student) error
	FindByEmail(ctx context.Context, email string) (*Student, error)
	FindByUsername(ctx context.Context, username string) (*Student, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	Update(ctx context.Context, s *Student) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM student repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, s *Student) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "username") {
				return common.ErrConflict.WithDetails("This username is already taken.")
			}
			return common.ErrConflict.WithDetails("A student with this email already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Student, error) {
	var s Student
	normalized := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).Where("email = ?", normalized).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Student not found with this email.")
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) FindByUsername(ctx context.Context, username string) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Student not found with this username.")
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Student not found with this ID.")
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) Update(ctx context.Context, s *Student) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	err := r.db.WithContext(ctx).Save(s).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email or username already taken.")
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "unique constraint") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

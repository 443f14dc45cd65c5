// File: internal/teacher/repository.go
package teacher

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnease_backend/internal/common"
)

// Repository defines the interface for teacher data operations.
type Repository interface {
	Create(ctx context.Context, t *Teacher) error
	FindByEmail(ctx context.Context, email string) (*Teacher, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Teacher, error)
	Update(ctx context.Context, t *Teacher) error
	PatchFirebaseUID(ctx context.Context, id uuid.UUID, firebaseUID string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM teacher repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, t *Teacher) error {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	err := r.db.WithContext(ctx).Create(t).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A teacher with this email already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Teacher, error) {
	var t Teacher
	normalized := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).Where("email = ?", normalized).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Teacher not found with this email.")
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Teacher, error) {
	var t Teacher
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Teacher not found with this ID.")
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) Update(ctx context.Context, t *Teacher) error {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	err := r.db.WithContext(ctx).Save(t).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return err
	}
	return nil
}

// PatchFirebaseUID sets only the firebase_uid column. Used by the
// fire-and-forget backfill after a teacher login.
func (r *gormRepository) PatchFirebaseUID(ctx context.Context, id uuid.UUID, firebaseUID string) error {
	res := r.db.WithContext(ctx).Model(&Teacher{}).
		Where("id = ?", id).
		Update("firebase_uid", firebaseUID)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return common.ErrConflict.WithDetails("This identity account is already linked to another teacher.")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Teacher not found with this ID.")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "unique constraint") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

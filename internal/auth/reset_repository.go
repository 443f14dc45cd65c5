// File: internal/auth/reset_repository.go
package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"learnease_backend/internal/common"
)

// ResetCode is one issued password-reset code. Only the bcrypt hash of the
// code is stored; the plaintext goes out by email and is never persisted.
type ResetCode struct {
	common.BaseModel
	Email      string     `gorm:"type:varchar(255);not null;index"`
	Role       string     `gorm:"type:varchar(16);not null"`
	CodeHash   string     `gorm:"type:varchar(255);not null"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	ConsumedAt *time.Time `gorm:"index"`
}

func (ResetCode) TableName() string {
	return "password_reset_codes"
}

// ResetCodeRepository stores issued reset codes.
type ResetCodeRepository interface {
	Create(ctx context.Context, code *ResetCode) error
	FindActiveByEmail(ctx context.Context, email string) (*ResetCode, error)
	MarkConsumed(ctx context.Context, code *ResetCode) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type gormResetCodeRepository struct {
	db *gorm.DB
}

// NewResetCodeRepository creates a database-backed reset-code repository.
func NewResetCodeRepository(db *gorm.DB) ResetCodeRepository {
	return &gormResetCodeRepository{db: db}
}

func (r *gormResetCodeRepository) Create(ctx context.Context, code *ResetCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// FindActiveByEmail returns the newest unconsumed, unexpired code for an
// email. Issuing a new code supersedes older ones implicitly.
func (r *gormResetCodeRepository) FindActiveByEmail(ctx context.Context, email string) (*ResetCode, error) {
	var code ResetCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND consumed_at IS NULL AND expires_at > ?", email, time.Now()).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No active reset code for this email.")
		}
		return nil, err
	}
	return &code, nil
}

func (r *gormResetCodeRepository) MarkConsumed(ctx context.Context, code *ResetCode) error {
	now := time.Now()
	code.ConsumedAt = &now
	return r.db.WithContext(ctx).Model(code).Update("consumed_at", now).Error
}

func (r *gormResetCodeRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ? OR consumed_at IS NOT NULL", time.Now()).
		Delete(&ResetCode{})
	return res.RowsAffected, res.Error
}

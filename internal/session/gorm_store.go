// File: internal/session/gorm_store.go
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnease_backend/internal/common"
	"learnease_backend/internal/config"
)

const (
	slotPermanent = "permanent"
	slotTemporary = "temporary"
)

// Record is a single session slot row. One row per (account, slot).
type Record struct {
	common.BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_account_slot,unique"`
	Slot      string    `gorm:"type:varchar(16);not null;index:idx_sessions_account_slot,unique"`
	Token     string    `gorm:"type:text;not null"`
	Role      string    `gorm:"type:varchar(16);not null"`
	UserName  string    `gorm:"type:varchar(255)"`
	UserEmail string    `gorm:"type:varchar(255)"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (Record) TableName() string {
	return "sessions"
}

// GORMStore persists session slots in the application database.
type GORMStore struct {
	db             *gorm.DB
	ttl            time.Duration
	provisionalTTL time.Duration
	logger         *zap.Logger
}

var _ Store = (*GORMStore)(nil)

// NewGORMStore creates a database-backed session store.
func NewGORMStore(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *GORMStore {
	return &GORMStore{
		db:             db,
		ttl:            cfg.SessionTTL,
		provisionalTTL: cfg.ProvisionalSessionTTL,
		logger:         logger,
	}
}

func (st *GORMStore) Save(ctx context.Context, s Session) error {
	return st.upsert(ctx, st.db, s, slotPermanent, st.ttl)
}

func (st *GORMStore) SaveTemporary(ctx context.Context, s Session) error {
	return st.upsert(ctx, st.db, s, slotTemporary, st.provisionalTTL)
}

func (st *GORMStore) upsert(ctx context.Context, tx *gorm.DB, s Session, slot string, ttl time.Duration) error {
	now := time.Now()
	rec := Record{
		BaseModel: common.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		AccountID: s.AccountID,
		Slot:      slot,
		Token:     s.Token,
		Role:      s.Role,
		UserName:  s.UserName,
		UserEmail: s.UserEmail,
		ExpiresAt: now.Add(ttl),
	}
	// Last write wins per (account, slot).
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"token", "role", "user_name", "user_email", "expires_at", "updated_at",
		}),
	}).Create(&rec).Error
}

func (st *GORMStore) Load(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	var rec Record
	err := st.db.WithContext(ctx).
		Where("account_id = ? AND slot = ? AND expires_at > ?", accountID, slotPermanent, time.Now()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return recordToSession(&rec), nil
}

func (st *GORMStore) Clear(ctx context.Context, accountID uuid.UUID) error {
	return st.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&Record{}).Error
}

func (st *GORMStore) PromoteTemporary(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	var promoted *Session
	var expired bool
	err := st.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tmp Record
		err := tx.Where("account_id = ? AND slot = ?", accountID, slotTemporary).First(&tmp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("No provisional session to promote.")
			}
			return err
		}

		// The temporary slot goes away no matter what; a stale provisional
		// session must never be promotable twice.
		if err := tx.Where("account_id = ? AND slot = ?", accountID, slotTemporary).Delete(&Record{}).Error; err != nil {
			return err
		}

		if time.Now().After(tmp.ExpiresAt) {
			// Commit the delete but do not promote.
			expired = true
			return nil
		}

		s := *recordToSession(&tmp)
		if err := st.upsert(ctx, tx, s, slotPermanent, st.ttl); err != nil {
			return err
		}
		promoted = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrUnauthorized.WithDetails("Provisional session has expired; please log in again.")
	}
	st.logger.Info("Provisional session promoted", zap.String("accountID", accountID.String()))
	return promoted, nil
}

// PurgeExpired deletes expired slots of both kinds. Called by the cleanup job.
func (st *GORMStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := st.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&Record{})
	return res.RowsAffected, res.Error
}

func recordToSession(rec *Record) *Session {
	return &Session{
		Token:     rec.Token,
		Role:      rec.Role,
		AccountID: rec.AccountID,
		UserName:  rec.UserName,
		UserEmail: rec.UserEmail,
	}
}

package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"learnease_backend/internal/common"
	"learnease_backend/internal/config"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))
	return db
}

func newTestStore(t *testing.T, ttl, provisionalTTL time.Duration) *GORMStore {
	t.Helper()
	cfg := &config.Config{SessionTTL: ttl, ProvisionalSessionTTL: provisionalTTL}
	return NewGORMStore(newTestDB(t), cfg, zap.NewNop())
}

func sampleSession(accountID uuid.UUID) Session {
	return Session{
		Token:     "token-" + accountID.String(),
		Role:      common.RoleStudent,
		AccountID: accountID,
		UserName:  "Ada Lovelace",
		UserEmail: "ada@example.com",
	}
}

func TestGORMStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t, time.Hour, time.Hour)
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession(accountID)))

	loaded, err := store.Load(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "token-"+accountID.String(), loaded.Token)
	assert.Equal(t, common.RoleStudent, loaded.Role)
}

func TestGORMStore_SaveOverwritesPreviousSession(t *testing.T) {
	store := newTestStore(t, time.Hour, time.Hour)
	accountID := uuid.New()
	ctx := context.Background()

	first := sampleSession(accountID)
	require.NoError(t, store.Save(ctx, first))

	second := first
	second.Token = "rotated-token"
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "rotated-token", loaded.Token)

	// Exactly one permanent row per account.
	var count int64
	require.NoError(t, store.db.Model(&Record{}).Where("account_id = ?", accountID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGORMStore_LoadMissingReturnsNil(t *testing.T) {
	store := newTestStore(t, time.Hour, time.Hour)

	loaded, err := store.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestGORMStore_PromoteTemporary(t *testing.T) {
	store := newTestStore(t, time.Hour, time.Hour)
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.SaveTemporary(ctx, sampleSession(accountID)))

	// Not loadable before promotion.
	loaded, err := store.Load(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	promoted, err := store.PromoteTemporary(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, accountID, promoted.AccountID)

	loaded, err = store.Load(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// The temporary slot is single-use.
	_, err = store.PromoteTemporary(ctx, accountID)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestGORMStore_PromoteExpiredTemporaryClearsSlot(t *testing.T) {
	// Negative provisional TTL: the slot is born expired.
	store := newTestStore(t, time.Hour, -time.Minute)
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.SaveTemporary(ctx, sampleSession(accountID)))

	_, err := store.PromoteTemporary(ctx, accountID)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// The stale slot must be gone even though promotion failed.
	var count int64
	require.NoError(t, store.db.Model(&Record{}).Where("account_id = ?", accountID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGORMStore_ClearRemovesBothSlots(t *testing.T) {
	store := newTestStore(t, time.Hour, time.Hour)
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession(accountID)))
	require.NoError(t, store.SaveTemporary(ctx, sampleSession(accountID)))
	require.NoError(t, store.Clear(ctx, accountID))

	var count int64
	require.NoError(t, store.db.Model(&Record{}).Where("account_id = ?", accountID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGORMStore_PurgeExpired(t *testing.T) {
	expired := newTestStore(t, -time.Minute, -time.Minute)
	ctx := context.Background()

	require.NoError(t, expired.Save(ctx, sampleSession(uuid.New())))
	require.NoError(t, expired.SaveTemporary(ctx, sampleSession(uuid.New())))

	live := sampleSession(uuid.New())
	liveStore := &GORMStore{db: expired.db, ttl: time.Hour, provisionalTTL: time.Hour, logger: zap.NewNop()}
	require.NoError(t, liveStore.Save(ctx, live))

	purged, err := expired.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	loaded, err := liveStore.Load(ctx, live.AccountID)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}

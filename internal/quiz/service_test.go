package quiz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Submission{}))
	return NewService(NewRepository(db), zap.NewNop())
}

func TestQuizCompletedAndStatus(t *testing.T) {
	svc := newTestService(t)
	studentID := uuid.New()
	ctx := context.Background()

	done, err := svc.Completed(ctx, studentID)
	require.NoError(t, err)
	assert.False(t, done)

	status, err := svc.Status(ctx, studentID)
	require.NoError(t, err)
	assert.False(t, status.Completed)
	assert.Nil(t, status.Score)

	_, err = svc.Submit(ctx, studentID, 80)
	require.NoError(t, err)

	done, err = svc.Completed(ctx, studentID)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestQuizSubmitIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	studentID := uuid.New()
	ctx := context.Background()

	first, err := svc.Submit(ctx, studentID, 80)
	require.NoError(t, err)
	require.True(t, first.Completed)
	require.NotNil(t, first.Score)
	assert.Equal(t, 80, *first.Score)

	// Re-submission keeps the first result.
	second, err := svc.Submit(ctx, studentID, 95)
	require.NoError(t, err)
	require.NotNil(t, second.Score)
	assert.Equal(t, 80, *second.Score)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
}

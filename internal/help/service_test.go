package help

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"learnease_backend/internal/common"
)

// Service under test runs without an Elasticsearch client: every search goes
// through the database fallback.
func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Article{}))
	return NewService(NewRepository(db), nil, zap.NewNop())
}

func TestCreateArticleSlugsTitle(t *testing.T) {
	svc := newTestService(t)

	article, err := svc.Create(context.Background(), CreateArticleRequest{
		Title: "How Do I Reset My Password?",
		Body:  "Use the forgot-password link on the login screen.",
	})
	require.NoError(t, err)
	assert.Equal(t, "how-do-i-reset-my-password", article.Slug)
	assert.Equal(t, AudienceAll, article.Audience)

	found, err := svc.BySlug(context.Background(), "how-do-i-reset-my-password")
	require.NoError(t, err)
	assert.Equal(t, article.ID, found.ID)
}

func TestCreateArticleDuplicateTitleConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateArticleRequest{Title: "Getting Started", Body: "a"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateArticleRequest{Title: "Getting Started", Body: "b"})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestListFiltersByAudience(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateArticleRequest{Title: "For Everyone", Body: "x"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateArticleRequest{Title: "For Teachers", Body: "x", Audience: AudienceTeacher})
	require.NoError(t, err)

	studentView, err := svc.List(ctx, AudienceStudent)
	require.NoError(t, err)
	require.Len(t, studentView, 1)
	assert.Equal(t, "For Everyone", studentView[0].Title)

	teacherView, err := svc.List(ctx, AudienceTeacher)
	require.NoError(t, err)
	assert.Len(t, teacherView, 2)
}

func TestSearchFallsBackToDatabaseScan(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateArticleRequest{
		Title: "Diagnostic Quiz Walkthrough",
		Body:  "The placement quiz takes about twenty minutes.",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateArticleRequest{
		Title: "Billing FAQ",
		Body:  "Invoices are issued monthly.",
	})
	require.NoError(t, err)

	// Matches title.
	hits, err := svc.Search(ctx, "quiz")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Diagnostic Quiz Walkthrough", hits[0].Title)

	// Matches body, case-insensitively.
	hits, err = svc.Search(ctx, "INVOICES")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Billing FAQ", hits[0].Title)

	hits, err = svc.Search(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

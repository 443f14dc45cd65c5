// File: internal/help/repository.go
package help

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"learnease_backend/internal/common"
)

// Repository stores help articles in the application database.
type Repository interface {
	Create(ctx context.Context, article *Article) error
	FindBySlug(ctx context.Context, slug string) (*Article, error)
	ListPublished(ctx context.Context, audience string) ([]Article, error)
	SearchLike(ctx context.Context, query string) ([]Article, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a database-backed help-article repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, article *Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return common.ErrConflict.WithDetails("An article with this title already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	var article Article
	err := r.db.WithContext(ctx).Where("slug = ? AND published = ?", slug, true).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Article not found.")
		}
		return nil, err
	}
	return &article, nil
}

func (r *gormRepository) ListPublished(ctx context.Context, audience string) ([]Article, error) {
	var articles []Article
	q := r.db.WithContext(ctx).Where("published = ?", true)
	if audience != "" && audience != AudienceAll {
		q = q.Where("audience IN ?", []string{AudienceAll, audience})
	}
	err := q.Order("created_at DESC").Find(&articles).Error
	return articles, err
}

// SearchLike is the degraded search path used when the search index is
// unavailable. Case-insensitive substring match on title and body.
func (r *gormRepository) SearchLike(ctx context.Context, query string) ([]Article, error) {
	var articles []Article
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Where("LOWER(title) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(25).
		Find(&articles).Error
	return articles, err
}

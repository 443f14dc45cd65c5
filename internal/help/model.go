// File: internal/help/model.go
package help

import (
	"time"

	"github.com/google/uuid"

	"learnease_backend/internal/common"
)

// Audience values restrict who an article is shown to.
const (
	AudienceAll     = "all"
	AudienceStudent = common.RoleStudent
	AudienceTeacher = common.RoleTeacher
)

// Article is a help-center article. The slug is derived from the title and
// is the public identifier; the database row is the source of truth and the
// search index is a projection of it.
type Article struct {
	common.BaseModel
	Title     string `gorm:"type:varchar(255);not null"`
	Slug      string `gorm:"type:varchar(280);not null;uniqueIndex"`
	Body      string `gorm:"type:text;not null"`
	Category  string `gorm:"type:varchar(100);index"`
	Audience  string `gorm:"type:varchar(16);not null;default:'all'"`
	Published bool   `gorm:"not null;default:true"`
}

func (Article) TableName() string {
	return "help_articles"
}

// CreateArticleRequest is the body of the authoring endpoint.
type CreateArticleRequest struct {
	Title    string `json:"title" binding:"required,max=255"`
	Body     string `json:"body" binding:"required"`
	Category string `json:"category" binding:"max=100"`
	Audience string `json:"audience" binding:"omitempty,oneof=all student teacher"`
}

// ArticleResponse is the article shape sent in API responses.
type ArticleResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Category  string    `json:"category,omitempty"`
	Audience  string    `json:"audience"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts an article to its API shape.
func ToResponse(a *Article) ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Slug:      a.Slug,
		Body:      a.Body,
		Category:  a.Category,
		Audience:  a.Audience,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// esDocument is the article projection stored in the search index.
type esDocument struct {
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Audience  string    `json:"audience"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

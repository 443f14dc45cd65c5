// File: internal/help/service.go
package help

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"learnease_backend/internal/platform/elasticsearch"
)

// Service owns the help-center articles: the database is authoritative, the
// Elasticsearch index is a best-effort projection used for full-text search.
type Service struct {
	repo   Repository
	es     *elasticsearch.ESClientWrapper
	logger *zap.Logger
}

// NewService creates the help-center service. es may be nil when search
// infrastructure is not deployed; every ES path degrades to the database.
func NewService(repo Repository, es *elasticsearch.ESClientWrapper, logger *zap.Logger) *Service {
	return &Service{repo: repo, es: es, logger: logger}
}

// Create stores a new article and pushes it into the search index.
func (s *Service) Create(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	audience := req.Audience
	if audience == "" {
		audience = AudienceAll
	}
	article := &Article{
		Title:     req.Title,
		Slug:      slug.Make(req.Title),
		Body:      req.Body,
		Category:  req.Category,
		Audience:  audience,
		Published: true,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}

	// Index failure leaves the article findable by slug and by the LIKE
	// fallback, so it only costs search relevance, not data.
	if err := s.index(ctx, article); err != nil {
		s.logger.Warn("Failed to index help article", zap.Error(err), zap.String("slug", article.Slug))
	}

	s.logger.Info("Help article created", zap.String("slug", article.Slug))
	return article, nil
}

// BySlug returns one published article.
func (s *Service) BySlug(ctx context.Context, articleSlug string) (*Article, error) {
	return s.repo.FindBySlug(ctx, articleSlug)
}

// List returns published articles visible to the given audience.
func (s *Service) List(ctx context.Context, audience string) ([]Article, error) {
	return s.repo.ListPublished(ctx, audience)
}

// Search queries the search index and falls back to a database scan when the
// index is unavailable or the query fails.
func (s *Service) Search(ctx context.Context, query string) ([]Article, error) {
	if s.es == nil {
		return s.repo.SearchLike(ctx, query)
	}

	slugs, err := s.searchIndex(ctx, query)
	if err != nil {
		s.logger.Warn("Search index query failed, falling back to database scan",
			zap.Error(err), zap.String("query", query))
		return s.repo.SearchLike(ctx, query)
	}

	articles := make([]Article, 0, len(slugs))
	for _, hit := range slugs {
		article, findErr := s.repo.FindBySlug(ctx, hit)
		if findErr != nil {
			// Index can lag deletes; skip stale hits.
			continue
		}
		articles = append(articles, *article)
	}
	return articles, nil
}

// ReindexAll pushes every published article into the search index. Used by
// the sync-help-articles CLI command after index rebuilds.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	if s.es == nil {
		return 0, fmt.Errorf("elasticsearch client is not configured")
	}
	articles, err := s.repo.ListPublished(ctx, AudienceAll)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for i := range articles {
		if err := s.index(ctx, &articles[i]); err != nil {
			s.logger.Warn("Failed to reindex help article",
				zap.Error(err), zap.String("slug", articles[i].Slug))
			continue
		}
		indexed++
	}
	return indexed, nil
}

func (s *Service) index(ctx context.Context, article *Article) error {
	if s.es == nil {
		return nil
	}
	doc := esDocument{
		Title:     article.Title,
		Slug:      article.Slug,
		Body:      article.Body,
		Category:  article.Category,
		Audience:  article.Audience,
		Published: article.Published,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal article document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      elasticsearch.HelpArticlesIndexName,
		DocumentID: article.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("index article: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index article: status %s", res.Status())
	}
	return nil
}

// searchIndex runs a multi-match query over title and body and returns the
// matching slugs in relevance order.
func (s *Service) searchIndex(ctx context.Context, query string) ([]string, error) {
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "body"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"published": true},
				},
			},
		},
		"size":    25,
		"_source": []string{"slug"},
	}
	body, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(elasticsearch.HelpArticlesIndexName),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search request: status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					Slug string `json:"slug"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	slugs := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		slugs = append(slugs, hit.Source.Slug)
	}
	return slugs, nil
}

// toResponses maps a slice of articles to API shapes.
func toResponses(articles []Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, ToResponse(&articles[i]))
	}
	return out
}

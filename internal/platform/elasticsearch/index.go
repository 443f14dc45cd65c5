package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const HelpArticlesIndexName = "help_articles"

// defineHelpArticlesMapping returns the JSON string for the help articles index mapping.
func defineHelpArticlesMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":      map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":       map[string]interface{}{"type": "keyword"},
				"body":       map[string]interface{}{"type": "text"},
				"category":   map[string]interface{}{"type": "keyword"},
				"audience":   map[string]interface{}{"type": "keyword"}, // "student", "teacher", "all"
				"published":  map[string]interface{}{"type": "boolean"},
				"created_at": map[string]interface{}{"type": "date"},
				"updated_at": map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling help articles mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateHelpArticlesIndexIfNotExists creates the help articles index with the
// defined mapping if it does not already exist.
func CreateHelpArticlesIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{HelpArticlesIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if help articles index exists", zap.Error(err))
		return fmt.Errorf("error checking if help articles index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Help articles index already exists", zap.String("index_name", HelpArticlesIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if help articles index exists, unexpected status",
			zap.String("status", res.Status()),
			zap.String("index_name", HelpArticlesIndexName),
		)
		return fmt.Errorf("error checking if help articles index exists: status %s", res.Status())
	}

	mappingJSON, err := defineHelpArticlesMapping()
	if err != nil {
		log.Error("Failed to define help articles mapping", zap.Error(err))
		return err
	}

	createReq := esapi.IndicesCreateRequest{
		Index: HelpArticlesIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating help articles index", zap.Error(err), zap.String("index_name", HelpArticlesIndexName))
		return fmt.Errorf("error creating help articles index %s: %w", HelpArticlesIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse help articles index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create help articles index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", HelpArticlesIndexName),
			)
		}
		return fmt.Errorf("failed to create help articles index %s: status %s", HelpArticlesIndexName, createRes.Status())
	}

	log.Info("Help articles index created successfully", zap.String("index_name", HelpArticlesIndexName))
	return nil
}

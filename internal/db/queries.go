// Package db provides SurrealDB query functions for summary operations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// QuerySearchSummaries performs a knn vector search over one user's
// summaries. The user filter is part of the query itself, never optional:
// every row returned carries the caller's user_id.
// Results come back in index order (nearest first).
func (c *Client) QuerySearchSummaries(
	ctx context.Context,
	embedding []float32,
	userID string,
	limit int,
) ([]models.Summary, error) {
	// HNSW knn with ef=40 for recall, matching the index definition
	sql := fmt.Sprintf(`
		SELECT id, user_id, conversation_id, content, created_at
		FROM summary
		WHERE user_id = $user_id AND embedding <|%d,40|> $emb
	`, limit)

	vars := map[string]any{
		"user_id": userID,
		"emb":     embedding,
	}

	results, err := surrealdb.Query[[]models.Summary](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search summaries: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.Summary{}, nil
}

// QueryCreateSummary inserts a summary row. The query path never calls
// this; it exists for the external embedding pipeline and for tests.
func (c *Client) QueryCreateSummary(
	ctx context.Context,
	userID string,
	conversationID string,
	content string,
	embedding []float32,
) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE summary CONTENT {
			user_id: $user_id,
			conversation_id: $conversation_id,
			content: $content,
			embedding: $embedding,
			created_at: $created_at
		}
	`, map[string]any{
		"user_id":         userID,
		"conversation_id": conversationID,
		"content":         content,
		"embedding":       embedding,
		"created_at":      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	return nil
}

// QueryCountSummaries returns the number of stored summaries for a user.
func (c *Client) QueryCountSummaries(ctx context.Context, userID string) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}

	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM summary WHERE user_id = $user_id GROUP ALL
	`, map[string]any{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Count, nil
	}
	return 0, nil
}

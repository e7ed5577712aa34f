// Package retriever adapts the vector index into user-scoped document
// retrieval for the query pipeline.
package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/recall-go/internal/models"
)

// DefaultK is the fixed similarity-search result cap.
const DefaultK = 4

// Searcher is the index search operation the retriever depends on.
// *db.Client implements it.
type Searcher interface {
	QuerySearchSummaries(ctx context.Context, embedding []float32, userID string, limit int) ([]models.Summary, error)
}

// Embedder turns a search query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever performs user-scoped top-k similarity search and normalizes
// hits into documents. Every search carries the user filter; an empty
// user id fails closed with zero documents rather than risking a
// cross-user query.
type Retriever struct {
	searcher Searcher
	embedder Embedder
	k        int
	logger   *slog.Logger
}

// New creates a retriever. A k of 0 falls back to DefaultK.
func New(searcher Searcher, embedder Embedder, k int, logger *slog.Logger) *Retriever {
	if k <= 0 {
		k = DefaultK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{searcher: searcher, embedder: embedder, k: k, logger: logger}
}

// Retrieve embeds the query and returns up to k of the user's summaries
// in index order. No relevance threshold is applied: weak matches are
// still returned when nothing better exists. An empty result is not an
// error.
func (r *Retriever) Retrieve(ctx context.Context, query, userID string) ([]models.Document, error) {
	if userID == "" {
		// Scope violation: never issue an unfiltered index query.
		r.logger.Error("retrieval without user scope refused", "query_len", len(query))
		return []models.Document{}, nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	summaries, err := r.searcher.QuerySearchSummaries(ctx, embedding, userID, r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	docs := make([]models.Document, 0, len(summaries))
	for _, s := range summaries {
		if s.UserID != userID {
			// Defense in depth: the query already filters by user.
			r.logger.Error("dropping cross-user hit", "want", userID, "got", s.UserID)
			continue
		}
		docs = append(docs, models.Document{
			Content: s.Content,
			Metadata: map[string]string{
				"conversation_id": s.ConversationID,
				"user_id":         s.UserID,
			},
		})
	}

	r.logger.Debug("retrieval complete", "user_id", userID, "k", r.k, "hits", len(docs))
	return docs, nil
}

// BuildContext concatenates documents into the assembled context string:
// content plus metadata per document, blank-line separated, in retrieval
// order.
func BuildContext(docs []models.Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			meta = []byte("{}")
		}
		blocks = append(blocks, fmt.Sprintf("Content: %s\nMetadata: %s", doc.Content, meta))
	}
	return strings.Join(blocks, "\n\n")
}

package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Summary is a stored conversation summary as persisted in SurrealDB.
// Rows are written by the external embedding pipeline; the query path
// only reads them.
type Summary struct {
	ID             surrealmodels.RecordID `json:"id"`
	UserID         string                 `json:"user_id"`
	ConversationID string                 `json:"conversation_id"`
	Content        string                 `json:"content"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Document is a retrieved summary normalized for prompt assembly.
// It is a read-only snapshot; the pipeline never persists it.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// ConversationID returns the conversation identifier carried in the
// document metadata, or "" when absent.
func (d Document) ConversationID() string {
	return d.Metadata["conversation_id"]
}

// Reference is one machine-readable entry extracted from a generated
// response.
type Reference struct {
	Summary        string `json:"summary"`
	ConversationID string `json:"conversation_id"`
}

// ParsedResult is the outcome of one query call: the conversational
// answer plus the references the model grounded it on.
type ParsedResult struct {
	NaturalResponse string      `json:"natural_response"`
	References      []Reference `json:"references"`
}

package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// Generator is the opaque text-generation service the pipeline invokes.
// *llm.Model implements it; tests stub it.
type Generator interface {
	// Generate completes a single free-form prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateMessages completes a composed message sequence.
	GenerateMessages(ctx context.Context, messages []llms.MessageContent) (string, error)
}

const refinePrompt = `Given the following chat history and the current question, generate a search query:

Chat History:
%s

Current Question: %s

Refined Query:`

// Refiner rewrites a question into a retrieval-effective search query
// using the conversation history. With no history there is nothing to
// resolve, so the question passes through without a generation call.
type Refiner struct {
	generator Generator
}

// NewRefiner creates a query refiner.
func NewRefiner(generator Generator) *Refiner {
	return &Refiner{generator: generator}
}

// Refine returns the search query for a question. Read-only with respect
// to history; generation failures propagate.
func (r *Refiner) Refine(ctx context.Context, question string, history []models.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	refined, err := r.generator.Generate(ctx, fmt.Sprintf(refinePrompt, renderHistory(history), question))
	if err != nil {
		return "", fmt.Errorf("refine query: %w", err)
	}
	return strings.TrimSpace(refined), nil
}

// renderHistory formats turns as "Human:"/"AI:" lines for the rewrite
// prompt.
func renderHistory(history []models.Turn) string {
	var b strings.Builder
	for i, turn := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch turn.Role {
		case models.RoleHuman:
			b.WriteString("Human: ")
		case models.RoleAI:
			b.WriteString("AI: ")
		default:
			b.WriteString(string(turn.Role) + ": ")
		}
		b.WriteString(turn.Text)
	}
	return b.String()
}

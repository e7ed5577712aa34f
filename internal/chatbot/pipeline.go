// Package chatbot implements the per-user retrieval-augmented query
// pipeline: query refinement, scoped retrieval, prompt composition,
// generation, and response parsing.
package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/recall-go/internal/memory"
	"github.com/raphaelgruber/recall-go/internal/metrics"
	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/raphaelgruber/recall-go/internal/retriever"
)

// DocumentRetriever is the user-scoped retrieval operation the pipeline
// depends on. *retriever.Retriever implements it.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query, userID string) ([]models.Document, error)
}

// NoMatchResponse is returned when retrieval finds nothing for the user.
const NoMatchResponse = "No matching conversations found."

// Pipeline is the per-user bundle of memory, retriever binding, and
// generation binding. One instance exists per user identity; queries on
// the same instance are serialized to keep the memory append atomic.
type Pipeline struct {
	userID    string
	memory    *memory.Memory
	retriever DocumentRetriever
	refiner   *Refiner
	generator Generator
	metrics   *metrics.Collector
	timeout   time.Duration
	logger    *slog.Logger

	mu sync.Mutex
}

// Memory returns the pipeline's conversation memory.
func (p *Pipeline) Memory() *memory.Memory {
	return p.memory
}

// UserID returns the user identity this pipeline is bound to.
func (p *Pipeline) UserID() string {
	return p.userID
}

// Query runs one full exchange: refine the question against history,
// retrieve the user's summaries, compose the grounded prompt, generate,
// parse, and only then record the exchange in memory. A failed stage
// leaves memory exactly as it was.
func (p *Pipeline) Query(ctx context.Context, input string) (models.ParsedResult, error) {
	if strings.TrimSpace(input) == "" {
		return models.ParsedResult{}, ErrEmptyInput
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	queryStart := time.Now()
	history := p.memory.Turns()

	// Refining
	refineStart := time.Now()
	refined, err := p.refiner.Refine(ctx, input, history)
	p.metrics.RecordTiming(metrics.OpRefine, time.Since(refineStart))
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if refined != input {
		p.logger.Debug("query refined", "user_id", p.userID, "refined", refined)
	}

	// Retrieving
	retrieveStart := time.Now()
	docs, err := p.retriever.Retrieve(ctx, refined, p.userID)
	p.metrics.RecordTiming(metrics.OpRetrieve, time.Since(retrieveStart))
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	// Nothing indexed matches: answer without a generation call. The
	// exchange still succeeded, so it enters memory.
	if len(docs) == 0 {
		result := models.ParsedResult{
			NaturalResponse: NoMatchResponse,
			References:      []models.Reference{},
		}
		p.memory.AppendExchange(input, result.NaturalResponse)
		p.metrics.RecordTiming(metrics.OpQuery, time.Since(queryStart))
		p.logger.Info("query complete", "user_id", p.userID, "hits", 0)
		return result, nil
	}

	// Composing + Generating
	messages := ComposePrompt(retriever.BuildContext(docs), input, history)
	generateStart := time.Now()
	raw, err := p.generator.GenerateMessages(ctx, messages)
	p.metrics.RecordTiming(metrics.OpGenerate, time.Since(generateStart))
	if err != nil {
		return models.ParsedResult{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	// Parsing is lenient and cannot fail; after it the exchange is
	// complete and memory is updated with the full model answer.
	result := Parse(raw)
	p.memory.AppendExchange(input, raw)

	p.metrics.RecordTiming(metrics.OpQuery, time.Since(queryStart))
	p.logger.Info("query complete",
		"user_id", p.userID,
		"hits", len(docs),
		"references", len(result.References),
		"duration_ms", time.Since(queryStart).Milliseconds(),
	)
	return result, nil
}

package chatbot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/recall-go/internal/memory"
	"github.com/raphaelgruber/recall-go/internal/metrics"
)

// Deps holds the shared services pipelines are built from. The generator
// and retriever bindings are created once and reused by every pipeline;
// only the memory is per-user.
type Deps struct {
	Generator      Generator
	Retriever      DocumentRetriever
	Metrics        *metrics.Collector
	Logger         *slog.Logger
	MemoryMaxTurns int
	QueryTimeout   time.Duration
}

// Manager owns the user identity to pipeline instance registry.
// Construction happens at most once per identity; steady-state lookups
// take only a read lock since instances are never removed or reassigned.
type Manager struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
	deps      Deps
}

// NewManager creates a session manager.
func NewManager(deps Deps) *Manager {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		pipelines: make(map[string]*Pipeline),
		deps:      deps,
	}
}

// GetOrCreate returns the pipeline for a user identity, constructing it
// on first access. Repeated calls for the same identity return the same
// instance.
func (m *Manager) GetOrCreate(userID string) (*Pipeline, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	m.mu.RLock()
	p, ok := m.pipelines[userID]
	m.mu.RUnlock()
	if ok {
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check again: another caller may have constructed it while we
	// waited for the write lock.
	if p, ok := m.pipelines[userID]; ok {
		return p, nil
	}

	p = &Pipeline{
		userID:    userID,
		memory:    memory.New(m.deps.MemoryMaxTurns),
		retriever: m.deps.Retriever,
		refiner:   NewRefiner(m.deps.Generator),
		generator: m.deps.Generator,
		metrics:   m.deps.Metrics,
		timeout:   m.deps.QueryTimeout,
		logger:    m.deps.Logger.With("user_id", userID),
	}
	m.pipelines[userID] = p

	m.deps.Logger.Info("pipeline created", "user_id", userID)
	return p, nil
}

// Get returns the pipeline for an already-constructed user session, or
// ErrUnknownUser. Callers that require an authenticated, pre-established
// session use this instead of GetOrCreate.
func (m *Manager) Get(userID string) (*Pipeline, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pipelines[userID]
	if !ok {
		return nil, ErrUnknownUser
	}
	return p, nil
}

// Metrics returns the shared metrics collector.
func (m *Manager) Metrics() *metrics.Collector {
	return m.deps.Metrics
}

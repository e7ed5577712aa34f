// Package memory provides the per-user conversation buffer.
package memory

import (
	"sync"

	"github.com/raphaelgruber/recall-go/internal/models"
)

// DefaultMaxTurns bounds a conversation buffer to 25 exchanges.
const DefaultMaxTurns = 50

// Memory is an ordered, append-only log of conversation turns for one
// user's active session. A single pipeline instance owns each Memory;
// the mutex covers the defensive case of concurrent queries for the
// same user.
//
// Growth is bounded: when an append would exceed maxTurns, the oldest
// turns are dropped in whole exchanges so the log always starts with a
// human turn. A maxTurns of 0 disables eviction.
type Memory struct {
	mu       sync.Mutex
	turns    []models.Turn
	maxTurns int
}

// New creates a Memory bounded to maxTurns entries.
func New(maxTurns int) *Memory {
	return &Memory{maxTurns: maxTurns}
}

// Turns returns a snapshot of the conversation history in dialogue order.
func (m *Memory) Turns() []models.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of stored turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// AppendExchange appends a human/AI turn pair atomically. Callers invoke
// it only after a fully successful exchange; a failed query must leave
// the memory untouched.
func (m *Memory) AppendExchange(question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, models.HumanTurn(question), models.AITurn(answer))

	if m.maxTurns > 0 && len(m.turns) > m.maxTurns {
		drop := len(m.turns) - m.maxTurns
		if drop%2 != 0 {
			drop++ // keep exchanges whole
		}
		m.turns = m.turns[drop:]
	}
}

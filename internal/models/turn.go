// Package models holds the shared data types for the recall pipeline.
package models

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleHuman marks a turn written by the user.
	RoleHuman Role = "human"

	// RoleAI marks a turn written by the assistant.
	RoleAI Role = "ai"
)

// Turn is a single (role, text) entry in a conversation.
// Turns are immutable once appended to a memory.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// HumanTurn builds a user turn.
func HumanTurn(text string) Turn {
	return Turn{Role: RoleHuman, Text: text}
}

// AITurn builds an assistant turn.
func AITurn(text string) Turn {
	return Turn{Role: RoleAI, Text: text}
}

package chatbot

import "errors"

// Sentinel errors for the query pipeline and session manager.
// Use errors.Is() to check for these in calling code.
var (
	// ErrInvalidUserID indicates an empty or otherwise unusable user identifier.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrUnknownUser indicates a query against a user with no constructed
	// pipeline. This is a usage error, not a runtime data error.
	ErrUnknownUser = errors.New("unknown user")

	// ErrEmptyInput indicates a blank question.
	ErrEmptyInput = errors.New("empty input")

	// ErrRetrieval indicates the vector index was unreachable or erroring.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the generation service was unreachable,
	// rate-limited, or erroring.
	ErrGeneration = errors.New("generation failed")
)

package services

import (
	"context"

	"github.com/kbecker42/intrigue-engine/pkg/chat"
)

// LLMService defines the interface for interacting with a text
// generation backend. Implementations return the raw assistant
// message; parsing and validation happen downstream.
type LLMService interface {
	// Chat generates a completion for the given message sequence.
	Chat(ctx context.Context, messages []chat.Message) (string, error)

	// ModelName reports the model the service is configured to use.
	ModelName() string
}

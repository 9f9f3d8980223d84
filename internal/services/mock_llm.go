package services

import (
	"context"
	"sync"

	"github.com/kbecker42/intrigue-engine/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing.
// Responses are popped from a queue, so a test can script a bad
// first attempt followed by a good retry.
type MockLLM struct {
	ChatFunc func(ctx context.Context, messages []chat.Message) (string, error)

	mu        sync.Mutex
	responses []string
	ChatCalls [][]chat.Message
}

var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a mock that replies with the given responses in
// order. The last response repeats once the queue runs dry.
func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{responses: responses}
}

func (m *MockLLM) ModelName() string {
	return "mock"
}

func (m *MockLLM) Chat(ctx context.Context, messages []chat.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, messages)

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}

	if len(m.responses) == 0 {
		return defaultMockPayload, nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

// CallCount reports how many completions have been requested.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

const defaultMockPayload = `{
  "title": "The Geneva Protocol",
  "text": "Rain hammers the windows of the Hotel Beau-Rivage as you slide into a corner booth. Across the lobby, a man in a charcoal suit pretends to read Le Monde.",
  "choices": [
    {"text": "Approach the man directly", "consequence": "He may bolt, or he may talk."},
    {"text": "Slip out through the service entrance", "consequence": "You lose the tail but also the lead."},
    {"text": "Order a drink and wait", "consequence": "Patience has its own risks."}
  ],
  "characters": [
    {"name": "Viktor Sorokin", "role": "informant", "status": "nervous"}
  ],
  "mission": {
    "title": "The Geneva Ledger",
    "description": "Recover the encrypted ledger before it reaches the auction.",
    "giver": "Control",
    "target": "Viktor Sorokin",
    "target_location": "Hotel Beau-Rivage",
    "objective": "Recover the ledger",
    "reward": {"currency": "💵", "amount": 1500}
  },
  "currentTime": "Day 1, 21:15",
  "currentLocation": "Geneva, Hotel Beau-Rivage"
}`

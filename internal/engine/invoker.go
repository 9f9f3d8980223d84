package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kbecker42/intrigue-engine/internal/services"
	"github.com/kbecker42/intrigue-engine/pkg/apperr"
	"github.com/kbecker42/intrigue-engine/pkg/chat"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// Invoker drives the generation backend for one turn: bounded
// timeout, JSON extraction, schema validation, and a single fresh
// retry when the first reply is unusable. No partial output ever
// reaches game state.
type Invoker struct {
	llm     services.LLMService
	timeout time.Duration
	logger  *slog.Logger
}

func NewInvoker(llm services.LLMService, timeout time.Duration, logger *slog.Logger) *Invoker {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Invoker{llm: llm, timeout: timeout, logger: logger}
}

// Invoke requests a completion and returns the validated payload. The
// timeout bounds the whole invocation including the retry.
func (inv *Invoker) Invoke(ctx context.Context, messages []chat.Message) (*story.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	payload, err := inv.attempt(ctx, messages)
	if err == nil {
		return payload, nil
	}

	if ctx.Err() != nil {
		return nil, apperr.Wrap(apperr.KindGeneration, "generation timed out", ctx.Err())
	}

	inv.logger.Warn("Generation attempt failed, retrying once",
		"model", inv.llm.ModelName(), "error", err)

	payload, retryErr := inv.attempt(ctx, messages)
	if retryErr != nil {
		return nil, apperr.Wrap(apperr.KindGeneration, "generation failed after retry", retryErr)
	}
	return payload, nil
}

func (inv *Invoker) attempt(ctx context.Context, messages []chat.Message) (*story.Payload, error) {
	raw, err := inv.llm.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	extracted, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	if err := validateAgainstSchema([]byte(extracted)); err != nil {
		return nil, err
	}

	var payload story.Payload
	if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return &payload, nil
}

package engine

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/prompts"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// ContextBuilder assembles the ephemeral narrative context for one
// generation turn from persisted state. Missing or partially loadable
// state degrades to documented defaults; Build never fails, it only
// logs what it had to leave out.
type ContextBuilder struct {
	store  storage.Storage
	logger *slog.Logger
}

func NewContextBuilder(store storage.Storage, logger *slog.Logger) *ContextBuilder {
	return &ContextBuilder{store: store, logger: logger}
}

// Build assembles the turn context. prev is the story node being
// continued, or nil for a new story; choice is the player's selected
// or custom choice text, empty for a new story.
func (cb *ContextBuilder) Build(ctx context.Context, userID string, prev *story.Story, choice string) *prompts.Context {
	out := &prompts.Context{
		PreviousStoryText: prev.Text(),
		UserChoice:        choice,
		CurrencyBalances:  game.DefaultCurrencyBalances(),
		Level:             1,
		CurrentTime:       prompts.DefaultStartTime,
		CurrentLocation:   prompts.DefaultStartLocation,
	}

	if prev != nil {
		if prev.CurrentTime != "" {
			out.CurrentTime = prev.CurrentTime
		}
		if prev.CurrentLocation != "" {
			out.CurrentLocation = prev.CurrentLocation
		}
	}

	progress, err := cb.store.GetProgress(ctx, userID)
	if err != nil {
		cb.logger.Warn("Building context without progress", "user_id", userID, "error", err)
		return out
	}
	if progress == nil {
		return out
	}

	out.CurrencyBalances = progress.CurrencyBalances
	out.Level = progress.Level
	out.Relationships = relationshipSummaries(progress)

	missions, err := cb.store.GetActiveMissions(ctx, userID)
	if err != nil {
		cb.logger.Warn("Building context without active missions", "user_id", userID, "error", err)
		return out
	}
	for _, m := range missions {
		out.ActiveMissions = append(out.ActiveMissions, prompts.MissionSummary{
			Title:          m.Title,
			Objective:      m.Objective,
			Progress:       m.Progress,
			TargetLocation: m.TargetLocation,
			ReturnLocation: m.ReturnLocation,
			Deadline:       m.Deadline,
		})
	}

	return out
}

func relationshipSummaries(p *game.UserProgress) []prompts.RelationshipSummary {
	if len(p.EncounteredCharacters) == 0 {
		return nil
	}
	out := make([]prompts.RelationshipSummary, 0, len(p.EncounteredCharacters))
	for _, enc := range p.EncounteredCharacters {
		out = append(out, prompts.RelationshipSummary{
			Name:     enc.Name,
			Strength: enc.RelationshipLevel,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kbecker42/intrigue-engine/internal/services"
	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/apperr"
	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/prompts"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// Relationship effects of mission outcomes.
const (
	relationshipGiverCompleted = 2
	relationshipTargetDefeated = -3
	relationshipGiverFailed    = -1
)

// Engine runs the story turn pipeline: context assembly, prompt
// construction, generation, validation and reconciliation. Turns for
// the same user are serialized; turns for different users proceed
// concurrently.
type Engine struct {
	store      storage.Storage
	invoker    *Invoker
	contexts   *ContextBuilder
	reconciler *Reconciler
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store storage.Storage, llm services.LLMService, timeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		invoker:    NewInvoker(llm, timeout, logger),
		contexts:   NewContextBuilder(store, logger),
		reconciler: NewReconciler(store, logger),
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing one user's turns.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// StartStory generates the opening node of a new story line from the
// player-selected parameters.
func (e *Engine) StartStory(ctx context.Context, userID string, params story.Params) (*TurnResult, error) {
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	if err := params.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid story parameters", err)
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	turnCtx := e.contexts.Build(ctx, userID, nil, "")
	messages, err := prompts.New().
		WithParams(params).
		WithContext(turnCtx).
		WithNewStory(true).
		Build()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "failed to build prompt", err)
	}

	// Generation outlives the caller: once a turn is in flight it
	// commits even if the request that started it goes away.
	payload, err := e.invoker.Invoke(context.WithoutCancel(ctx), messages)
	if err != nil {
		return nil, err
	}

	result, err := e.reconciler.Commit(context.WithoutCancel(ctx), &Turn{
		UserID:           userID,
		Params:           params.Resolve(),
		Payload:          payload,
		FallbackTime:     turnCtx.CurrentTime,
		FallbackLocation: turnCtx.CurrentLocation,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Story started",
		"user_id", userID,
		"story_id", result.Story.ID,
		"title", payload.Title)
	return result, nil
}

// ChoiceRequest is the player's decision for a continuation turn.
// Text is the choice text as offered, or the player's free-form input
// when Custom is set.
type ChoiceRequest struct {
	Text   string `json:"text"`
	Custom bool   `json:"custom,omitempty"`
}

// ApplyChoice advances the player's current story by one turn. The
// cost of a priced choice is checked before generation; an
// unaffordable choice fails fast without touching any state.
func (e *Engine) ApplyChoice(ctx context.Context, userID string, req ChoiceRequest) (*TurnResult, error) {
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Validation("choice text is required")
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := e.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load progress", err)
	}
	if progress == nil || progress.CurrentStoryID == 0 {
		return nil, apperr.NotFound("active story for user", userID)
	}

	prev, err := e.store.GetStory(ctx, progress.CurrentStoryID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load story", err)
	}
	if prev == nil {
		return nil, apperr.NotFound("story", progress.CurrentStoryID)
	}

	choiceText, cost, err := resolveChoice(prev, req)
	if err != nil {
		return nil, err
	}
	if len(cost) > 0 {
		if currency, ok := progress.CanAfford(cost); !ok {
			return nil, apperr.InsufficientFunds(currency)
		}
	}

	params := story.Params{
		Conflict:       prev.Conflict,
		Setting:        prev.Setting,
		NarrativeStyle: prev.NarrativeStyle,
		Mood:           prev.Mood,
	}

	turnCtx := e.contexts.Build(ctx, userID, prev, choiceText)
	messages, err := prompts.New().
		WithParams(params).
		WithContext(turnCtx).
		WithNewStory(false).
		Build()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "failed to build prompt", err)
	}

	payload, err := e.invoker.Invoke(context.WithoutCancel(ctx), messages)
	if err != nil {
		return nil, err
	}

	result, err := e.reconciler.Commit(context.WithoutCancel(ctx), &Turn{
		UserID:           userID,
		Params:           params.Resolve(),
		Payload:          payload,
		ParentStoryID:    prev.ID,
		ChoiceText:       choiceText,
		Cost:             cost,
		FallbackTime:     turnCtx.CurrentTime,
		FallbackLocation: turnCtx.CurrentLocation,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Choice applied",
		"user_id", userID,
		"story_id", result.Story.ID,
		"parent_story_id", prev.ID,
		"custom", req.Custom)
	return result, nil
}

// resolveChoice maps the request onto the choices offered by the
// previous node. Custom input bypasses the offered list and carries
// the custom prefix; it has no cost.
func resolveChoice(prev *story.Story, req ChoiceRequest) (string, map[string]int, error) {
	text := strings.TrimSpace(req.Text)
	if req.Custom {
		return prompts.CustomChoicePrefix + " " + text, nil, nil
	}

	if prev.Payload != nil {
		for _, c := range prev.Payload.Choices {
			if c.Text == text {
				if c.Cost != nil {
					return text, c.Cost.Requirements(), nil
				}
				return text, nil, nil
			}
		}
	}
	return "", nil, apperr.Validation("choice does not match any offered choice")
}

// MissionOutcome is what a mission resolution hands back.
type MissionOutcome struct {
	Mission   *game.Mission      `json:"mission"`
	Progress  *game.UserProgress `json:"progress"`
	XPAwarded int                `json:"xpAwarded,omitempty"`
	LeveledUp bool               `json:"leveledUp,omitempty"`
}

// CompleteMission resolves an active mission as completed: credits the
// reward, awards experience, and shifts relationships with the giver
// and the target.
func (e *Engine) CompleteMission(ctx context.Context, userID string, missionID int64) (*MissionOutcome, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	mission, progress, err := e.loadMission(ctx, userID, missionID)
	if err != nil {
		return nil, err
	}

	if !mission.Complete() {
		return nil, apperr.Validation("mission is not active")
	}

	progress.AddCurrency(mission.RewardCurrency, mission.RewardAmount)
	xp := mission.XPReward()
	leveledUp := progress.AddExperience(xp)

	progress.RemoveActiveMission(mission.ID)
	progress.CompletedMissionIDs = append(progress.CompletedMissionIDs, mission.ID)

	if mission.GiverID != "" {
		progress.ChangeRelationship(mission.GiverID, relationshipGiverCompleted, "mission completed")
	}
	if mission.TargetID != "" {
		progress.ChangeRelationship(mission.TargetID, relationshipTargetDefeated, "targeted by completed mission")
	}

	if err := e.saveMissionOutcome(ctx, mission, progress); err != nil {
		return nil, err
	}

	e.logger.Info("Mission completed",
		"user_id", userID,
		"mission_id", mission.ID,
		"xp", xp,
		"leveled_up", leveledUp,
		"reward_currency", mission.RewardCurrency,
		"reward_amount", mission.RewardAmount)

	return &MissionOutcome{
		Mission:   mission,
		Progress:  progress,
		XPAwarded: xp,
		LeveledUp: leveledUp,
	}, nil
}

// FailMission resolves an active mission as failed. No reward, no
// experience, and the giver thinks less of the player.
func (e *Engine) FailMission(ctx context.Context, userID string, missionID int64, reason string) (*MissionOutcome, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	mission, progress, err := e.loadMission(ctx, userID, missionID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "Mission failed"
	}
	if !mission.Fail(reason) {
		return nil, apperr.Validation("mission is not active")
	}

	progress.RemoveActiveMission(mission.ID)
	progress.FailedMissionIDs = append(progress.FailedMissionIDs, mission.ID)

	if mission.GiverID != "" {
		progress.ChangeRelationship(mission.GiverID, relationshipGiverFailed, "mission failed")
	}

	if err := e.saveMissionOutcome(ctx, mission, progress); err != nil {
		return nil, err
	}

	e.logger.Info("Mission failed",
		"user_id", userID,
		"mission_id", mission.ID,
		"reason", reason)

	return &MissionOutcome{Mission: mission, Progress: progress}, nil
}

func (e *Engine) loadMission(ctx context.Context, userID string, missionID int64) (*game.Mission, *game.UserProgress, error) {
	mission, err := e.store.GetMission(ctx, missionID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindPersistence, "failed to load mission", err)
	}
	if mission == nil || mission.UserID != userID {
		return nil, nil, apperr.NotFound("mission", missionID)
	}

	progress, err := e.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindPersistence, "failed to load progress", err)
	}
	if progress == nil {
		progress = game.NewProgress(userID)
	}
	return mission, progress, nil
}

func (e *Engine) saveMissionOutcome(ctx context.Context, mission *game.Mission, progress *game.UserProgress) error {
	if err := e.store.SaveMission(ctx, mission); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "failed to persist mission", err)
	}
	if err := e.store.SaveProgress(ctx, progress); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "failed to persist progress", err)
	}
	return nil
}

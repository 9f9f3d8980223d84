package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/apperr"
	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// Reconciler commits the outcome of a validated generation turn to
// the entity store. The story node and the progress rewrite are the
// transaction's backbone and fail the turn; mission creation and
// character evolution are best-effort bookkeeping that only log.
type Reconciler struct {
	store  storage.Storage
	logger *slog.Logger
}

func NewReconciler(store storage.Storage, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Turn carries one validated generation outcome into persistence.
type Turn struct {
	UserID  string
	Params  story.Resolved
	Payload *story.Payload

	// Continuation fields, zero for a new story.
	ParentStoryID int64
	ChoiceText    string
	Cost          map[string]int

	// Carried forward when the payload omits time or location.
	FallbackTime     string
	FallbackLocation string
}

// TurnResult is what a committed turn hands back to the caller.
type TurnResult struct {
	Story      *story.Story       `json:"story"`
	Progress   *game.UserProgress `json:"progress"`
	NewMission *game.Mission      `json:"newMission,omitempty"`
}

// Commit persists a turn. The caller holds the user's turn lock and
// has already validated affordability of the choice cost.
func (r *Reconciler) Commit(ctx context.Context, t *Turn) (*TurnResult, error) {
	s := &story.Story{
		UserID:          t.UserID,
		Conflict:        t.Params.Conflict,
		Setting:         t.Params.Setting,
		NarrativeStyle:  t.Params.NarrativeStyle,
		Mood:            t.Params.Mood,
		Payload:         t.Payload,
		CurrentTime:     t.Payload.CurrentTime,
		CurrentLocation: t.Payload.CurrentLocation,
		ParentStoryID:   t.ParentStoryID,
	}
	if s.CurrentTime == "" {
		s.CurrentTime = t.FallbackTime
	}
	if s.CurrentLocation == "" {
		s.CurrentLocation = t.FallbackLocation
	}

	if err := r.store.CreateStory(ctx, s); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to persist story", err)
	}

	progress, err := r.store.GetProgress(ctx, t.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load progress", err)
	}
	if progress == nil {
		progress = game.NewProgress(t.UserID)
		r.ensureUser(ctx, t.UserID)
	}

	if len(t.Cost) > 0 {
		if !progress.Deduct(t.Cost) {
			currency, _ := progress.CanAfford(t.Cost)
			return nil, apperr.InsufficientFunds(currency)
		}
	}

	if t.ChoiceText != "" {
		progress.RecordChoice(t.ChoiceText, s.ID)
	} else {
		progress.CurrentStoryID = s.ID
	}

	result := &TurnResult{Story: s, Progress: progress}
	result.NewMission = r.reconcileMission(ctx, t.UserID, s.ID, t.Payload.Mission, progress)
	r.reconcileCharacters(ctx, t.UserID, s.ID, t.Payload, progress)

	if err := r.store.SaveProgress(ctx, progress); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to persist progress", err)
	}

	return result, nil
}

// ensureUser creates the user record the first time a player shows
// up. Best-effort; the record is bookkeeping, not a prerequisite.
func (r *Reconciler) ensureUser(ctx context.Context, userID string) {
	u, err := r.store.GetUser(ctx, userID)
	if err != nil || u != nil {
		return
	}
	if err := r.store.SaveUser(ctx, &game.User{ID: userID, CreatedAt: time.Now().UTC()}); err != nil {
		r.logger.Warn("Failed to save user record", "user_id", userID, "error", err)
	}
}

// reconcileMission activates the payload's mission unless an active
// mission with the same title already exists. Re-activation of a
// mission the generator keeps repeating must not duplicate records.
func (r *Reconciler) reconcileMission(ctx context.Context, userID string, storyID int64, block *story.MissionBlock, progress *game.UserProgress) *game.Mission {
	if block == nil || block.Title == "" {
		return nil
	}

	active, err := r.store.GetActiveMissions(ctx, userID)
	if err != nil {
		r.logger.Warn("Skipping mission reconciliation", "user_id", userID, "error", err)
		return nil
	}
	for _, m := range active {
		if m.Title == block.Title {
			return nil
		}
	}

	mission := game.MissionFromBlock(userID, storyID, block)
	if err := r.store.CreateMission(ctx, mission); err != nil {
		r.logger.Warn("Failed to create mission", "user_id", userID, "title", block.Title, "error", err)
		return nil
	}
	progress.ActiveMissionIDs = append(progress.ActiveMissionIDs, mission.ID)

	r.logger.Info("Mission activated",
		"user_id", userID,
		"mission_id", mission.ID,
		"title", mission.Title,
		"difficulty", mission.Difficulty)
	return mission
}

// reconcileCharacters records encounters on progress and merges each
// featured character into its evolution record. Evolution history is
// append-only; a re-encounter never resets anything.
func (r *Reconciler) reconcileCharacters(ctx context.Context, userID string, storyID int64, payload *story.Payload, progress *game.UserProgress) {
	for _, ref := range payload.Characters {
		if ref.Name == "" {
			continue
		}
		key := game.CharacterKey(ref.Name)
		progress.EncounterCharacter(key, game.DisplayName(ref.Name))

		ce, err := r.store.GetCharacter(ctx, userID, key)
		if err != nil {
			r.logger.Warn("Skipping character evolution", "user_id", userID, "character_id", key, "error", err)
			continue
		}
		if ce == nil {
			ce = game.NewCharacterEvolution(userID, key, storyID, ref.Role)
		} else {
			ce.RecordInteraction(storyID, payload.Text)
			if ref.Role != "" && ce.Role == "" {
				ce.Role = ref.Role
			} else if ref.Role != "" && ref.Role != ce.Role {
				ce.UpdateRole(ref.Role, "story development")
			}
		}

		if err := r.store.SaveCharacter(ctx, ce); err != nil {
			r.logger.Warn("Failed to save character evolution", "user_id", userID, "character_id", key, "error", err)
		}
	}
}

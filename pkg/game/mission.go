package game

import (
	"time"

	"github.com/kbecker42/intrigue-engine/pkg/story"
)

const (
	MissionStatusActive    = "active"
	MissionStatusCompleted = "completed"
	MissionStatusFailed    = "failed"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// XP awarded on completion, by difficulty.
var missionXPRewards = map[string]int{
	DifficultyEasy:   50,
	DifficultyMedium: 100,
	DifficultyHard:   200,
}

// Typical reward amounts per currency, used to derive difficulty
// when the generator doesn't state one.
var baseRewards = map[string]int{
	"💎": 1,
	"💵": 1500,
	"💷": 1400,
	"💶": 1450,
	"💴": 150000,
}

// MissionProgressUpdate is one entry in a mission's progress log.
type MissionProgressUpdate struct {
	Progress    int       `json:"progress,omitempty"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Mission is an objective handed to the player by a mission-giver
// character, with a currency reward on completion. Missions move
// active → completed or active → failed, never back.
type Mission struct {
	ID              int64                   `json:"id"`
	UserID          string                  `json:"userId"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	GiverID         string                  `json:"giverId,omitempty"`
	TargetID        string                  `json:"targetId,omitempty"`
	TargetLocation  string                  `json:"targetLocation,omitempty"`
	ReturnLocation  string                  `json:"returnLocation,omitempty"`
	Objective       string                  `json:"objective"`
	Difficulty      string                  `json:"difficulty"`
	RewardCurrency  string                  `json:"rewardCurrency"`
	RewardAmount    int                     `json:"rewardAmount"`
	Deadline        string                  `json:"deadline,omitempty"`
	Status          string                  `json:"status"`
	Progress        int                     `json:"progress"` // 0..100
	StoryID         int64                   `json:"storyId,omitempty"`
	ProgressUpdates []MissionProgressUpdate `json:"progressUpdates,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// DeriveDifficulty classifies a reward against the typical amount for
// its currency: above 1.5× is medium, above 2.5× is hard.
func DeriveDifficulty(currency string, amount int) string {
	base, ok := baseRewards[currency]
	if !ok || base <= 0 {
		return DifficultyMedium
	}
	switch {
	case float64(amount) > float64(base)*2.5:
		return DifficultyHard
	case float64(amount) > float64(base)*1.5:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// MissionFromBlock maps a generated mission block onto a Mission
// record in active status. Missing reward fields fall back to the
// dollar default; difficulty is derived when absent.
func MissionFromBlock(userID string, storyID int64, b *story.MissionBlock) *Mission {
	currency := b.Reward.Currency
	if currency == "" {
		currency = "💵"
	}
	amount := b.Reward.Amount.Int()
	if amount <= 0 {
		amount = 1500
	}

	difficulty := b.Difficulty
	if difficulty == "" {
		difficulty = DeriveDifficulty(currency, amount)
	}

	giverID := b.GiverID
	if giverID == "" && b.Giver != "" {
		giverID = CharacterKey(b.Giver)
	}
	targetID := b.TargetID
	if targetID == "" && b.Target != "" {
		targetID = CharacterKey(b.Target)
	}

	return &Mission{
		UserID:         userID,
		Title:          b.Title,
		Description:    b.Description,
		GiverID:        giverID,
		TargetID:       targetID,
		TargetLocation: b.TargetLocation,
		ReturnLocation: b.ReturnLocation,
		Objective:      b.Objective,
		Difficulty:     difficulty,
		RewardCurrency: currency,
		RewardAmount:   amount,
		Deadline:       b.Deadline,
		Status:         MissionStatusActive,
		StoryID:        storyID,
		CreatedAt:      time.Now().UTC(),
	}
}

// XPReward returns the experience awarded for completing the mission.
func (m *Mission) XPReward() int {
	if xp, ok := missionXPRewards[m.Difficulty]; ok {
		return xp
	}
	return missionXPRewards[DifficultyEasy]
}

// Complete transitions the mission to completed with full progress.
// Reports false if the mission is not active.
func (m *Mission) Complete() bool {
	if m.Status != MissionStatusActive {
		return false
	}
	now := time.Now().UTC()
	m.Status = MissionStatusCompleted
	m.Progress = 100
	m.CompletedAt = &now
	m.ProgressUpdates = append(m.ProgressUpdates, MissionProgressUpdate{
		Progress:    100,
		Status:      MissionStatusCompleted,
		Description: "Mission successfully completed!",
		Timestamp:   now,
	})
	return true
}

// Fail transitions the mission to failed. Reports false if the
// mission is not active.
func (m *Mission) Fail(reason string) bool {
	if m.Status != MissionStatusActive {
		return false
	}
	m.Status = MissionStatusFailed
	m.ProgressUpdates = append(m.ProgressUpdates, MissionProgressUpdate{
		Status:      MissionStatusFailed,
		Description: reason,
		Timestamp:   time.Now().UTC(),
	})
	return true
}

// UpdateProgress sets progress on an active mission, clamped to
// 0..100, and logs the step.
func (m *Mission) UpdateProgress(progress int, description string) bool {
	if m.Status != MissionStatusActive {
		return false
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	m.Progress = progress
	m.ProgressUpdates = append(m.ProgressUpdates, MissionProgressUpdate{
		Progress:    progress,
		Status:      MissionStatusActive,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
	return true
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbecker42/intrigue-engine/pkg/story"
)

func TestDeriveDifficulty(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		amount   int
		want     string
	}{
		{"at base", "💵", 1500, DifficultyEasy},
		{"above 1.5x", "💵", 2300, DifficultyMedium},
		{"above 2.5x", "💵", 4000, DifficultyHard},
		{"yen scale", "💴", 160000, DifficultyEasy},
		{"unknown currency", "🪙", 999, DifficultyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDifficulty(tt.currency, tt.amount))
		})
	}
}

func TestMissionFromBlock(t *testing.T) {
	block := &story.MissionBlock{
		Title:          "The Volkov Ledger",
		Description:    "Steal the ledger before dawn.",
		Giver:          "Director Hale",
		Target:         "Dmitri Volkov",
		TargetLocation: "Casino vault",
		ReturnLocation: "Paris Office",
		Objective:      "Steal the ledger",
		Reward:         story.Money{Currency: "💵", Amount: 4000},
		Deadline:       "Before sunrise",
	}

	m := MissionFromBlock("user-1", 12, block)
	assert.Equal(t, MissionStatusActive, m.Status)
	assert.Equal(t, 0, m.Progress)
	assert.Equal(t, int64(12), m.StoryID)
	assert.Equal(t, "director_hale", m.GiverID)
	assert.Equal(t, "dmitri_volkov", m.TargetID)
	assert.Equal(t, DifficultyHard, m.Difficulty)
	assert.Equal(t, 200, m.XPReward())
}

func TestMissionFromBlockDefaults(t *testing.T) {
	m := MissionFromBlock("user-1", 1, &story.MissionBlock{Title: "Untitled"})
	assert.Equal(t, "💵", m.RewardCurrency)
	assert.Equal(t, 1500, m.RewardAmount)
	assert.NotEmpty(t, m.Difficulty)
}

func TestMissionTransitions(t *testing.T) {
	m := MissionFromBlock("user-1", 1, &story.MissionBlock{Title: "T"})

	require.True(t, m.Complete())
	assert.Equal(t, MissionStatusCompleted, m.Status)
	assert.Equal(t, 100, m.Progress)
	require.NotNil(t, m.CompletedAt)

	// Completed missions cannot transition again.
	assert.False(t, m.Complete())
	assert.False(t, m.Fail("too late"))

	m2 := MissionFromBlock("user-1", 1, &story.MissionBlock{Title: "T2"})
	require.True(t, m2.Fail("deadline passed"))
	assert.Equal(t, MissionStatusFailed, m2.Status)
	require.Len(t, m2.ProgressUpdates, 1)
	assert.Equal(t, "deadline passed", m2.ProgressUpdates[0].Description)
}

func TestMissionUpdateProgressClamped(t *testing.T) {
	m := MissionFromBlock("user-1", 1, &story.MissionBlock{Title: "T"})

	assert.True(t, m.UpdateProgress(140, "almost there"))
	assert.Equal(t, 100, m.Progress)
	assert.True(t, m.UpdateProgress(-5, ""))
	assert.Equal(t, 0, m.Progress)

	m.Complete()
	assert.False(t, m.UpdateProgress(50, "ignored"))
}

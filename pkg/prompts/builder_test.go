package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbecker42/intrigue-engine/pkg/chat"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

func testParams() story.Params {
	return story.Params{
		Conflict:       "Corporate espionage",
		Setting:        "Monaco Casino",
		NarrativeStyle: "Classic Bond film",
		Mood:           "Cool and stylish",
	}
}

func testContext() *Context {
	return &Context{
		PreviousStoryText: "You dove off the yacht as it exploded behind you.",
		UserChoice:        "Swim to the casino dock",
		Relationships: []RelationshipSummary{
			{Name: "Vesper Moreau", Strength: 6},
			{Name: "Dmitri Volkov", Strength: -8},
		},
		ActiveMissions: []MissionSummary{
			{Title: "The Volkov Ledger", Objective: "Steal the ledger", Progress: 40,
				TargetLocation: "Casino vault", ReturnLocation: "Paris Office", Deadline: "Before sunrise"},
		},
		CurrencyBalances: map[string]int{"💵": 4500, "💎": 500},
		Level:            2,
		CurrentTime:      "Day 2, 23:40",
		CurrentLocation:  "Monaco harbor",
	}
}

func TestBuildNewStory(t *testing.T) {
	messages, err := New().
		WithParams(testParams()).
		WithContext(&Context{CurrencyBalances: map[string]int{"💵": 5000}, Level: 1,
			CurrentTime: DefaultStartTime, CurrentLocation: DefaultStartLocation}).
		WithNewStory(true).
		Build()
	require.NoError(t, err)

	// New story: system, params, schema instruction.
	require.Len(t, messages, 3)
	assert.Equal(t, chat.RoleSystem, messages[0].Role)
	assert.Equal(t, chat.RoleUser, messages[1].Role)
	assert.Equal(t, chat.RoleUser, messages[2].Role)

	assert.Contains(t, messages[0].Content, "mission-giver character")
	assert.Contains(t, messages[0].Content, "previously-unseen character")
	assert.Contains(t, messages[0].Content, "Classic Bond film")
	assert.Contains(t, messages[1].Content, "Primary Conflict: Corporate espionage")
	assert.Contains(t, messages[1].Content, "charismatic but reckless agent")
	assert.Equal(t, OutputSchemaInstruction, messages[2].Content)
}

func TestBuildContinuation(t *testing.T) {
	messages, err := New().
		WithParams(testParams()).
		WithContext(testContext()).
		WithNewStory(false).
		Build()
	require.NoError(t, err)

	// Continuation: system, params, context, choice, schema.
	require.Len(t, messages, 5)
	assert.Equal(t, chat.RoleAssistant, messages[2].Role)

	ctx := messages[2].Content
	assert.Contains(t, ctx, "You dove off the yacht")
	assert.Contains(t, ctx, "The Volkov Ledger")
	assert.Contains(t, ctx, "Vesper Moreau: trusted ally (+6)")
	assert.Contains(t, ctx, "Dmitri Volkov: sworn enemy (-8)")
	assert.Contains(t, ctx, "💵 4500")
	assert.Contains(t, ctx, "Player level: 2")
	assert.Contains(t, ctx, "Day 2, 23:40")
	assert.Contains(t, ctx, "travel-time plausibility")

	assert.Contains(t, messages[3].Content, "Player chose: Swim to the casino dock")
	assert.Equal(t, OutputSchemaInstruction, messages[4].Content)
}

func TestBuildCustomChoice(t *testing.T) {
	ctx := testContext()
	ctx.UserChoice = "Custom choice: seduce the harbormaster"

	messages, err := New().WithParams(testParams()).WithContext(ctx).Build()
	require.NoError(t, err)

	choiceBlock := messages[3].Content
	assert.Contains(t, choiceBlock, "Player entered a custom choice: seduce the harbormaster")
	assert.Contains(t, choiceBlock, "treating it as a direct action")
	assert.NotContains(t, choiceBlock, CustomChoicePrefix)
}

func TestBuildDeterministic(t *testing.T) {
	build := func() []chat.Message {
		messages, err := New().
			WithParams(testParams()).
			WithContext(testContext()).
			WithNewStory(false).
			Build()
		require.NoError(t, err)
		return messages
	}

	first := build()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, build())
	}
}

func TestBuildValidatesInputs(t *testing.T) {
	_, err := New().WithParams(testParams()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")

	_, err = New().WithContext(testContext()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestRelationshipTierBoundaries(t *testing.T) {
	tests := []struct {
		strength int
		want     string
	}{
		{8, TierExtremelyCloseAlly},
		{7, TierTrustedAlly},
		{5, TierTrustedAlly},
		{4, TierFriendly},
		{2, TierFriendly},
		{1, TierNeutral},
		{-1, TierNeutral},
		{-2, TierUnfriendly},
		{-4, TierUnfriendly},
		{-5, TierHostile},
		{-7, TierHostile},
		{-8, TierSwornEnemy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RelationshipTier(tt.strength), "strength %d", tt.strength)
	}
}

func TestCustomOverridesReachPrompt(t *testing.T) {
	p := testParams()
	p.CustomConflict = "Quantum vault heist"
	p.ProtagonistName = "Alex Sterling"
	p.ProtagonistGender = "male"

	messages, err := New().WithParams(p).WithContext(testContext()).WithNewStory(true).Build()
	require.NoError(t, err)

	assert.Contains(t, messages[1].Content, "Primary Conflict: Quantum vault heist")
	assert.False(t, strings.Contains(messages[1].Content, "Corporate espionage"))
	assert.Contains(t, messages[1].Content, "You are Alex Sterling, a male agent")
}

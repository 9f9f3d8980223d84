package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
	store := NewRedisStore(mr.Addr(), logger)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRedisStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisStore_StoryCreateAssignsMonotonicIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &story.Story{UserID: "user-1", Conflict: "Corporate espionage"}
	second := &story.Story{UserID: "user-1", Conflict: "Bioweapon heist"}

	require.NoError(t, store.CreateStory(ctx, first))
	require.NoError(t, store.CreateStory(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())

	loaded, err := store.GetStory(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Corporate espionage", loaded.Conflict)

	stories, err := store.GetUserStories(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, int64(1), stories[0].ID)
	assert.Equal(t, int64(2), stories[1].ID)
}

func TestRedisStore_MissReturnsNilNotError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s, err := store.GetStory(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, s)

	p, err := store.GetProgress(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)

	m, err := store.GetMission(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, m)

	ce, err := store.GetCharacter(ctx, "nobody", "ghost")
	require.NoError(t, err)
	assert.Nil(t, ce)
}

func TestRedisStore_ProgressRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := game.NewProgress("user-1")
	p.CurrencyBalances["💵"] = 4200
	p.RecordChoice("Bribe the pit boss", 1)
	require.NoError(t, store.SaveProgress(ctx, p))

	loaded, err := store.GetProgress(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 4200, loaded.CurrencyBalances["💵"])
	require.Len(t, loaded.ChoiceHistory, 1)
	assert.Equal(t, int64(1), loaded.CurrentStoryID)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisStore_ActiveMissionFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := game.MissionFromBlock("user-1", 1, &story.MissionBlock{Title: "Active"})
	done := game.MissionFromBlock("user-1", 1, &story.MissionBlock{Title: "Done"})
	other := game.MissionFromBlock("user-2", 1, &story.MissionBlock{Title: "Other user"})

	require.NoError(t, store.CreateMission(ctx, active))
	require.NoError(t, store.CreateMission(ctx, done))
	require.NoError(t, store.CreateMission(ctx, other))

	done.Complete()
	require.NoError(t, store.SaveMission(ctx, done))

	missions, err := store.GetActiveMissions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.Equal(t, "Active", missions[0].Title)
}

func TestRedisStore_CharacterUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ce := game.NewCharacterEvolution("user-1", "vesper_moreau", 1, "ally")
	require.NoError(t, store.SaveCharacter(ctx, ce))

	loaded, err := store.GetCharacter(ctx, "user-1", "vesper_moreau")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	loaded.RecordInteraction(2, "Vesper reappears in Monaco.")
	require.NoError(t, store.SaveCharacter(ctx, loaded))

	again, err := store.GetCharacter(ctx, "user-1", "vesper_moreau")
	require.NoError(t, err)
	require.Len(t, again.EvolutionLog, 1)
	assert.Equal(t, ce.ID, again.ID)

	list, err := store.ListCharacters(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisStore_StoryPayloadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := &story.Story{
		UserID: "user-1",
		Payload: &story.Payload{
			Title:      "The Monaco Gambit",
			Text:       "You stride into the casino.",
			Choices:    []story.Choice{{Text: "Bribe the pit boss"}},
			Characters: []story.CharacterRef{{Name: "Vesper Moreau"}},
			Mission:    &story.MissionBlock{Title: "The Volkov Ledger"},
		},
		CurrentTime:     "23:40",
		CurrentLocation: "Monaco Casino",
	}
	require.NoError(t, store.CreateStory(ctx, s))

	loaded, err := store.GetStory(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Payload)
	assert.Equal(t, "The Monaco Gambit", loaded.Payload.Title)
	assert.Equal(t, "Monaco Casino", loaded.CurrentLocation)
}

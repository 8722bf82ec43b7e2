package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

func savesTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestGameSaves_UpdatesRequireActiveSave(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()

	assert.Error(t, saves.CompleteLevel(ctx, "lv01-anchorage"))
	assert.Error(t, saves.RecordKills(ctx, "lv01-anchorage", 3))
	assert.Error(t, saves.RecordDeath(ctx))
	assert.Nil(t, saves.Record())
}

func TestGameSaves_NewGame(t *testing.T) {
	store := NewMemoryStore()
	saves := NewGameSaves(store, levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()

	rec, err := saves.NewGame(ctx, campaign.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, campaign.DifficultyHard, rec.Difficulty)
	assert.Equal(t, levels.ID("lv01-anchorage"), rec.CurrentLevel)

	// The slot is persisted immediately.
	stored, err := store.LatestSave(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, campaign.DifficultyHard, stored.Difficulty)
}

func TestGameSaves_LoadGameWithNoSaves(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())

	rec, err := saves.LoadGame(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGameSaves_CompleteLevelAdvancesCursor(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()

	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	require.NoError(t, saves.CompleteLevel(ctx, "lv01-anchorage"))
	rec := saves.Record()
	require.NotNil(t, rec)
	assert.Equal(t, []levels.ID{"lv01-anchorage"}, rec.CompletedLevels)
	assert.Equal(t, levels.ID("lv02-hotdrop"), rec.CurrentLevel)

	// Completing the same level again does not duplicate the entry.
	require.NoError(t, saves.CompleteLevel(ctx, "lv01-anchorage"))
	rec = saves.Record()
	assert.Equal(t, []levels.ID{"lv01-anchorage"}, rec.CompletedLevels)

	// The final level has no successor; the cursor stays put.
	require.NoError(t, saves.CompleteLevel(ctx, "lv07-evac"))
	rec = saves.Record()
	assert.Equal(t, levels.ID("lv02-hotdrop"), rec.CurrentLevel)
	assert.True(t, rec.HasCompleted("lv07-evac"))
}

func TestGameSaves_RecordLevelTimeKeepsBest(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()
	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	require.NoError(t, saves.RecordLevelTime(ctx, "lv02-hotdrop", 600))
	require.NoError(t, saves.RecordLevelTime(ctx, "lv02-hotdrop", 540))
	require.NoError(t, saves.RecordLevelTime(ctx, "lv02-hotdrop", 700))

	rec := saves.Record()
	assert.Equal(t, 540.0, rec.LevelTimes["lv02-hotdrop"])
}

func TestGameSaves_RecordKillsAndDeaths(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()
	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	require.NoError(t, saves.RecordKills(ctx, "lv02-hotdrop", 10))
	require.NoError(t, saves.RecordKills(ctx, "lv02-hotdrop", 5))
	require.NoError(t, saves.RecordKills(ctx, "lv03-colony", 8))
	require.NoError(t, saves.RecordDeath(ctx))

	rec := saves.Record()
	assert.Equal(t, 15, rec.LevelKills["lv02-hotdrop"])
	assert.Equal(t, 8, rec.LevelKills["lv03-colony"])
	assert.Equal(t, 23, rec.TotalKills)
	assert.Equal(t, 1, rec.Deaths)
}

func TestGameSaves_SetLevelFlag(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()
	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	require.NoError(t, saves.SetLevelFlag(ctx, "lv03-colony", "generator_online", true))
	rec := saves.Record()
	assert.True(t, rec.LevelFlags["lv03-colony"]["generator_online"])
}

func TestGameSaves_SetObjective(t *testing.T) {
	saves := NewGameSaves(NewMemoryStore(), levels.DefaultChain(), savesTestLogger())
	ctx := context.Background()
	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	require.NoError(t, saves.SetObjective(ctx, "mq01-orientation:reach-armory", true))
	rec := saves.Record()
	assert.True(t, rec.Objectives["mq01-orientation:reach-armory"])
}

func TestGameSaves_QuestStateRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	chain := levels.DefaultChain()
	reg := quest.DefaultCampaign()
	ctx := context.Background()

	engine := quest.NewEngine(reg, savesTestLogger())
	saves := NewGameSaves(store, chain, savesTestLogger()).WithQuests(engine)

	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	// Make some quest progress; any save write captures it.
	engine.OnLevelEnter("lv01-anchorage")
	engine.NoteLevelCompleted("lv01-anchorage")
	require.NoError(t, saves.CompleteLevel(ctx, "lv01-anchorage"))

	rec := saves.Record()
	require.NotNil(t, rec.Quests)
	require.Len(t, rec.Quests.ActiveQuests, 1)
	assert.Equal(t, "mq01-orientation", rec.Quests.ActiveQuests[0].QuestID)

	// A fresh session restores the quest engine from the same save.
	engine2 := quest.NewEngine(reg, savesTestLogger())
	saves2 := NewGameSaves(store, chain, savesTestLogger()).WithQuests(engine2)

	loaded, err := saves2.LoadGame(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, levels.ID("lv02-hotdrop"), loaded.CurrentLevel)

	st, ok := engine2.QuestState("mq01-orientation")
	require.True(t, ok)
	assert.Equal(t, quest.StatusActive, st.Status)
}

func TestGameSaves_NewGameResetsQuestState(t *testing.T) {
	store := NewMemoryStore()
	engine := quest.NewEngine(quest.DefaultCampaign(), savesTestLogger())
	saves := NewGameSaves(store, levels.DefaultChain(), savesTestLogger()).WithQuests(engine)
	ctx := context.Background()

	engine.OnLevelEnter("lv01-anchorage")
	_, ok := engine.QuestState("mq01-orientation")
	require.True(t, ok)

	_, err := saves.NewGame(ctx, campaign.DifficultyNormal)
	require.NoError(t, err)

	_, ok = engine.QuestState("mq01-orientation")
	assert.False(t, ok, "a new game starts with empty quest state")
	assert.Empty(t, engine.CompletedQuestIDs())
}

package campaign

import (
	"context"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// AchievementSink receives discrete achievement-relevant events. The director
// never reads achievement state back.
type AchievementSink interface {
	OnKill(healthPercent float64)
	OnLevelComplete(levelID levels.ID, died bool, difficulty Difficulty)
	OnDamageTaken(levelID levels.ID, amount int)
	OnSecretFound()
	OnAudioLogFound()
}

// DialogueSink receives fire-and-forget dialogue trigger ids. Callers never
// block on dialogue completion.
type DialogueSink interface {
	Trigger(id string)
}

// SaveRecord is the subset of a persisted campaign save the director needs to
// resume from.
type SaveRecord struct {
	Difficulty      Difficulty
	CurrentLevel    levels.ID
	CompletedLevels []levels.ID
	TotalKills      int
	Deaths          int
}

// SaveStore is the persistence collaborator. Load failure is treated as
// "start a new game", never surfaced to the player.
type SaveStore interface {
	// LoadGame returns the most recent save, or nil if none exists.
	LoadGame(ctx context.Context) (*SaveRecord, error)
	// NewGame creates a fresh save at the given difficulty.
	NewGame(ctx context.Context, difficulty Difficulty) (*SaveRecord, error)
	CompleteLevel(ctx context.Context, levelID levels.ID) error
	RecordLevelTime(ctx context.Context, levelID levels.ID, seconds float64) error
	RecordKills(ctx context.Context, levelID levels.ID, kills int) error
	SetLevelFlag(ctx context.Context, levelID levels.ID, key string, value bool) error
}

// LevelHooks is notified when the campaign enters or leaves a level attempt.
// The quest engine implements this to activate and retire level quests.
type LevelHooks interface {
	OnLevelEnter(levelID levels.ID)
	OnLevelExit(levelID levels.ID)
}

// NopAchievements is an AchievementSink that ignores every event.
type NopAchievements struct{}

func (NopAchievements) OnKill(float64)                            {}
func (NopAchievements) OnLevelComplete(levels.ID, bool, Difficulty) {}
func (NopAchievements) OnDamageTaken(levels.ID, int)              {}
func (NopAchievements) OnSecretFound()                            {}
func (NopAchievements) OnAudioLogFound()                          {}

// NopDialogue is a DialogueSink that drops every trigger.
type NopDialogue struct{}

func (NopDialogue) Trigger(string) {}

// NopHooks is a LevelHooks that does nothing.
type NopHooks struct{}

func (NopHooks) OnLevelEnter(levels.ID) {}
func (NopHooks) OnLevelExit(levels.ID)  {}

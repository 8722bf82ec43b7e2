package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

// GameSaves binds one session's active save slot to a Storage backend and
// implements the director's SaveStore collaborator. Quest progress rides
// along in the record when a quest engine is attached.
type GameSaves struct {
	mu     sync.Mutex
	store  Storage
	logger *slog.Logger
	engine *quest.Engine
	chain  *levels.Chain
	rec    *SaveRecord
}

var _ campaign.SaveStore = (*GameSaves)(nil)

// NewGameSaves creates a save binder over the given backend.
func NewGameSaves(store Storage, chain *levels.Chain, logger *slog.Logger) *GameSaves {
	return &GameSaves{
		store:  store,
		chain:  chain,
		logger: logger,
	}
}

// WithQuests attaches a quest engine whose state is captured into each save
// and restored on load.
func (g *GameSaves) WithQuests(e *quest.Engine) *GameSaves {
	g.engine = e
	return g
}

// Record returns a copy of the active save record, or nil if none.
func (g *GameSaves) Record() *SaveRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rec == nil {
		return nil
	}
	out := *g.rec
	return &out
}

func (g *GameSaves) LoadGame(ctx context.Context) (*campaign.SaveRecord, error) {
	rec, err := g.store.LatestSave(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest save: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	g.mu.Lock()
	g.rec = rec
	g.mu.Unlock()
	if g.engine != nil && rec.Quests != nil {
		if err := g.engine.LoadSaveState(*rec.Quests); err != nil {
			g.logger.Warn("Discarding unloadable quest state from save",
				"save_id", rec.ID.String(), "error", err.Error())
		}
	}
	return &campaign.SaveRecord{
		Difficulty:      rec.Difficulty,
		CurrentLevel:    rec.CurrentLevel,
		CompletedLevels: append([]levels.ID(nil), rec.CompletedLevels...),
		TotalKills:      rec.TotalKills,
		Deaths:          rec.Deaths,
	}, nil
}

func (g *GameSaves) NewGame(ctx context.Context, difficulty campaign.Difficulty) (*campaign.SaveRecord, error) {
	first := g.chain.First()
	if first == nil {
		return nil, fmt.Errorf("level chain is empty")
	}
	rec := NewSaveRecord(difficulty, first.ID)
	g.mu.Lock()
	g.rec = rec
	g.mu.Unlock()
	if g.engine != nil {
		if err := g.engine.LoadSaveState(quest.SaveState{}); err != nil {
			g.logger.Warn("Failed to reset quest state for new game", "error", err.Error())
		}
	}
	if err := g.store.PutSave(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist new save: %w", err)
	}
	g.logger.Info("New game created", "save_id", rec.ID.String(), "difficulty", difficulty)
	return &campaign.SaveRecord{
		Difficulty:   rec.Difficulty,
		CurrentLevel: rec.CurrentLevel,
	}, nil
}

func (g *GameSaves) CompleteLevel(ctx context.Context, levelID levels.ID) error {
	return g.update(ctx, func(rec *SaveRecord) {
		if !rec.HasCompleted(levelID) {
			rec.CompletedLevels = append(rec.CompletedLevels, levelID)
		}
		if next := g.chain.Next(levelID); next != nil {
			rec.CurrentLevel = next.ID
		}
	})
}

func (g *GameSaves) RecordLevelTime(ctx context.Context, levelID levels.ID, seconds float64) error {
	return g.update(ctx, func(rec *SaveRecord) {
		if rec.LevelTimes == nil {
			rec.LevelTimes = make(map[levels.ID]float64)
		}
		// Keep the best time per level.
		if best, ok := rec.LevelTimes[levelID]; !ok || seconds < best {
			rec.LevelTimes[levelID] = seconds
		}
	})
}

func (g *GameSaves) RecordKills(ctx context.Context, levelID levels.ID, kills int) error {
	return g.update(ctx, func(rec *SaveRecord) {
		if rec.LevelKills == nil {
			rec.LevelKills = make(map[levels.ID]int)
		}
		rec.LevelKills[levelID] += kills
		rec.TotalKills += kills
	})
}

func (g *GameSaves) SetLevelFlag(ctx context.Context, levelID levels.ID, key string, value bool) error {
	return g.update(ctx, func(rec *SaveRecord) {
		if rec.LevelFlags == nil {
			rec.LevelFlags = make(map[levels.ID]map[string]bool)
		}
		if rec.LevelFlags[levelID] == nil {
			rec.LevelFlags[levelID] = make(map[string]bool)
		}
		rec.LevelFlags[levelID][key] = value
	})
}

// SetObjective records a standalone objective completion flag, keyed by
// "questID:objectiveID" for quest objectives or a bare key for one-off
// world objectives.
func (g *GameSaves) SetObjective(ctx context.Context, id string, done bool) error {
	return g.update(ctx, func(rec *SaveRecord) {
		if rec.Objectives == nil {
			rec.Objectives = make(map[string]bool)
		}
		rec.Objectives[id] = done
	})
}

// RecordDeath increments the save's death counter.
func (g *GameSaves) RecordDeath(ctx context.Context) error {
	return g.update(ctx, func(rec *SaveRecord) {
		rec.Deaths++
	})
}

func (g *GameSaves) update(ctx context.Context, fn func(rec *SaveRecord)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rec == nil {
		return fmt.Errorf("no active save")
	}
	fn(g.rec)
	if g.engine != nil {
		ss := g.engine.SaveState()
		g.rec.Quests = &ss
	}
	if err := g.store.PutSave(ctx, g.rec); err != nil {
		return fmt.Errorf("persist save: %w", err)
	}
	return nil
}

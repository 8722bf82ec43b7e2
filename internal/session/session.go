// Package session binds one player's campaign together: the phase director,
// the quest engine, the save binder and the event stream, plus the timer tick
// loop that drives timed objectives.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/internal/services/achievements"
	"github.com/jwebster45206/campaign-engine/internal/services/events"
	"github.com/jwebster45206/campaign-engine/internal/storage"
	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

// Session is one player's live campaign.
type Session struct {
	ID           uuid.UUID
	Director     *campaign.Director
	Engine       *quest.Engine
	Registry     *quest.Registry
	Saves        *storage.GameSaves
	Achievements *achievements.Tracker

	logger   *slog.Logger
	stopTick chan struct{}
	tickOnce sync.Once
}

// New assembles a session: the quest engine listens to level lifecycle hooks,
// the save binder captures quest state with every write, and a director
// subscription keeps the engine's pause state and completion bookkeeping in
// step with the campaign phase.
func New(reg *quest.Registry, chain *levels.Chain, store storage.Storage, broadcaster *events.Broadcaster, tickHz int, logger *slog.Logger) *Session {
	id := uuid.New()
	log := logger.With("session_id", id.String())

	sink := &questSink{sessionID: id, broadcaster: broadcaster, logger: log}
	engine := quest.NewEngine(reg, log).WithSink(sink)

	saves := storage.NewGameSaves(store, chain, log).WithQuests(engine)
	sink.saves = saves
	tracker := achievements.NewTracker(id, broadcaster, log)

	director := campaign.NewDirector(chain, log).
		WithSaves(saves).
		WithAchievements(tracker).
		WithDialogue(&dialogueSink{sessionID: id, broadcaster: broadcaster, logger: log}).
		WithHooks(engine)

	s := &Session{
		ID:           id,
		Director:     director,
		Engine:       engine,
		Registry:     reg,
		Saves:        saves,
		Achievements: tracker,
		logger:       log,
		stopTick:     make(chan struct{}),
	}

	var prevPhase campaign.Phase = campaign.PhaseMenu
	director.Subscribe(func(snap campaign.Snapshot) {
		engine.SetPaused(snap.Phase == campaign.PhasePaused)

		if snap.Phase != prevPhase {
			switch snap.Phase {
			case campaign.PhaseLevelComplete:
				engine.NoteLevelCompleted(snap.LevelID)
				if snap.LastStats != nil && snap.LastStats.DamageReceived == 0 {
					tracker.OnLevelCompleteUntouched(snap.LevelID)
				}
			case campaign.PhaseGameOver:
				engine.OnPlayerDeath()
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := saves.RecordDeath(ctx); err != nil {
						log.Debug("Death not recorded", "error", err.Error())
					}
				}()
			}
		}
		prevPhase = snap.Phase

		if err := broadcaster.PublishSnapshot(context.Background(), id, snap.Version, string(snap.Phase), string(snap.LevelID)); err != nil {
			log.Error("Failed to publish snapshot event", "error", err)
		}
	})

	go s.runTicker(tickHz)
	return s
}

// runTicker drives the quest engine's timed objectives. The engine ignores
// ticks while the campaign is paused.
func (s *Session) runTicker(hz int) {
	if hz <= 0 {
		hz = 10
	}
	interval := time.Second / time.Duration(hz)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopTick:
			return
		case <-ticker.C:
			s.Engine.Tick(dt)
		}
	}
}

// Close stops the session's tick loop. Safe to call more than once.
func (s *Session) Close() {
	s.tickOnce.Do(func() { close(s.stopTick) })
}

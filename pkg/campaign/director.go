package campaign

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

const persistTimeout = 30 * time.Second

// Director is the campaign phase state machine. Dispatch is the single
// mutation entry point; Snapshot and Subscribe are the read pair.
//
// Dispatch runs to completion synchronously, including listener notification.
// Callers must serialize their own command issuance and must not dispatch
// from inside a listener.
type Director struct {
	mu     sync.Mutex   // serializes dispatch, including listener notification
	snapMu sync.RWMutex // guards snap for lock-free reads during notification
	snap   Snapshot
	signal *Signal
	chain  *levels.Chain
	log    *slog.Logger
	now    func() time.Time

	saves        SaveStore
	achievements AchievementSink
	dialogue     DialogueSink
	hooks        LevelHooks

	// set while a CONTINUE load is in flight; the continuation finalizes
	// the transition only if still pending
	pendingContinue bool
}

// NewDirector creates a director over the given level chain, starting at the
// menu phase with default campaign state.
func NewDirector(chain *levels.Chain, log *slog.Logger) *Director {
	return &Director{
		snap:         NewSnapshot(),
		signal:       NewSignal(),
		chain:        chain,
		log:          log,
		now:          time.Now,
		achievements: NopAchievements{},
		dialogue:     NopDialogue{},
		hooks:        NopHooks{},
	}
}

// WithSaves sets the persistence collaborator. Returns the director for
// chaining.
func (d *Director) WithSaves(s SaveStore) *Director {
	d.saves = s
	return d
}

// WithAchievements sets the achievement collaborator.
func (d *Director) WithAchievements(a AchievementSink) *Director {
	d.achievements = a
	return d
}

// WithDialogue sets the dialogue collaborator.
func (d *Director) WithDialogue(s DialogueSink) *Director {
	d.dialogue = s
	return d
}

// WithHooks sets the level lifecycle hooks.
func (d *Director) WithHooks(h LevelHooks) *Director {
	d.hooks = h
	return d
}

// WithClock overrides the time source. Intended for tests.
func (d *Director) WithClock(now func() time.Time) *Director {
	d.now = now
	return d
}

// Snapshot returns the current campaign snapshot. The returned value is a
// copy and safe to retain.
func (d *Director) Snapshot() Snapshot {
	d.snapMu.RLock()
	defer d.snapMu.RUnlock()
	return d.snap
}

// Subscribe registers a listener invoked synchronously after every applied
// command. Returns an unsubscribe function.
func (d *Director) Subscribe(fn Listener) func() {
	return d.signal.Subscribe(fn)
}

// Dispatch applies a campaign command. Unknown command tags are logged and
// ignored; commands whose preconditions are not met are silent no-ops. In
// either case state is unchanged and no listener fires.
func (d *Director) Dispatch(cmd Command) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, applied := d.apply(cmd)
	if !applied {
		return
	}
	next.Version = d.snap.Version + 1
	d.setSnapshot(next)
	d.log.Debug("command applied",
		"command", cmd.Type,
		"phase", next.Phase,
		"level", next.LevelID,
		"version", next.Version)
	d.signal.Publish(next)
}

// apply returns the successor snapshot and whether the command was accepted.
// Called with the mutex held.
func (d *Director) apply(cmd Command) (Snapshot, bool) {
	s := d.snap

	switch cmd.Type {
	case CmdNewGame:
		if s.Phase != PhaseMenu {
			return s, false
		}
		diff := cmd.Difficulty
		if !diff.valid() {
			diff = DifficultyNormal
		}
		first := d.chain.First()
		if first == nil {
			d.log.Warn("NEW_GAME with empty level chain")
			return s, false
		}
		s = NewSnapshot()
		s.Phase = PhaseLoading
		s.Difficulty = diff
		s.LevelID = first.ID
		s.Level = first
		s.NeedsIntro = true
		s.RestartCounter = d.snap.RestartCounter + 1
		d.pendingContinue = false
		d.persist(func(ctx context.Context, store SaveStore) error {
			_, err := store.NewGame(ctx, diff)
			return err
		})
		return s, true

	case CmdContinue:
		if s.Phase != PhaseMenu {
			return s, false
		}
		s.Phase = PhaseLoading
		s.RestartCounter++
		d.pendingContinue = true
		go d.finishContinue()
		return s, true

	case CmdSelectLevel:
		if s.Phase != PhaseMenu {
			return s, false
		}
		cfg := d.chain.Get(cmd.Level)
		if cfg == nil {
			d.log.Warn("SELECT_LEVEL for unknown level", "level", cmd.Level)
			return s, false
		}
		s.Phase = PhaseBriefing
		s.LevelID = cfg.ID
		s.Level = cfg
		return s, true

	case CmdBeginMission:
		// Quick start: skips the briefing for the already-selected level.
		if s.Phase != PhaseMenu || s.LevelID == "" {
			return s, false
		}
		s.Phase = PhaseLoading
		return s, true

	case CmdBriefingComplete:
		if s.Phase != PhaseBriefing {
			return s, false
		}
		s.Phase = PhaseLoading
		return s, true

	case CmdIntroComplete:
		if !s.NeedsIntro {
			return s, false
		}
		s.NeedsIntro = false
		return s, true

	case CmdLoadingComplete:
		if s.Phase != PhaseLoading {
			return s, false
		}
		cfg := d.chain.Get(s.LevelID)
		if cfg == nil {
			d.log.Warn("LOADING_COMPLETE with unknown current level", "level", s.LevelID)
			return s, false
		}
		s.Level = cfg
		s.Phase = PhasePlaying
		if cfg.Tutorial {
			s.Phase = PhaseTutorial
		} else if cfg.FirstDrop {
			s.Phase = PhaseDropping
		}
		s = resetLevelCounters(s, d.now())
		d.hooks.OnLevelEnter(cfg.ID)
		return s, true

	case CmdTutorialComplete:
		if s.Phase != PhaseTutorial {
			return s, false
		}
		// The tutorial rolls straight into the first combat drop.
		done := s.LevelID
		next := d.chain.Next(done)
		d.persist(func(ctx context.Context, store SaveStore) error {
			return store.CompleteLevel(ctx, done)
		})
		d.hooks.OnLevelExit(done)
		if next == nil {
			s.Phase = PhaseCredits
			return s, true
		}
		s.Phase = PhaseDropping
		s.LevelID = next.ID
		s.Level = next
		s = resetLevelCounters(s, d.now())
		d.hooks.OnLevelEnter(next.ID)
		return s, true

	case CmdDropComplete:
		if s.Phase != PhaseDropping {
			return s, false
		}
		s.Phase = PhasePlaying
		s.LevelStartedAt = d.now()
		return s, true

	case CmdLevelComplete:
		if s.Phase != PhasePlaying {
			return s, false
		}
		stats := LevelStats{}
		if cmd.Stats != nil {
			stats = *cmd.Stats
		}
		if stats.Elapsed <= 0 {
			stats.Elapsed = s.MissionElapsed(d.now())
		}
		if stats.ShotsFired > 0 {
			stats.Accuracy = float64(stats.ShotsHit) / float64(stats.ShotsFired)
		}
		level := s.LevelID
		s.LevelKills = stats.Kills
		s.LevelDamage = stats.DamageReceived
		s.TotalKills += stats.Kills
		s.LastStats = &stats
		s.Phase = PhaseLevelComplete
		d.persist(func(ctx context.Context, store SaveStore) error {
			if err := store.CompleteLevel(ctx, level); err != nil {
				return err
			}
			if err := store.RecordLevelTime(ctx, level, stats.Elapsed); err != nil {
				return err
			}
			return store.RecordKills(ctx, level, stats.Kills)
		})
		d.achievements.OnLevelComplete(level, s.DiedInLevel, s.Difficulty)
		if stats.DamageReceived > 0 {
			d.achievements.OnDamageTaken(level, stats.DamageReceived)
		}
		d.dialogue.Trigger("mission_complete")
		return s, true

	case CmdAdvance:
		if s.Phase != PhaseLevelComplete {
			return s, false
		}
		d.hooks.OnLevelExit(s.LevelID)
		next := d.chain.Next(s.LevelID)
		if next == nil {
			s.Phase = PhaseCredits
			d.dialogue.Trigger("campaign_complete")
			return s, true
		}
		s.Phase = PhaseLoading
		s.LevelID = next.ID
		s.Level = next
		return s, true

	case CmdRetry:
		switch s.Phase {
		case PhasePlaying, PhasePaused, PhaseLevelComplete, PhaseGameOver:
		default:
			return s, false
		}
		d.hooks.OnLevelExit(s.LevelID)
		s = resetLevelCounters(s, time.Time{})
		s.Phase = PhaseLoading
		s.PrePausePhase = ""
		s.PausedAt = time.Time{}
		s.RestartCounter++
		return s, true

	case CmdPause:
		if !s.Phase.Pausable() {
			return s, false
		}
		s.PrePausePhase = s.Phase
		s.Phase = PhasePaused
		s.PausedAt = d.now()
		return s, true

	case CmdResume:
		if s.Phase != PhasePaused {
			return s, false
		}
		// Shift the mission clock forward so paused time never counts.
		if !s.PausedAt.IsZero() && !s.LevelStartedAt.IsZero() {
			s.LevelStartedAt = s.LevelStartedAt.Add(d.now().Sub(s.PausedAt))
		}
		s.Phase = s.PrePausePhase
		if s.Phase == "" {
			s.Phase = PhasePlaying
		}
		s.PrePausePhase = ""
		s.PausedAt = time.Time{}
		return s, true

	case CmdPlayerDied:
		if !s.Phase.InMission() {
			return s, false
		}
		s.Phase = PhaseGameOver
		s.PrePausePhase = ""
		s.PausedAt = time.Time{}
		s.DiedInLevel = true
		s.Deaths++
		d.dialogue.Trigger("mission_failed")
		return s, true

	case CmdMainMenu:
		if s.Phase == PhaseMenu {
			return s, false
		}
		if s.Phase.InMission() {
			d.hooks.OnLevelExit(s.LevelID)
		}
		s.Phase = PhaseMenu
		s = resetLevelCounters(s, time.Time{})
		s.PrePausePhase = ""
		s.PausedAt = time.Time{}
		s.BonusLevel = false
		s.BonusReturn = ""
		s.RestartCounter++
		d.pendingContinue = false
		return s, true

	case CmdEnterBonusLevel:
		if s.Phase != PhasePlaying {
			return s, false
		}
		if s.BonusLevel {
			// Already in a bonus level; keep the outer return slot.
			d.log.Warn("ENTER_BONUS_LEVEL while already in a bonus level", "level", s.LevelID)
			return s, false
		}
		cfg := d.chain.Get(cmd.Level)
		if cfg == nil || !cfg.Bonus {
			d.log.Warn("ENTER_BONUS_LEVEL for unknown or non-bonus level", "level", cmd.Level)
			return s, false
		}
		d.hooks.OnLevelExit(s.LevelID)
		s.BonusReturn = s.LevelID
		s.BonusLevel = true
		s.LevelID = cfg.ID
		s.Level = cfg
		s.Phase = PhaseLoading
		return s, true

	case CmdBonusComplete:
		if s.Phase != PhasePlaying || !s.BonusLevel {
			return s, false
		}
		d.hooks.OnLevelExit(s.LevelID)
		s.BonusLevel = false
		if s.BonusReturn == "" {
			// Caller error: no return level was recorded. Fall back to the
			// menu rather than crashing.
			d.log.Warn("BONUS_COMPLETE with empty return slot")
			s.Phase = PhaseMenu
			s = resetLevelCounters(s, time.Time{})
			s.RestartCounter++
			return s, true
		}
		s.LevelID = s.BonusReturn
		s.Level = d.chain.Get(s.BonusReturn)
		s.BonusReturn = ""
		s.Phase = PhaseLoading
		return s, true

	case CmdDevJump:
		cfg := d.chain.Get(cmd.Level)
		if cfg == nil {
			d.log.Warn("DEV_JUMP to unknown level", "level", cmd.Level)
			return s, false
		}
		if s.Phase.InMission() {
			d.hooks.OnLevelExit(s.LevelID)
		}
		s = resetLevelCounters(s, time.Time{})
		s.Phase = PhaseLoading
		s.LevelID = cfg.ID
		s.Level = cfg
		s.PrePausePhase = ""
		s.PausedAt = time.Time{}
		s.BonusLevel = cfg.Bonus
		s.RestartCounter++
		return s, true

	default:
		d.log.Warn("unknown campaign command", "command", cmd.Type)
		return s, false
	}
}

// resetLevelCounters zeroes the level-scoped counters and restarts the
// mission timer at startedAt (zero time leaves the timer unset).
func resetLevelCounters(s Snapshot, startedAt time.Time) Snapshot {
	s.LevelKills = 0
	s.LevelDamage = 0
	s.DiedInLevel = false
	s.LevelStartedAt = startedAt
	return s
}

// persist runs a save-store operation as a fire-and-forget continuation. The
// director stays responsive; failures are logged, never surfaced.
func (d *Director) persist(op func(context.Context, SaveStore) error) {
	if d.saves == nil {
		return
	}
	store := d.saves
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := op(ctx, store); err != nil {
			d.log.Error("campaign persistence failed", "error", err)
		}
	}()
}

// finishContinue finalizes a CONTINUE transition once the save record is
// available. Load failure falls back to the new-game path.
func (d *Director) finishContinue() {
	var rec *SaveRecord
	if d.saves != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		loaded, err := d.saves.LoadGame(ctx)
		if err != nil {
			d.log.Warn("failed to load save, starting new game", "error", err)
		} else {
			rec = loaded
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pendingContinue || d.snap.Phase != PhaseLoading {
		return
	}
	d.pendingContinue = false

	s := d.snap
	if rec == nil {
		first := d.chain.First()
		if first == nil {
			return
		}
		s.LevelID = first.ID
		s.Level = first
		s.NeedsIntro = true
		diff := s.Difficulty
		d.persist(func(ctx context.Context, store SaveStore) error {
			_, err := store.NewGame(ctx, diff)
			return err
		})
	} else {
		cfg := d.chain.Get(rec.CurrentLevel)
		if cfg == nil {
			cfg = d.chain.First()
		}
		if cfg == nil {
			return
		}
		s.LevelID = cfg.ID
		s.Level = cfg
		if rec.Difficulty.valid() {
			s.Difficulty = rec.Difficulty
		}
		s.TotalKills = rec.TotalKills
		s.Deaths = rec.Deaths
	}
	s.Version = d.snap.Version + 1
	d.setSnapshot(s)
	d.signal.Publish(s)
}

// setSnapshot replaces the published snapshot. Called with the dispatch
// mutex held.
func (d *Director) setSnapshot(s Snapshot) {
	d.snapMu.Lock()
	d.snap = s
	d.snapMu.Unlock()
}

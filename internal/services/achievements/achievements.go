// Package achievements tracks combat and campaign milestones per session and
// publishes unlock events.
package achievements

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/internal/services/events"
	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// Achievement ids.
const (
	FirstBlood    = "first_blood"     // first kill
	Exterminator  = "exterminator"    // 100 kills
	CloseCall     = "close_call"      // kill while below 10% health
	Untouchable   = "untouchable"     // finish a level without taking damage
	Flawless      = "flawless"        // finish a level without dying
	HardenedVet   = "hardened_vet"    // finish a level on hard
	Archivist     = "archivist"       // find 10 audio logs
	Spelunker     = "spelunker"       // find 10 secrets
)

const (
	exterminatorKills = 100
	closeCallHealth   = 0.10
	archivistLogs     = 10
	spelunkerSecrets  = 10
)

// Tracker accumulates milestone counters and unlocks achievements at their
// thresholds. Unlocks are idempotent per session.
type Tracker struct {
	mu        sync.Mutex
	sessionID uuid.UUID
	unlocked  map[string]bool
	kills     int
	secrets   int
	audioLogs int

	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

var _ campaign.AchievementSink = (*Tracker)(nil)

// NewTracker creates an achievement tracker for one session.
func NewTracker(sessionID uuid.UUID, broadcaster *events.Broadcaster, logger *slog.Logger) *Tracker {
	return &Tracker{
		sessionID:   sessionID,
		unlocked:    make(map[string]bool),
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Unlocked returns the ids of every unlocked achievement.
func (t *Tracker) Unlocked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.unlocked))
	for id := range t.unlocked {
		out = append(out, id)
	}
	return out
}

func (t *Tracker) OnKill(healthPercent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kills++
	if t.kills == 1 {
		t.unlock(FirstBlood)
	}
	if t.kills >= exterminatorKills {
		t.unlock(Exterminator)
	}
	if healthPercent > 0 && healthPercent <= closeCallHealth {
		t.unlock(CloseCall)
	}
}

func (t *Tracker) OnLevelComplete(levelID levels.ID, died bool, difficulty campaign.Difficulty) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !died {
		t.unlock(Flawless)
	}
	if difficulty == campaign.DifficultyHard {
		t.unlock(HardenedVet)
	}
}

func (t *Tracker) OnDamageTaken(levelID levels.ID, amount int) {
	// Damage only disqualifies Untouchable, which is granted from the
	// zero-damage path below. Nothing to track here yet.
}

// OnLevelCompleteUntouched grants the no-damage clear. Called by the session
// when a level's final stats show zero damage received.
func (t *Tracker) OnLevelCompleteUntouched(levelID levels.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unlock(Untouchable)
}

func (t *Tracker) OnSecretFound() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.secrets++
	if t.secrets >= spelunkerSecrets {
		t.unlock(Spelunker)
	}
}

func (t *Tracker) OnAudioLogFound() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.audioLogs++
	if t.audioLogs >= archivistLogs {
		t.unlock(Archivist)
	}
}

// unlock grants an achievement once. Called with the mutex held.
func (t *Tracker) unlock(id string) {
	if t.unlocked[id] {
		return
	}
	t.unlocked[id] = true
	t.logger.Info("Achievement unlocked", "achievement_id", id)
	if err := t.broadcaster.PublishAchievement(context.Background(), t.sessionID, id); err != nil {
		t.logger.Error("Failed to publish achievement event", "error", err, "achievement_id", id)
	}
}

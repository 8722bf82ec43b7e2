package campaign

import (
	"time"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// Snapshot is the authoritative, immutable read model of the campaign. A new
// snapshot replaces the old one wholesale on every dispatched command; the
// struct is never mutated in place after publication.
//
// Invariants: exactly one phase is active; PrePausePhase is non-empty if and
// only if Phase is paused.
type Snapshot struct {
	Version        int           `json:"version"` // increments on every applied command
	Phase          Phase         `json:"phase"`
	LevelID        levels.ID     `json:"level_id,omitempty"`
	Level          *levels.Config `json:"level,omitempty"` // static config reference, never mutated
	BonusLevel     bool          `json:"bonus_level,omitempty"`
	BonusReturn    levels.ID     `json:"bonus_return,omitempty"` // one-deep return slot
	LevelKills     int           `json:"level_kills"`
	LevelDamage    int           `json:"level_damage"`
	LevelStartedAt time.Time     `json:"level_started_at,omitempty"`
	PausedAt       time.Time     `json:"paused_at,omitempty"`
	LastStats      *LevelStats   `json:"last_stats,omitempty"`
	NeedsIntro     bool          `json:"needs_intro,omitempty"`
	PrePausePhase  Phase         `json:"pre_pause_phase,omitempty"`
	RestartCounter int           `json:"restart_counter"` // consumers remount when this changes
	Deaths         int           `json:"deaths"`
	TotalKills     int           `json:"total_kills"`
	Difficulty     Difficulty    `json:"difficulty"`
	DiedInLevel    bool          `json:"died_in_level"`
}

// NewSnapshot returns the canonical default campaign state. Every runtime
// field has exactly one default, defined here.
func NewSnapshot() Snapshot {
	return Snapshot{
		Phase:      PhaseMenu,
		Difficulty: DifficultyNormal,
	}
}

// MissionElapsed returns seconds spent in the current level attempt as of
// now, with pause time excluded up to the last resume.
func (s Snapshot) MissionElapsed(now time.Time) float64 {
	if s.LevelStartedAt.IsZero() {
		return 0
	}
	ref := now
	if s.Phase == PhasePaused && !s.PausedAt.IsZero() {
		ref = s.PausedAt
	}
	return ref.Sub(s.LevelStartedAt).Seconds()
}

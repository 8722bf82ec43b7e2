// Package campaign implements the campaign phase director: a command-driven
// state machine over discrete campaign phases. All campaign state mutation
// goes through Director.Dispatch; reads go through Director.Snapshot and
// Director.Subscribe.
package campaign

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Phase is a discrete campaign-wide mode. Exactly one phase is active at a
// time.
type Phase string

const (
	PhaseMenu          Phase = "menu"
	PhaseBriefing      Phase = "briefing"
	PhaseLoading       Phase = "loading"
	PhaseTutorial      Phase = "tutorial"
	PhaseDropping      Phase = "dropping"
	PhasePlaying       Phase = "playing"
	PhasePaused        Phase = "paused"
	PhaseLevelComplete Phase = "levelComplete"
	PhaseGameOver      Phase = "gameover"
	PhaseCredits       Phase = "credits"
)

// Pausable reports whether the phase can be paused. Only live mission phases
// participate in the pause stack.
func (p Phase) Pausable() bool {
	switch p {
	case PhasePlaying, PhaseTutorial, PhaseDropping:
		return true
	}
	return false
}

// InMission reports whether the player is inside a level attempt, paused or
// not.
func (p Phase) InMission() bool {
	switch p {
	case PhaseTutorial, PhaseDropping, PhasePlaying, PhasePaused:
		return true
	}
	return false
}

var titleCaser = cases.Title(language.English)

// Display returns a human-readable phase name for UI surfaces.
func (p Phase) Display() string {
	switch p {
	case PhaseLevelComplete:
		return "Mission Complete"
	case PhaseGameOver:
		return "Game Over"
	}
	return titleCaser.String(strings.ToLower(string(p)))
}

package quest

import (
	"time"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// Status is the lifecycle state of a quest at runtime.
type Status string

const (
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ObjectiveStatus is the lifecycle state of one objective. At most one
// objective per quest is active at a time.
type ObjectiveStatus string

const (
	ObjectivePending         ObjectiveStatus = "pending"
	ObjectiveActive          ObjectiveStatus = "active"
	ObjectiveStatusCompleted ObjectiveStatus = "completed"
	ObjectiveStatusFailed    ObjectiveStatus = "failed"
)

// State is the runtime state of one quest. Progress is monotonically
// non-decreasing while an objective is active and never exceeds its required
// count.
type State struct {
	QuestID        string                     `json:"quest_id"`
	Status         Status                     `json:"status"`
	ObjectiveIndex int                        `json:"objective_index"`
	Progress       map[string]int             `json:"progress"`
	Objectives     map[string]ObjectiveStatus `json:"objectives"`
	Elapsed        map[string]float64         `json:"elapsed,omitempty"` // seconds each objective has been active
	StartedAt      time.Time                  `json:"started_at,omitempty"`
	CompletedAt    time.Time                  `json:"completed_at,omitempty"`
	FailedAt       time.Time                  `json:"failed_at,omitempty"`
	FailReason     string                     `json:"fail_reason,omitempty"`
}

func newState(q *Quest, now time.Time) *State {
	st := &State{
		QuestID:    q.ID,
		Status:     StatusActive,
		Progress:   make(map[string]int, len(q.Objectives)),
		Objectives: make(map[string]ObjectiveStatus, len(q.Objectives)),
		Elapsed:    make(map[string]float64),
		StartedAt:  now,
	}
	for i := range q.Objectives {
		st.Objectives[q.Objectives[i].ID] = ObjectivePending
	}
	st.Objectives[q.Objectives[0].ID] = ObjectiveActive
	return st
}

// clone returns a deep copy, used by queries to hand out defensive copies.
func (s *State) clone() State {
	out := *s
	out.Progress = make(map[string]int, len(s.Progress))
	for k, v := range s.Progress {
		out.Progress[k] = v
	}
	out.Objectives = make(map[string]ObjectiveStatus, len(s.Objectives))
	for k, v := range s.Objectives {
		out.Objectives[k] = v
	}
	out.Elapsed = make(map[string]float64, len(s.Elapsed))
	for k, v := range s.Elapsed {
		out.Elapsed[k] = v
	}
	return out
}

// SaveState is the serializable quest progress snapshot used by the
// persistence collaborator. LoadSaveState(SaveState) is the inverse of
// SaveState().
type SaveState struct {
	CompletedQuests []string        `json:"completed_quests"`
	FailedQuests    []string        `json:"failed_quests"`
	ActiveQuests    []State         `json:"active_quests"`
	CompletedLevels []levels.ID     `json:"completed_levels,omitempty"`
	Inventory       map[string]int  `json:"inventory,omitempty"`
}

package quest

import (
	"fmt"
	"sort"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// ActiveQuests returns defensive copies of every active quest state, sorted
// by quest id.
func (e *Engine) ActiveQuests() []State {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]State, 0, len(e.active))
	for _, id := range e.sortedActiveIDs() {
		out = append(out, e.active[id].clone())
	}
	return out
}

// QuestState returns a copy of one quest's runtime state and whether the
// quest is currently active.
func (e *Engine) QuestState(questID string) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.active[questID]
	if st == nil {
		return State{}, false
	}
	return st.clone(), true
}

// IsQuestCompleted reports whether the quest has been completed.
func (e *Engine) IsQuestCompleted(questID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed[questID]
}

// IsQuestFailed reports whether the quest is in the failed set, returning
// the recorded failure reason.
func (e *Engine) IsQuestFailed(questID string) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failed[questID], e.failReasons[questID]
}

// CompletedQuestIDs returns the completed set, sorted.
func (e *Engine) CompletedQuestIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.completed)
}

// FailedQuestIDs returns the failed set, sorted.
func (e *Engine) FailedQuestIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.failed)
}

// SaveState captures the full quest progress for persistence.
// LoadSaveState is the inverse.
func (e *Engine) SaveState() SaveState {
	e.mu.Lock()
	defer e.mu.Unlock()

	ss := SaveState{
		CompletedQuests: sortedKeys(e.completed),
		FailedQuests:    sortedKeys(e.failed),
		Inventory:       make(map[string]int, len(e.inventory)),
	}
	for _, id := range e.sortedActiveIDs() {
		ss.ActiveQuests = append(ss.ActiveQuests, e.active[id].clone())
	}
	for lvl := range e.completedLevels {
		ss.CompletedLevels = append(ss.CompletedLevels, lvl)
	}
	sort.Slice(ss.CompletedLevels, func(i, j int) bool { return ss.CompletedLevels[i] < ss.CompletedLevels[j] })
	for k, v := range e.inventory {
		ss.Inventory[k] = v
	}
	return ss
}

// LoadSaveState replaces all runtime state with the saved snapshot. Saved
// quests that no longer exist in the registry are rejected.
func (e *Engine) LoadSaveState(ss SaveState) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ss.CompletedQuests {
		if e.reg.Get(id) == nil {
			return fmt.Errorf("saved completed quest %q not in registry", id)
		}
	}
	for _, id := range ss.FailedQuests {
		if e.reg.Get(id) == nil {
			return fmt.Errorf("saved failed quest %q not in registry", id)
		}
	}
	for i := range ss.ActiveQuests {
		if e.reg.Get(ss.ActiveQuests[i].QuestID) == nil {
			return fmt.Errorf("saved active quest %q not in registry", ss.ActiveQuests[i].QuestID)
		}
	}

	e.active = make(map[string]*State, len(ss.ActiveQuests))
	e.completed = make(map[string]bool, len(ss.CompletedQuests))
	e.failed = make(map[string]bool, len(ss.FailedQuests))
	e.failReasons = make(map[string]string)
	e.completedLevels = make(map[levels.ID]bool, len(ss.CompletedLevels))
	e.inventory = make(map[string]int, len(ss.Inventory))

	for _, id := range ss.CompletedQuests {
		e.completed[id] = true
	}
	for _, id := range ss.FailedQuests {
		e.failed[id] = true
	}
	for i := range ss.ActiveQuests {
		st := ss.ActiveQuests[i].clone()
		if st.Objectives == nil {
			st.Objectives = make(map[string]ObjectiveStatus)
		}
		if st.Progress == nil {
			st.Progress = make(map[string]int)
		}
		if st.Elapsed == nil {
			st.Elapsed = make(map[string]float64)
		}
		st.Status = StatusActive
		e.active[st.QuestID] = &st
	}
	for _, lvl := range ss.CompletedLevels {
		e.completedLevels[lvl] = true
	}
	for k, v := range ss.Inventory {
		e.inventory[k] = v
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

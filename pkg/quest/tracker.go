package quest

// Tracker is the HUD-facing projection of the player's current objective.
// Main quests take priority over branch quests; within a type, the lowest
// quest id wins, so the projection is deterministic.
type Tracker struct {
	QuestID       string  `json:"quest_id,omitempty"`
	QuestTitle    string  `json:"quest_title,omitempty"`
	QuestType     Type    `json:"quest_type,omitempty"`
	ObjectiveID   string  `json:"objective_id,omitempty"`
	ObjectiveText string  `json:"objective_text,omitempty"`
	Progress      int     `json:"progress"`
	Required      int     `json:"required"`
	TimeRemaining float64 `json:"time_remaining,omitempty"` // seconds; 0 when untimed
	Distance      float64 `json:"distance,omitempty"`       // meters to target; 0 when no target or position
	HasObjective  bool    `json:"has_objective"`
}

// Tracker returns the current HUD projection. When no quest is active the
// zero Tracker is returned with HasObjective false.
func (e *Engine) Tracker() Tracker {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pick *State
	var pickQuest *Quest
	for _, id := range e.sortedActiveIDs() {
		st := e.active[id]
		q := e.reg.Get(id)
		if q == nil || st.ObjectiveIndex >= len(q.Objectives) {
			continue
		}
		if pick == nil || (pickQuest.Type != TypeMain && q.Type == TypeMain) {
			pick = st
			pickQuest = q
		}
	}
	if pick == nil {
		return Tracker{}
	}

	o := &pickQuest.Objectives[pick.ObjectiveIndex]
	t := Tracker{
		QuestID:       pickQuest.ID,
		QuestTitle:    pickQuest.Title,
		QuestType:     pickQuest.Type,
		ObjectiveID:   o.ID,
		ObjectiveText: o.Text,
		Progress:      pick.Progress[o.ID],
		Required:      o.RequiredCount(),
		HasObjective:  true,
	}
	elapsed := pick.Elapsed[o.ID]
	switch {
	case o.TimeLimit > 0:
		if rem := o.TimeLimit - elapsed; rem > 0 {
			t.TimeRemaining = rem
		}
	case o.Type == ObjectiveSurvive || o.Type == ObjectiveDefend:
		if rem := o.Duration - elapsed; rem > 0 {
			t.TimeRemaining = rem
		}
	}
	if o.Target != nil && e.hasPos {
		t.Distance = e.lastPos.Distance(*o.Target)
	}
	return t
}

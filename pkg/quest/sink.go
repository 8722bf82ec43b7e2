package quest

import "github.com/jwebster45206/campaign-engine/pkg/levels"

// EventSink receives quest side effects: HUD updates, marker updates,
// notifications and dialogue triggers. All methods are invoked synchronously
// from engine entry points and must not call back into the engine.
//
// The quest argument is a registry-owned static definition; implementations
// must not mutate it. NopSink satisfies callers that do not care about a
// given event.
type EventSink interface {
	// QuestStarted fires on activation. Main quests warrant a prominent
	// banner, branch quests a lighter one; implementations decide by Type.
	QuestStarted(q *Quest)
	QuestCompleted(q *Quest)
	QuestFailed(q *Quest, reason string)

	// ObjectiveChanged fires when the tracked objective text or progress
	// changes.
	ObjectiveChanged(q *Quest, o *Objective, progress, required int)

	MarkerChanged(q *Quest, pos levels.Vec3, radius float64)
	MarkerCleared(q *Quest)

	// Dialogue receives fire-and-forget trigger ids.
	Dialogue(triggerID string)
}

// NopSink ignores every event.
type NopSink struct{}

func (NopSink) QuestStarted(*Quest)                       {}
func (NopSink) QuestCompleted(*Quest)                     {}
func (NopSink) QuestFailed(*Quest, string)                {}
func (NopSink) ObjectiveChanged(*Quest, *Objective, int, int) {}
func (NopSink) MarkerChanged(*Quest, levels.Vec3, float64)    {}
func (NopSink) MarkerCleared(*Quest)                      {}
func (NopSink) Dialogue(string)                           {}

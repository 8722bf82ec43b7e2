// Package quest implements the static quest definition graph and the runtime
// engine that activates quests, advances objectives, and cascades completion
// and failure.
package quest

import "github.com/jwebster45206/campaign-engine/pkg/levels"

// Type classifies a quest within the campaign graph.
type Type string

const (
	// TypeMain quests form the linear campaign chain, one per level.
	TypeMain Type = "main"
	// TypeBranch quests are optional side content scoped to one level.
	TypeBranch Type = "branch"
	// TypeSecret quests are hidden branch content found through exploration.
	TypeSecret Type = "secret"
)

// TriggerType describes how a quest becomes available.
type TriggerType string

const (
	TriggerLevelEnter  TriggerType = "level_enter"
	TriggerInteract    TriggerType = "object_interact"
	TriggerNPCDialogue TriggerType = "npc_dialogue"
	TriggerAreaEnter   TriggerType = "area_enter"
	TriggerCollectible TriggerType = "collectible_found"
)

// ObjectiveType describes how an objective is progressed and completed.
type ObjectiveType string

const (
	ObjectiveReachLocation ObjectiveType = "reach_location"
	ObjectiveInteract      ObjectiveType = "interact"
	ObjectiveKillEnemies   ObjectiveType = "kill_enemies"
	ObjectiveKillTarget    ObjectiveType = "kill_target"
	ObjectiveSurvive       ObjectiveType = "survive"
	ObjectiveEscort        ObjectiveType = "escort"
	ObjectiveCollect       ObjectiveType = "collect"
	ObjectiveDefend        ObjectiveType = "defend"
	ObjectiveVehicle       ObjectiveType = "vehicle"
	ObjectiveStealth       ObjectiveType = "stealth"
	ObjectiveCustom        ObjectiveType = "custom"
)

// DefaultReachRadius is the completion radius for reach_location objectives
// that do not specify one, in meters.
const DefaultReachRadius = 5.0

// Objective is one ordered step within a quest. Definitions are static and
// never mutated at runtime.
type Objective struct {
	ID   string        `json:"id"`
	Type ObjectiveType `json:"type"`
	Text string        `json:"text"`

	// Required is the numeric target for count objectives (kills, collects).
	// Zero means a single completion event suffices.
	Required int `json:"required,omitempty"`

	// Target and Radius define the completion zone for reach_location.
	Target *levels.Vec3 `json:"target,omitempty"`
	Radius float64      `json:"radius,omitempty"`

	// TargetKey matches interact / kill_target / collect / custom events.
	// Empty matches any event of the objective's type.
	TargetKey string `json:"target_key,omitempty"`

	// Duration is the hold time in seconds for survive and defend objectives.
	Duration float64 `json:"duration,omitempty"`

	// TimeLimit fails the owning quest if the objective is still active when
	// it elapses. Zero means no limit.
	TimeLimit float64 `json:"time_limit,omitempty"`

	StartDialogue    string `json:"start_dialogue,omitempty"`
	CompleteDialogue string `json:"complete_dialogue,omitempty"`
}

// ReachRadius returns the effective completion radius.
func (o *Objective) ReachRadius() float64 {
	if o.Radius > 0 {
		return o.Radius
	}
	return DefaultReachRadius
}

// RequiredCount returns the effective numeric target, at least 1.
func (o *Objective) RequiredCount() int {
	if o.Required > 0 {
		return o.Required
	}
	return 1
}

// Quest is a static quest definition. The registry owns all definitions;
// runtime state lives in the engine.
type Quest struct {
	ID      string    `json:"id"`
	Type    Type      `json:"type"`
	LevelID levels.ID `json:"level_id"`
	Title   string    `json:"title"`
	Text    string    `json:"text,omitempty"`

	Objectives []Objective `json:"objectives"`

	// Trigger describes when the quest becomes available. Main quests are
	// always level_enter; branch quests may use any trigger.
	Trigger    TriggerType `json:"trigger"`
	TriggerKey string      `json:"trigger_key,omitempty"`

	RequiresQuests []string    `json:"requires_quests,omitempty"`
	RequiresLevels []levels.ID `json:"requires_levels,omitempty"`
	RequiresItems  []string    `json:"requires_items,omitempty"`

	// Rewards are inventory items granted on completion.
	Rewards        []string `json:"rewards,omitempty"`
	RewardDialogue string   `json:"reward_dialogue,omitempty"`

	// NextQuestID links the main chain. Progression is level-driven: the
	// next quest activates on the next level-enter, never automatically.
	NextQuestID string `json:"next_quest_id,omitempty"`

	// Unlocks lists branch quest ids made available by completing this one.
	Unlocks []string `json:"unlocks,omitempty"`

	FailOnDeath bool `json:"fail_on_death,omitempty"`
}

// IsBranch reports whether the quest is level-scoped optional content
// (branch or secret), discarded on level exit if incomplete.
func (q *Quest) IsBranch() bool {
	return q.Type == TypeBranch || q.Type == TypeSecret
}

package quest

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// FailReasonLeftLevel is the failure reason applied to branch quests still
// active when their level is exited.
const FailReasonLeftLevel = "left level before completion"

// FailReasonTimeLimit is the failure reason applied when an active
// objective's time limit elapses.
const FailReasonTimeLimit = "time limit exceeded"

// FailReasonDeath is the failure reason applied to death-sensitive quests
// when the player dies.
const FailReasonDeath = "player died"

// Engine owns all quest runtime state. All entry points run synchronously to
// completion; state is mutated only through them, and queries return
// defensive copies.
type Engine struct {
	mu   sync.Mutex
	reg  *Registry
	log  *slog.Logger
	sink EventSink
	now  func() time.Time

	active          map[string]*State
	completed       map[string]bool
	failed          map[string]bool
	failReasons     map[string]string
	currentLevel    levels.ID
	completedLevels map[levels.ID]bool
	inventory       map[string]int

	lastPos levels.Vec3
	hasPos  bool
	paused  bool
}

// NewEngine creates an engine over the given registry with no active quests.
func NewEngine(reg *Registry, log *slog.Logger) *Engine {
	return &Engine{
		reg:             reg,
		log:             log,
		sink:            NopSink{},
		now:             time.Now,
		active:          make(map[string]*State),
		completed:       make(map[string]bool),
		failed:          make(map[string]bool),
		failReasons:     make(map[string]string),
		completedLevels: make(map[levels.ID]bool),
		inventory:       make(map[string]int),
	}
}

// WithSink sets the side-effect sink. Returns the engine for chaining.
func (e *Engine) WithSink(s EventSink) *Engine {
	e.sink = s
	return e
}

// WithClock overrides the time source. Intended for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// OnLevelEnter activates the level's main quest (unless already completed)
// and any level-enter branch quests whose prerequisites pass. A fresh level
// attempt clears failure state for that level's quests so retries start
// clean.
func (e *Engine) OnLevelEnter(levelID levels.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentLevel = levelID

	if main := e.reg.MainQuestForLevel(levelID); main != nil {
		delete(e.failed, main.ID)
		delete(e.failReasons, main.ID)
		if !e.completed[main.ID] && e.canStart(main.ID) {
			e.activate(main)
		}
	}
	for _, q := range e.reg.BranchQuestsForLevel(levelID) {
		delete(e.failed, q.ID)
		delete(e.failReasons, q.ID)
		if q.Trigger == TriggerLevelEnter && !e.completed[q.ID] && e.canStart(q.ID) {
			e.activate(q)
		}
	}
}

// OnLevelExit retires quest state tied to the level: still-active branch
// quests fail with FailReasonLeftLevel, and the main quest's in-progress
// state is discarded so the next attempt starts over.
func (e *Engine) OnLevelExit(levelID levels.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, st := range e.active {
		q := e.reg.Get(id)
		if q == nil || q.LevelID != levelID {
			continue
		}
		if q.IsBranch() {
			e.fail(q, st, FailReasonLeftLevel)
			continue
		}
		// Main quest progress is level-scoped.
		delete(e.active, id)
		e.sink.MarkerCleared(q)
	}
}

// NoteLevelCompleted records a completed level for prerequisite checks.
func (e *Engine) NoteLevelCompleted(levelID levels.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completedLevels[levelID] = true
}

// AddItem adjusts the tracked inventory count for prerequisite checks.
func (e *Engine) AddItem(item string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inventory[item] += delta
	if e.inventory[item] <= 0 {
		delete(e.inventory, item)
	}
}

// ActivateQuest activates a quest by id. Returns false without creating
// runtime state if the quest is unknown, already active, already completed,
// or its prerequisites are not met.
func (e *Engine) ActivateQuest(questID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.reg.Get(questID)
	if q == nil {
		e.log.Warn("activate for unknown quest", "quest", questID)
		return false
	}
	if _, isActive := e.active[questID]; isActive {
		e.log.Debug("quest already active", "quest", questID)
		return false
	}
	if e.completed[questID] {
		e.log.Debug("quest already completed", "quest", questID)
		return false
	}
	if !e.canStart(questID) {
		e.log.Debug("quest prerequisites not met", "quest", questID)
		return false
	}
	e.activate(q)
	return true
}

// ProgressObjective adds amount to an active objective's progress. Crossing
// the required threshold triggers exactly one completion cascade; stored
// progress never exceeds the required count.
func (e *Engine) ProgressObjective(questID, objectiveID string, amount int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress(questID, objectiveID, amount)
}

// CompleteObjective marks an active objective completed, fires its dialogue
// hook, and activates the next objective or completes the quest.
func (e *Engine) CompleteObjective(questID, objectiveID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, st := e.activeQuest(questID)
	if q == nil {
		return
	}
	e.completeObjective(q, st, objectiveID)
}

// FailQuest fails an active quest with the given reason.
func (e *Engine) FailQuest(questID, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, st := e.activeQuest(questID)
	if q == nil {
		return
	}
	e.fail(q, st, reason)
}

// OnObjectInteract handles a world interact event keyed by object id.
func (e *Engine) OnObjectInteract(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activateMatchingBranches(TriggerInteract, key)
	e.progressCurrentObjectives(func(o *Objective) (bool, int) {
		if o.Type != ObjectiveInteract {
			return false, 0
		}
		if o.TargetKey != "" && o.TargetKey != key {
			return false, 0
		}
		return true, 1
	})
}

// OnNPCDialogue handles a completed NPC conversation keyed by npc id.
func (e *Engine) OnNPCDialogue(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activateMatchingBranches(TriggerNPCDialogue, key)
	e.progressCurrentObjectives(func(o *Objective) (bool, int) {
		if o.Type != ObjectiveInteract && o.Type != ObjectiveCustom {
			return false, 0
		}
		if o.TargetKey == "" || o.TargetKey != key {
			return false, 0
		}
		return true, 1
	})
}

// OnAreaEnter handles the player entering a named trigger volume.
func (e *Engine) OnAreaEnter(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activateMatchingBranches(TriggerAreaEnter, key)
	e.progressCurrentObjectives(func(o *Objective) (bool, int) {
		switch o.Type {
		case ObjectiveCustom, ObjectiveStealth, ObjectiveVehicle, ObjectiveEscort:
		default:
			return false, 0
		}
		if o.TargetKey == "" || o.TargetKey != key {
			return false, 0
		}
		return true, 1
	})
}

// OnCollectibleFound handles a collectible pickup keyed by collectible id.
func (e *Engine) OnCollectibleFound(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activateMatchingBranches(TriggerCollectible, key)
	e.progressCurrentObjectives(func(o *Objective) (bool, int) {
		if o.Type != ObjectiveCollect {
			return false, 0
		}
		if o.TargetKey != "" && o.TargetKey != key {
			return false, 0
		}
		return true, 1
	})
}

// OnEnemyKilled progresses kill-count objectives by one. targetKey also
// completes kill_target objectives for matching named enemies; pass "" for
// an unnamed kill.
func (e *Engine) OnEnemyKilled(targetKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progressCurrentObjectives(func(o *Objective) (bool, int) {
		switch o.Type {
		case ObjectiveKillEnemies:
			if o.TargetKey != "" && o.TargetKey != targetKey {
				return false, 0
			}
			return true, 1
		case ObjectiveKillTarget:
			if o.TargetKey != "" && o.TargetKey == targetKey {
				return true, o.RequiredCount()
			}
		}
		return false, 0
	})
}

// OnPlayerReachLocation records the player position and completes any active
// reach_location objective whose radius now contains the player.
func (e *Engine) OnPlayerReachLocation(pos levels.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPos = pos
	e.hasPos = true
	e.progressCurrentObjectives(func(o *Objective) (bool, int) {
		if o.Type != ObjectiveReachLocation || o.Target == nil {
			return false, 0
		}
		if pos.Distance(*o.Target) > o.ReachRadius() {
			return false, 0
		}
		return true, o.RequiredCount()
	})
}

// OnPlayerDeath fails every active quest flagged FailOnDeath.
func (e *Engine) OnPlayerDeath() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.sortedActiveIDs() {
		st := e.active[id]
		if st == nil {
			continue
		}
		q := e.reg.Get(id)
		if q == nil || !q.FailOnDeath {
			continue
		}
		e.fail(q, st, FailReasonDeath)
	}
}

// SetPaused suspends or resumes the objective timer tick. While paused,
// Tick calls accumulate no time, so timed objectives never expire.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = paused
}

// Tick advances timed objectives by dt seconds. Survive and defend
// objectives complete when their duration is held; objectives with a time
// limit fail their quest when it elapses.
func (e *Engine) Tick(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused || dt <= 0 {
		return
	}

	for _, id := range e.sortedActiveIDs() {
		st := e.active[id]
		if st == nil {
			continue
		}
		q := e.reg.Get(id)
		if q == nil || st.ObjectiveIndex >= len(q.Objectives) {
			continue
		}
		o := &q.Objectives[st.ObjectiveIndex]
		if st.Objectives[o.ID] != ObjectiveActive {
			continue
		}
		st.Elapsed[o.ID] += dt
		elapsed := st.Elapsed[o.ID]

		if o.TimeLimit > 0 && elapsed >= o.TimeLimit {
			e.fail(q, st, FailReasonTimeLimit)
			continue
		}
		if (o.Type == ObjectiveSurvive || o.Type == ObjectiveDefend) && elapsed >= o.Duration {
			e.completeObjective(q, st, o.ID)
		}
	}
}

// canStart evaluates prerequisites against current engine state. Called with
// the mutex held.
func (e *Engine) canStart(questID string) bool {
	return e.reg.CanStart(questID, e.completed, e.completedLevels, e.inventory)
}

// activate creates runtime state for q and fires activation side effects.
// Called with the mutex held; callers have already checked eligibility.
func (e *Engine) activate(q *Quest) {
	st := newState(q, e.now())
	e.active[q.ID] = st
	e.log.Info("quest activated", "quest", q.ID, "type", q.Type, "level", q.LevelID)

	e.sink.QuestStarted(q)
	first := &q.Objectives[0]
	e.sink.ObjectiveChanged(q, first, 0, first.RequiredCount())
	if first.Target != nil {
		e.sink.MarkerChanged(q, *first.Target, first.ReachRadius())
	}
	if first.StartDialogue != "" {
		e.sink.Dialogue(first.StartDialogue)
	}
}

// activeQuest resolves an active quest id to its definition and state,
// logging a warning for unknown ids. Called with the mutex held.
func (e *Engine) activeQuest(questID string) (*Quest, *State) {
	q := e.reg.Get(questID)
	if q == nil {
		e.log.Warn("unknown quest id", "quest", questID)
		return nil, nil
	}
	st := e.active[questID]
	if st == nil {
		return nil, nil
	}
	return q, st
}

// progress applies amount to an objective if it is the quest's active
// objective. Called with the mutex held.
func (e *Engine) progress(questID, objectiveID string, amount int) {
	q, st := e.activeQuest(questID)
	if q == nil || amount <= 0 {
		return
	}
	if st.Objectives[objectiveID] != ObjectiveActive {
		return
	}
	o := q.objective(objectiveID)
	if o == nil {
		e.log.Warn("unknown objective id", "quest", questID, "objective", objectiveID)
		return
	}

	required := o.RequiredCount()
	next := st.Progress[objectiveID] + amount
	if next > required {
		next = required
	}
	st.Progress[objectiveID] = next
	e.sink.ObjectiveChanged(q, o, next, required)
	if next >= required {
		e.completeObjective(q, st, objectiveID)
	}
}

// completeObjective finishes one objective and advances the quest. Called
// with the mutex held.
func (e *Engine) completeObjective(q *Quest, st *State, objectiveID string) {
	if st.Objectives[objectiveID] != ObjectiveActive {
		return
	}
	o := q.objective(objectiveID)
	if o == nil {
		return
	}
	st.Objectives[objectiveID] = ObjectiveStatusCompleted
	st.Progress[objectiveID] = o.RequiredCount()
	e.log.Info("objective completed", "quest", q.ID, "objective", objectiveID)
	if o.CompleteDialogue != "" {
		e.sink.Dialogue(o.CompleteDialogue)
	}

	if st.ObjectiveIndex+1 < len(q.Objectives) {
		st.ObjectiveIndex++
		next := &q.Objectives[st.ObjectiveIndex]
		st.Objectives[next.ID] = ObjectiveActive
		e.sink.ObjectiveChanged(q, next, 0, next.RequiredCount())
		if next.Target != nil {
			e.sink.MarkerChanged(q, *next.Target, next.ReachRadius())
		} else {
			e.sink.MarkerCleared(q)
		}
		if next.StartDialogue != "" {
			e.sink.Dialogue(next.StartDialogue)
		}
		return
	}
	e.completeQuest(q, st)
}

// completeQuest moves a quest from active to completed and fires completion
// side effects. Main-chain progression stays level-driven: the next quest is
// picked up by the next OnLevelEnter, never auto-activated here. Called with
// the mutex held.
func (e *Engine) completeQuest(q *Quest, st *State) {
	if e.completed[q.ID] {
		e.log.Debug("quest already completed", "quest", q.ID)
		return
	}
	st.Status = StatusCompleted
	st.CompletedAt = e.now()
	delete(e.active, q.ID)
	e.completed[q.ID] = true
	e.log.Info("quest completed", "quest", q.ID, "type", q.Type)

	e.sink.MarkerCleared(q)
	e.sink.QuestCompleted(q)
	for _, item := range q.Rewards {
		e.inventory[item]++
	}
	if q.RewardDialogue != "" {
		e.sink.Dialogue(q.RewardDialogue)
	}

	// Completing a quest can make its unlocked branch quests available
	// immediately if they belong to the current level.
	for _, id := range q.Unlocks {
		b := e.reg.Get(id)
		if b == nil || b.LevelID != e.currentLevel {
			continue
		}
		if _, isActive := e.active[id]; isActive || e.completed[id] {
			continue
		}
		if e.canStart(id) {
			e.activate(b)
		}
	}
}

// fail moves a quest from active to failed. Called with the mutex held.
func (e *Engine) fail(q *Quest, st *State, reason string) {
	st.Status = StatusFailed
	st.FailedAt = e.now()
	st.FailReason = reason
	if st.ObjectiveIndex < len(q.Objectives) {
		st.Objectives[q.Objectives[st.ObjectiveIndex].ID] = ObjectiveStatusFailed
	}
	delete(e.active, q.ID)
	e.failed[q.ID] = true
	e.failReasons[q.ID] = reason
	e.log.Info("quest failed", "quest", q.ID, "reason", reason)

	e.sink.MarkerCleared(q)
	e.sink.QuestFailed(q, reason)
	if q.Type == TypeMain {
		e.sink.Dialogue("mission_failed")
	}
}

// activateMatchingBranches activates branch quests of the current level
// whose trigger matches the event. Called with the mutex held.
func (e *Engine) activateMatchingBranches(trigger TriggerType, key string) {
	for _, q := range e.reg.BranchQuestsForLevel(e.currentLevel) {
		if q.Trigger != trigger || q.TriggerKey != key {
			continue
		}
		if _, isActive := e.active[q.ID]; isActive || e.completed[q.ID] || e.failed[q.ID] {
			continue
		}
		if e.canStart(q.ID) {
			e.activate(q)
		}
	}
}

// progressCurrentObjectives applies match to the current objective of every
// active quest; a (true, n) result progresses it by n. Called with the mutex
// held.
func (e *Engine) progressCurrentObjectives(match func(*Objective) (bool, int)) {
	for _, id := range e.sortedActiveIDs() {
		st := e.active[id]
		if st == nil {
			continue
		}
		q := e.reg.Get(id)
		if q == nil || st.ObjectiveIndex >= len(q.Objectives) {
			continue
		}
		o := &q.Objectives[st.ObjectiveIndex]
		if st.Objectives[o.ID] != ObjectiveActive {
			continue
		}
		if ok, amount := match(o); ok {
			e.progress(id, o.ID, amount)
		}
	}
}

// sortedActiveIDs returns active quest ids in stable order so side effects
// fire deterministically. Called with the mutex held.
func (e *Engine) sortedActiveIDs() []string {
	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// objective finds an objective by id within the quest.
func (q *Quest) objective(id string) *Objective {
	for i := range q.Objectives {
		if q.Objectives[i].ID == id {
			return &q.Objectives[i]
		}
	}
	return nil
}

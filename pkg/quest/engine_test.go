package quest

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// recordSink records every side effect for assertions.
type recordSink struct {
	started    []string
	completed  []string
	failed     []string
	objectives []string
	dialogues  []string
	markers    int
	cleared    int
}

func (s *recordSink) QuestStarted(q *Quest)            { s.started = append(s.started, q.ID) }
func (s *recordSink) QuestCompleted(q *Quest)          { s.completed = append(s.completed, q.ID) }
func (s *recordSink) QuestFailed(q *Quest, reason string) {
	s.failed = append(s.failed, q.ID+":"+reason)
}
func (s *recordSink) ObjectiveChanged(q *Quest, o *Objective, progress, required int) {
	s.objectives = append(s.objectives, fmt.Sprintf("%s/%s:%d/%d", q.ID, o.ID, progress, required))
}
func (s *recordSink) MarkerChanged(*Quest, levels.Vec3, float64) { s.markers++ }
func (s *recordSink) MarkerCleared(*Quest)                       { s.cleared++ }
func (s *recordSink) Dialogue(id string)                         { s.dialogues = append(s.dialogues, id) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Quest{
		{
			ID: "m1", Type: TypeMain, LevelID: "L1", Title: "Sweep the Deck",
			Trigger: TriggerLevelEnter, NextQuestID: "m2",
			Objectives: []Objective{
				{ID: "reach", Type: ObjectiveReachLocation, Text: "Reach the airlock",
					Target: &levels.Vec3{X: 0, Y: 0, Z: 0}, Radius: 3},
				{ID: "clear", Type: ObjectiveKillEnemies, Text: "Clear hostiles", Required: 3,
					CompleteDialogue: "deck_clear"},
			},
		},
		{
			ID: "m2", Type: TypeMain, LevelID: "L2", Title: "Restore Power",
			Trigger: TriggerLevelEnter, RequiresQuests: []string{"m1"},
			Objectives: []Objective{
				{ID: "panel", Type: ObjectiveInteract, Text: "Activate the panel", TargetKey: "panel"},
			},
		},
		{
			ID: "b1", Type: TypeBranch, LevelID: "L1", Title: "Hold the Beacon",
			Trigger: TriggerInteract, TriggerKey: "beacon", FailOnDeath: true,
			Rewards: []string{"beacon_core"},
			Objectives: []Objective{
				{ID: "hold", Type: ObjectiveSurvive, Text: "Hold position", Duration: 10},
			},
		},
		{
			ID: "b2", Type: TypeBranch, LevelID: "L1", Title: "Race the Clock",
			Trigger: TriggerAreaEnter, TriggerKey: "vault",
			Objectives: []Objective{
				{ID: "grab", Type: ObjectiveCollect, Text: "Grab the intel", TargetKey: "intel",
					Required: 2, TimeLimit: 30},
			},
		},
		{
			ID: "s1", Type: TypeSecret, LevelID: "L1", Title: "Broodmother",
			Trigger: TriggerLevelEnter, RequiresItems: []string{"beacon_core"},
			Objectives: []Objective{
				{ID: "slay", Type: ObjectiveKillTarget, Text: "Kill the broodmother", TargetKey: "broodmother"},
			},
		},
		{
			ID: "u1", Type: TypeBranch, LevelID: "L2", Title: "Unlocked Errand",
			Trigger: TriggerLevelEnter,
			Objectives: []Objective{
				{ID: "run", Type: ObjectiveCustom, Text: "Run the errand", TargetKey: "errand"},
			},
		},
	})
	require.NoError(t, err)
	return reg
}

func newTestEngine(t *testing.T) (*Engine, *recordSink) {
	t.Helper()
	sink := &recordSink{}
	e := NewEngine(testRegistry(t), testLogger()).
		WithSink(sink).
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })
	return e, sink
}

func TestEngine_LevelEnterActivatesMainQuest(t *testing.T) {
	e, sink := newTestEngine(t)

	e.OnLevelEnter("L1")

	st, ok := e.QuestState("m1")
	require.True(t, ok)
	assert.Equal(t, StatusActive, st.Status)
	assert.Equal(t, 0, st.ObjectiveIndex)
	assert.Equal(t, ObjectiveActive, st.Objectives["reach"])
	assert.Equal(t, ObjectivePending, st.Objectives["clear"])
	assert.Equal(t, []string{"m1"}, sink.started)
	assert.Equal(t, 1, sink.markers) // first objective has a location target
}

func TestEngine_MainQuestPrerequisiteGating(t *testing.T) {
	e, sink := newTestEngine(t)

	// m2 requires m1; entering L2 cold activates nothing except u1, which has
	// no prerequisites.
	e.OnLevelEnter("L2")
	_, ok := e.QuestState("m2")
	assert.False(t, ok)
	assert.Equal(t, []string{"u1"}, sink.started)
}

func TestEngine_BranchActivationByTrigger(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")

	// Wrong key does nothing.
	e.OnObjectInteract("console")
	_, ok := e.QuestState("b1")
	assert.False(t, ok)

	e.OnObjectInteract("beacon")
	st, ok := e.QuestState("b1")
	require.True(t, ok)
	assert.Equal(t, StatusActive, st.Status)
}

func TestEngine_SecretQuestRequiresItem(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")

	// s1 needs a beacon_core, so a cold level enter doesn't start it.
	_, ok := e.QuestState("s1")
	assert.False(t, ok)

	// Completing b1 rewards the item; re-entering the level starts s1.
	e.OnObjectInteract("beacon")
	e.Tick(11)
	assert.True(t, e.IsQuestCompleted("b1"))

	e.OnLevelExit("L1")
	e.OnLevelEnter("L1")
	_, ok = e.QuestState("s1")
	assert.True(t, ok)
}

func TestEngine_ProgressClampAndSingleCascade(t *testing.T) {
	e, sink := newTestEngine(t)
	e.OnLevelEnter("L1")

	// Finish the reach objective to make "clear" active.
	e.OnPlayerReachLocation(levels.Vec3{X: 1, Y: 0, Z: 2})

	// Overshoot the kill requirement in one call.
	e.ProgressObjective("m1", "clear", 5)

	assert.True(t, e.IsQuestCompleted("m1"))
	assert.Equal(t, []string{"m1"}, sink.completed, "completion cascades exactly once")

	// Stored progress is clamped to the requirement.
	last := sink.objectives[len(sink.objectives)-1]
	assert.Equal(t, "m1/clear:3/3", last)
}

func TestEngine_ProgressIgnoresInactiveObjective(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")

	// "clear" is still pending; progress on it is dropped.
	e.ProgressObjective("m1", "clear", 2)
	st, _ := e.QuestState("m1")
	assert.Equal(t, 0, st.Progress["clear"])
	assert.Equal(t, 0, st.ObjectiveIndex)
}

func TestEngine_ReachLocationRadius(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")

	// Outside the 3m radius: nothing happens.
	e.OnPlayerReachLocation(levels.Vec3{X: 4, Y: 0, Z: 0})
	st, _ := e.QuestState("m1")
	assert.Equal(t, 0, st.ObjectiveIndex)

	// Inside: the objective completes and the next one activates.
	e.OnPlayerReachLocation(levels.Vec3{X: 2, Y: 0, Z: 0})
	st, _ = e.QuestState("m1")
	assert.Equal(t, 1, st.ObjectiveIndex)
	assert.Equal(t, ObjectiveActive, st.Objectives["clear"])
}

func TestEngine_KillEventsProgressObjectives(t *testing.T) {
	e, sink := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnPlayerReachLocation(levels.Vec3{})

	e.OnEnemyKilled("")
	e.OnEnemyKilled("drone")
	e.OnEnemyKilled("")
	assert.True(t, e.IsQuestCompleted("m1"))
	assert.Contains(t, sink.dialogues, "deck_clear")
}

func TestEngine_KillTargetCompletesInOneEvent(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnObjectInteract("beacon")
	e.Tick(11) // complete b1 for the item reward
	e.OnLevelExit("L1")
	e.OnLevelEnter("L1")

	// Unnamed kills don't touch a named target objective.
	e.OnEnemyKilled("")
	assert.False(t, e.IsQuestCompleted("s1"))

	e.OnEnemyKilled("broodmother")
	assert.True(t, e.IsQuestCompleted("s1"))
}

func TestEngine_IdempotentObjectiveCompletion(t *testing.T) {
	e, sink := newTestEngine(t)
	e.OnLevelEnter("L1")

	e.CompleteObjective("m1", "reach")
	e.CompleteObjective("m1", "reach")

	st, _ := e.QuestState("m1")
	assert.Equal(t, 1, st.ObjectiveIndex)
	assert.Equal(t, ObjectiveStatusCompleted, st.Objectives["reach"])
	assert.Equal(t, []string{"m1"}, sink.started)
}

func TestEngine_TickCompletesSurviveObjective(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnObjectInteract("beacon")

	for i := 0; i < 99; i++ {
		e.Tick(0.1)
	}
	assert.False(t, e.IsQuestCompleted("b1"))

	e.Tick(0.2)
	assert.True(t, e.IsQuestCompleted("b1"))
}

func TestEngine_TickIgnoredWhilePaused(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnObjectInteract("beacon")

	e.SetPaused(true)
	for i := 0; i < 500; i++ {
		e.Tick(0.1)
	}
	_, ok := e.QuestState("b1")
	assert.True(t, ok, "paused ticks must not advance the survive timer")

	e.SetPaused(false)
	e.Tick(10.1)
	assert.True(t, e.IsQuestCompleted("b1"))
}

func TestEngine_TimeLimitFailsQuest(t *testing.T) {
	e, sink := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnAreaEnter("vault")

	_, ok := e.QuestState("b2")
	require.True(t, ok)

	e.Tick(30)
	failed, reason := e.IsQuestFailed("b2")
	assert.True(t, failed)
	assert.Equal(t, FailReasonTimeLimit, reason)
	assert.Contains(t, sink.failed, "b2:"+FailReasonTimeLimit)
}

func TestEngine_LevelExitFailsBranchDiscardsMain(t *testing.T) {
	e, sink := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnObjectInteract("beacon")
	e.OnPlayerReachLocation(levels.Vec3{}) // main quest advances to objective 2

	e.OnLevelExit("L1")

	failed, reason := e.IsQuestFailed("b1")
	assert.True(t, failed)
	assert.Equal(t, FailReasonLeftLevel, reason)

	// The main quest is neither failed nor completed, just gone.
	mainFailed, _ := e.IsQuestFailed("m1")
	assert.False(t, mainFailed)
	assert.False(t, e.IsQuestCompleted("m1"))
	_, ok := e.QuestState("m1")
	assert.False(t, ok)

	// Re-entering the level clears the branch failure and restarts the main
	// quest from its first objective.
	e.OnLevelEnter("L1")
	failed, _ = e.IsQuestFailed("b1")
	assert.False(t, failed)
	st, ok := e.QuestState("m1")
	require.True(t, ok)
	assert.Equal(t, 0, st.ObjectiveIndex)

	assert.NotEmpty(t, sink.failed)
}

func TestEngine_PlayerDeathFailsFlaggedQuestsOnly(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnObjectInteract("beacon") // b1 has FailOnDeath

	e.OnPlayerDeath()

	failed, reason := e.IsQuestFailed("b1")
	assert.True(t, failed)
	assert.Equal(t, FailReasonDeath, reason)

	_, ok := e.QuestState("m1")
	assert.True(t, ok, "main quest survives death")
}

func TestEngine_CompletedQuestNotReactivated(t *testing.T) {
	e, sink := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnPlayerReachLocation(levels.Vec3{})
	e.OnEnemyKilled("")
	e.OnEnemyKilled("")
	e.OnEnemyKilled("")
	require.True(t, e.IsQuestCompleted("m1"))

	e.OnLevelExit("L1")
	e.OnLevelEnter("L1")
	_, ok := e.QuestState("m1")
	assert.False(t, ok)
	assert.Equal(t, []string{"m1"}, sink.completed)
}

func TestEngine_MainChainIsLevelDriven(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnPlayerReachLocation(levels.Vec3{})
	e.ProgressObjective("m1", "clear", 3)
	require.True(t, e.IsQuestCompleted("m1"))

	// m2 does not auto-activate; it waits for its level.
	_, ok := e.QuestState("m2")
	assert.False(t, ok)

	e.OnLevelExit("L1")
	e.NoteLevelCompleted("L1")
	e.OnLevelEnter("L2")
	_, ok = e.QuestState("m2")
	assert.True(t, ok)
}

func TestEngine_SaveStateRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnPlayerReachLocation(levels.Vec3{})
	e.ProgressObjective("m1", "clear", 2) // mid-objective progress
	e.OnObjectInteract("beacon")
	e.NoteLevelCompleted("L0")
	e.AddItem("medkit", 2)

	saved := e.SaveState()

	restored := NewEngine(testRegistry(t), testLogger())
	require.NoError(t, restored.LoadSaveState(saved))

	st, ok := restored.QuestState("m1")
	require.True(t, ok)
	assert.Equal(t, 1, st.ObjectiveIndex)
	assert.Equal(t, 2, st.Progress["clear"])

	_, ok = restored.QuestState("b1")
	assert.True(t, ok)

	again := restored.SaveState()
	assert.Equal(t, saved.CompletedQuests, again.CompletedQuests)
	assert.Equal(t, saved.FailedQuests, again.FailedQuests)
	assert.Equal(t, saved.CompletedLevels, again.CompletedLevels)
	assert.Equal(t, saved.Inventory, again.Inventory)
	require.Len(t, again.ActiveQuests, len(saved.ActiveQuests))
}

func TestEngine_LoadSaveStateRejectsUnknownQuests(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.LoadSaveState(SaveState{CompletedQuests: []string{"nope"}})
	assert.Error(t, err)
}

func TestEngine_QueriesReturnDefensiveCopies(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")

	st, _ := e.QuestState("m1")
	st.Progress["reach"] = 99
	st.Objectives["reach"] = ObjectiveStatusFailed

	fresh, _ := e.QuestState("m1")
	assert.Equal(t, 0, fresh.Progress["reach"])
	assert.Equal(t, ObjectiveActive, fresh.Objectives["reach"])
}

func TestEngine_ActiveQuestsSorted(t *testing.T) {
	e, _ := newTestEngine(t)
	e.OnLevelEnter("L1")
	e.OnObjectInteract("beacon")
	e.OnAreaEnter("vault")

	states := e.ActiveQuests()
	require.Len(t, states, 3)
	assert.Equal(t, "b1", states[0].QuestID)
	assert.Equal(t, "b2", states[1].QuestID)
	assert.Equal(t, "m1", states[2].QuestID)
}

func TestDefaultCampaignRegistryIsValid(t *testing.T) {
	reg := DefaultCampaign()
	assert.Greater(t, reg.Len(), 10)

	chain := levels.DefaultChain()
	for _, q := range reg.All() {
		assert.NotNil(t, chain.Get(q.LevelID), "quest %s references level %s", q.ID, q.LevelID)
	}
}

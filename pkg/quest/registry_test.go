package quest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

func validQuest(id string) Quest {
	return Quest{
		ID: id, Type: TypeBranch, LevelID: "L1", Title: "Test Quest",
		Trigger: TriggerLevelEnter,
		Objectives: []Objective{
			{ID: "o1", Type: ObjectiveInteract, Text: "Do the thing", TargetKey: "thing"},
		},
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		quests  []Quest
		wantErr string
	}{
		{
			name: "valid graph",
			quests: []Quest{
				{ID: "m", Type: TypeMain, LevelID: "L1", Trigger: TriggerLevelEnter,
					NextQuestID: "m2", Unlocks: []string{"b"},
					Objectives: []Objective{{ID: "o1", Type: ObjectiveInteract}}},
				{ID: "m2", Type: TypeMain, LevelID: "L2", Trigger: TriggerLevelEnter,
					RequiresQuests: []string{"m"},
					Objectives:     []Objective{{ID: "o1", Type: ObjectiveInteract}}},
				validQuest("b"),
			},
		},
		{
			name:    "empty id",
			quests:  []Quest{validQuest("")},
			wantErr: "empty id",
		},
		{
			name:    "duplicate id",
			quests:  []Quest{validQuest("b"), validQuest("b")},
			wantErr: "duplicate quest id",
		},
		{
			name: "missing level",
			quests: []Quest{{ID: "b", Type: TypeBranch, Trigger: TriggerLevelEnter,
				Objectives: []Objective{{ID: "o1", Type: ObjectiveInteract}}}},
			wantErr: "no owning level",
		},
		{
			name:    "no objectives",
			quests:  []Quest{{ID: "b", Type: TypeBranch, LevelID: "L1", Trigger: TriggerLevelEnter}},
			wantErr: "no objectives",
		},
		{
			name: "empty objective id",
			quests: []Quest{{ID: "b", Type: TypeBranch, LevelID: "L1", Trigger: TriggerLevelEnter,
				Objectives: []Objective{{Type: ObjectiveInteract}}}},
			wantErr: "empty id",
		},
		{
			name: "duplicate objective id",
			quests: []Quest{{ID: "b", Type: TypeBranch, LevelID: "L1", Trigger: TriggerLevelEnter,
				Objectives: []Objective{
					{ID: "o1", Type: ObjectiveInteract},
					{ID: "o1", Type: ObjectiveInteract},
				}}},
			wantErr: "duplicate objective id",
		},
		{
			name: "reach_location without target",
			quests: []Quest{{ID: "b", Type: TypeBranch, LevelID: "L1", Trigger: TriggerLevelEnter,
				Objectives: []Objective{{ID: "o1", Type: ObjectiveReachLocation}}}},
			wantErr: "without a target",
		},
		{
			name: "survive without duration",
			quests: []Quest{{ID: "b", Type: TypeBranch, LevelID: "L1", Trigger: TriggerLevelEnter,
				Objectives: []Objective{{ID: "o1", Type: ObjectiveSurvive}}}},
			wantErr: "positive duration",
		},
		{
			name: "two main quests on one level",
			quests: []Quest{
				{ID: "m1", Type: TypeMain, LevelID: "L1", Trigger: TriggerLevelEnter,
					Objectives: []Objective{{ID: "o1", Type: ObjectiveInteract}}},
				{ID: "m2", Type: TypeMain, LevelID: "L1", Trigger: TriggerLevelEnter,
					Objectives: []Objective{{ID: "o1", Type: ObjectiveInteract}}},
			},
			wantErr: "two main quests",
		},
		{
			name: "unknown quest type",
			quests: []Quest{{ID: "b", Type: "weird", LevelID: "L1", Trigger: TriggerLevelEnter,
				Objectives: []Objective{{ID: "o1", Type: ObjectiveInteract}}}},
			wantErr: "unknown type",
		},
		{
			name: "dangling next quest link",
			quests: []Quest{{ID: "m", Type: TypeMain, LevelID: "L1", Trigger: TriggerLevelEnter,
				NextQuestID: "missing",
				Objectives:  []Objective{{ID: "o1", Type: ObjectiveInteract}}}},
			wantErr: "unknown next quest",
		},
		{
			name: "next quest must be main",
			quests: []Quest{
				{ID: "m", Type: TypeMain, LevelID: "L1", Trigger: TriggerLevelEnter,
					NextQuestID: "b",
					Objectives:  []Objective{{ID: "o1", Type: ObjectiveInteract}}},
				validQuest("b"),
			},
			wantErr: "non-main next quest",
		},
		{
			name: "dangling unlock",
			quests: func() []Quest {
				q := validQuest("b")
				q.Unlocks = []string{"missing"}
				return []Quest{q}
			}(),
			wantErr: "unlocks unknown quest",
		},
		{
			name: "dangling prerequisite",
			quests: func() []Quest {
				q := validQuest("b")
				q.RequiresQuests = []string{"missing"}
				return []Quest{q}
			}(),
			wantErr: "requires unknown quest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.quests)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, len(tt.quests), reg.Len())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_Lookups(t *testing.T) {
	reg := DefaultCampaign()

	assert.Nil(t, reg.Get("nope"))
	require.NotNil(t, reg.Get("mq03-sweep"))

	main := reg.MainQuestForLevel("lv03-colony")
	require.NotNil(t, main)
	assert.Equal(t, "mq03-sweep", main.ID)
	assert.Nil(t, reg.MainQuestForLevel("lv99-missing"))

	branches := reg.BranchQuestsForLevel("lv03-colony")
	require.Len(t, branches, 2)
	assert.Equal(t, "bq03-records", branches[0].ID)
	assert.Equal(t, "sq03-blackbox", branches[1].ID)

	next := reg.NextMainQuest("mq03-sweep")
	require.NotNil(t, next)
	assert.Equal(t, "mq04-charges", next.ID)
	assert.Nil(t, reg.NextMainQuest("mq07-evac"))
}

func TestRegistry_CanStart(t *testing.T) {
	reg, err := NewRegistry([]Quest{
		{ID: "a", Type: TypeMain, LevelID: "L1", Trigger: TriggerLevelEnter,
			Objectives: []Objective{{ID: "o1", Type: ObjectiveInteract}}},
		{ID: "gated", Type: TypeBranch, LevelID: "L2", Trigger: TriggerLevelEnter,
			RequiresQuests: []string{"a"},
			RequiresLevels: []levels.ID{"L1"},
			RequiresItems:  []string{"keycard"},
			Objectives:     []Objective{{ID: "o1", Type: ObjectiveInteract}}},
	})
	require.NoError(t, err)

	none := map[string]bool{}
	noLevels := map[levels.ID]bool{}
	noItems := map[string]int{}

	assert.True(t, reg.CanStart("a", none, noLevels, noItems))
	assert.False(t, reg.CanStart("unknown", none, noLevels, noItems))

	assert.False(t, reg.CanStart("gated", none, noLevels, noItems))
	assert.False(t, reg.CanStart("gated",
		map[string]bool{"a": true}, noLevels, noItems))
	assert.False(t, reg.CanStart("gated",
		map[string]bool{"a": true}, map[levels.ID]bool{"L1": true}, noItems))
	assert.True(t, reg.CanStart("gated",
		map[string]bool{"a": true}, map[levels.ID]bool{"L1": true}, map[string]int{"keycard": 1}))
	assert.False(t, reg.CanStart("gated",
		map[string]bool{"a": true}, map[levels.ID]bool{"L1": true}, map[string]int{"keycard": 0}))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	arrayPath := filepath.Join(dir, "pack.json")
	arrayJSON := `[
		{"id": "x1", "type": "branch", "level_id": "L1", "trigger": "level_enter",
		 "objectives": [{"id": "o1", "type": "interact", "target_key": "door"}]},
		{"id": "x2", "type": "branch", "level_id": "L1", "trigger": "level_enter",
		 "objectives": [{"id": "o1", "type": "collect", "required": 3}]}
	]`
	require.NoError(t, os.WriteFile(arrayPath, []byte(arrayJSON), 0o644))

	quests, err := LoadFile(arrayPath)
	require.NoError(t, err)
	require.Len(t, quests, 2)
	assert.Equal(t, "x1", quests[0].ID)
	assert.Equal(t, 3, quests[1].Objectives[0].Required)

	singlePath := filepath.Join(dir, "one.json")
	singleJSON := `{"id": "solo", "type": "secret", "level_id": "L2", "trigger": "area_enter",
		"trigger_key": "cave", "objectives": [{"id": "o1", "type": "interact"}]}`
	require.NoError(t, os.WriteFile(singlePath, []byte(singleJSON), 0o644))

	quests, err = LoadFile(singlePath)
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, "solo", quests[0].ID)
	assert.Equal(t, TriggerAreaEnter, quests[0].Trigger)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestObjectiveDefaults(t *testing.T) {
	o := Objective{Type: ObjectiveReachLocation}
	assert.Equal(t, DefaultReachRadius, o.ReachRadius())
	assert.Equal(t, 1, o.RequiredCount())

	o = Objective{Type: ObjectiveKillEnemies, Required: 8, Radius: 2.5}
	assert.Equal(t, 2.5, o.ReachRadius())
	assert.Equal(t, 8, o.RequiredCount())
}

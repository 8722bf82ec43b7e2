package quest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// Registry is the immutable quest definition graph: the main chain plus
// branch and secret quests keyed by level. It holds no runtime state.
type Registry struct {
	byID        map[string]*Quest
	mainByLevel map[levels.ID]*Quest
	branches    []*Quest
}

// NewRegistry validates the definitions and builds the lookup tables.
func NewRegistry(quests []Quest) (*Registry, error) {
	r := &Registry{
		byID:        make(map[string]*Quest, len(quests)),
		mainByLevel: make(map[levels.ID]*Quest),
	}

	for i := range quests {
		q := quests[i]
		if q.ID == "" {
			return nil, fmt.Errorf("quest at index %d has empty id", i)
		}
		if _, dup := r.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quest id %q", q.ID)
		}
		if q.LevelID == "" {
			return nil, fmt.Errorf("quest %q has no owning level", q.ID)
		}
		if len(q.Objectives) == 0 {
			return nil, fmt.Errorf("quest %q has no objectives", q.ID)
		}
		seen := make(map[string]bool, len(q.Objectives))
		for j := range q.Objectives {
			o := &q.Objectives[j]
			if o.ID == "" {
				return nil, fmt.Errorf("quest %q objective at index %d has empty id", q.ID, j)
			}
			if seen[o.ID] {
				return nil, fmt.Errorf("quest %q has duplicate objective id %q", q.ID, o.ID)
			}
			seen[o.ID] = true
			if o.Type == ObjectiveReachLocation && o.Target == nil {
				return nil, fmt.Errorf("quest %q objective %q is reach_location without a target", q.ID, o.ID)
			}
			if (o.Type == ObjectiveSurvive || o.Type == ObjectiveDefend) && o.Duration <= 0 {
				return nil, fmt.Errorf("quest %q objective %q needs a positive duration", q.ID, o.ID)
			}
		}

		stored := q
		r.byID[q.ID] = &stored
		switch q.Type {
		case TypeMain:
			if prev, dup := r.mainByLevel[q.LevelID]; dup {
				return nil, fmt.Errorf("level %q has two main quests: %q and %q", q.LevelID, prev.ID, q.ID)
			}
			r.mainByLevel[q.LevelID] = &stored
		case TypeBranch, TypeSecret:
			r.branches = append(r.branches, &stored)
		default:
			return nil, fmt.Errorf("quest %q has unknown type %q", q.ID, q.Type)
		}
	}

	// Second pass: cross-references must resolve.
	for _, q := range r.byID {
		if q.NextQuestID != "" {
			next, ok := r.byID[q.NextQuestID]
			if !ok {
				return nil, fmt.Errorf("quest %q links to unknown next quest %q", q.ID, q.NextQuestID)
			}
			if next.Type != TypeMain {
				return nil, fmt.Errorf("quest %q links to non-main next quest %q", q.ID, q.NextQuestID)
			}
		}
		for _, id := range q.Unlocks {
			if _, ok := r.byID[id]; !ok {
				return nil, fmt.Errorf("quest %q unlocks unknown quest %q", q.ID, id)
			}
		}
		for _, id := range q.RequiresQuests {
			if _, ok := r.byID[id]; !ok {
				return nil, fmt.Errorf("quest %q requires unknown quest %q", q.ID, id)
			}
		}
	}

	return r, nil
}

// LoadFile reads quest definitions from a JSON file: either a single quest
// object or an array of quests.
func LoadFile(path string) ([]Quest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest file: %w", err)
	}
	var many []Quest
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one Quest
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quest file %s: %w", path, err)
	}
	return []Quest{one}, nil
}

// Get returns the quest definition for an id, or nil if unknown.
func (r *Registry) Get(id string) *Quest {
	return r.byID[id]
}

// MainQuestForLevel returns the level's main quest, or nil.
func (r *Registry) MainQuestForLevel(levelID levels.ID) *Quest {
	return r.mainByLevel[levelID]
}

// BranchQuestsForLevel returns the branch and secret quests owned by a level,
// in definition order.
func (r *Registry) BranchQuestsForLevel(levelID levels.ID) []*Quest {
	var out []*Quest
	for _, q := range r.branches {
		if q.LevelID == levelID {
			out = append(out, q)
		}
	}
	return out
}

// NextMainQuest follows the main-chain link from a quest id, or nil.
func (r *Registry) NextMainQuest(questID string) *Quest {
	q := r.byID[questID]
	if q == nil || q.NextQuestID == "" {
		return nil
	}
	return r.byID[q.NextQuestID]
}

// All returns every quest definition. The slice is fresh; the pointed-to
// definitions are shared and must not be mutated.
func (r *Registry) All() []*Quest {
	out := make([]*Quest, 0, len(r.byID))
	for _, q := range r.mainByLevel {
		out = append(out, q)
	}
	out = append(out, r.branches...)
	return out
}

// Len returns the number of registered quests.
func (r *Registry) Len() int {
	return len(r.byID)
}

// CanStart reports whether every prerequisite of the quest is satisfied.
// Absent prerequisites trivially pass; unknown quest ids never start.
func (r *Registry) CanStart(questID string, completedQuests map[string]bool, completedLevels map[levels.ID]bool, inventory map[string]int) bool {
	q := r.byID[questID]
	if q == nil {
		return false
	}
	for _, id := range q.RequiresQuests {
		if !completedQuests[id] {
			return false
		}
	}
	for _, id := range q.RequiresLevels {
		if !completedLevels[id] {
			return false
		}
	}
	for _, item := range q.RequiresItems {
		if inventory[item] <= 0 {
			return false
		}
	}
	return true
}

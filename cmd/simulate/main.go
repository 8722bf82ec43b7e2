// Command simulate runs a scripted campaign playthrough in-process: a marine
// actor fights through every level, quest objectives are satisfied through the
// same trigger entry points the game runtime uses, and the run stops at the
// credits or when the marine runs out of luck. Useful for smoke-testing
// campaign data end to end.
package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"math/rand"
	"os"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/campaign-engine/internal/config"
	"github.com/jwebster45206/campaign-engine/internal/logger"
	"github.com/jwebster45206/campaign-engine/internal/session"
	"github.com/jwebster45206/campaign-engine/internal/storage"
	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

const maxRetriesPerLevel = 10

func main() {
	seed := flag.Int64("seed", 1, "random seed for the combat simulation")
	difficulty := flag.String("difficulty", "normal", "campaign difficulty: easy, normal or hard")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}
	log := logger.Setup(cfg)

	marine, err := buildMarine(campaign.Difficulty(*difficulty))
	if err != nil {
		log.Error("Failed to build marine actor", "error", err)
		os.Exit(1)
	}

	chain := levels.DefaultChain()
	reg, err := quest.NewRegistry(quest.DefaultQuests())
	if err != nil {
		log.Error("Failed to build quest registry", "error", err)
		os.Exit(1)
	}

	sess := session.New(reg, chain, storage.NewMemoryStore(), nil, cfg.TickHz, log)
	defer sess.Close()

	rng := rand.New(rand.NewSource(*seed))
	sim := &simulation{
		sess:   sess,
		marine: marine,
		rng:    rng,
		log:    log,
	}

	sess.Director.Dispatch(campaign.Command{
		Type:       campaign.CmdNewGame,
		Difficulty: campaign.Difficulty(*difficulty),
	})
	sess.Director.Dispatch(campaign.Command{Type: campaign.CmdIntroComplete})

	if err := sim.run(); err != nil {
		log.Error("Simulation failed", "error", err)
		os.Exit(1)
	}

	snap := sess.Director.Snapshot()
	fmt.Printf("\nCampaign finished: phase=%s kills=%d deaths=%d\n",
		snap.Phase, snap.TotalKills, snap.Deaths)
	fmt.Printf("Marine: HP %d/%d AC %d\n", marine.HP(), marine.MaxHP(), marine.AC())
	fmt.Printf("Quests completed: %d, failed: %d\n",
		len(sess.Engine.CompletedQuestIDs()), len(sess.Engine.FailedQuestIDs()))
}

// buildMarine creates the simulated player with difficulty-scaled HP.
func buildMarine(difficulty campaign.Difficulty) (*d20.Actor, error) {
	hp := 100
	switch difficulty {
	case campaign.DifficultyEasy:
		hp = 150
	case campaign.DifficultyHard:
		hp = 70
	}
	return d20.NewActor("marine").
		WithHP(hp).
		WithAC(14).
		WithAttributes(map[string]int{
			"strength":  14,
			"dexterity": 12,
			"grit":      16,
		}).
		Build()
}

type simulation struct {
	sess   *session.Session
	marine *d20.Actor
	rng    *rand.Rand
	log    *slog.Logger
}

// run plays levels until the campaign reaches the credits or the retry budget
// runs out.
func (s *simulation) run() error {
	retries := 0
	for {
		snap := s.sess.Director.Snapshot()
		switch snap.Phase {
		case campaign.PhaseCredits:
			return nil
		case campaign.PhaseLoading:
			s.sess.Director.Dispatch(campaign.Command{Type: campaign.CmdLoadingComplete})
		case campaign.PhaseTutorial:
			s.completeObjectives(snap.LevelID)
			s.sess.Director.Dispatch(campaign.Command{Type: campaign.CmdTutorialComplete})
		case campaign.PhaseDropping:
			s.sess.Director.Dispatch(campaign.Command{Type: campaign.CmdDropComplete})
		case campaign.PhasePlaying:
			kills, damage, survived := s.fight(snap)
			if !survived {
				s.sess.Director.Dispatch(campaign.Command{Type: campaign.CmdPlayerDied})
				continue
			}
			s.completeObjectives(snap.LevelID)
			s.sess.Director.Dispatch(campaign.Command{
				Type: campaign.CmdLevelComplete,
				Stats: &campaign.LevelStats{
					Kills:          kills,
					DamageReceived: damage,
					ShotsFired:     kills * 4,
					ShotsHit:       kills * 3,
				},
			})
		case campaign.PhaseLevelComplete:
			retries = 0
			s.sess.Director.Dispatch(campaign.Command{Type: campaign.CmdAdvance})
		case campaign.PhaseGameOver:
			retries++
			if retries > maxRetriesPerLevel {
				return fmt.Errorf("retry budget exhausted on level %s", snap.LevelID)
			}
			s.heal()
			s.sess.Director.Dispatch(campaign.Command{Type: campaign.CmdRetry})
		default:
			return fmt.Errorf("simulation stuck in phase %s", snap.Phase)
		}
	}
}

// fight rolls a combat encounter per level. Hits against the marine land when
// the attack roll beats his AC.
func (s *simulation) fight(snap campaign.Snapshot) (kills, damage int, survived bool) {
	encounters := 10 + s.rng.Intn(20)
	for i := 0; i < encounters; i++ {
		kills++
		s.sess.Engine.OnEnemyKilled("")
		attackRoll := 1 + s.rng.Intn(20)
		if attackRoll >= s.marine.AC() {
			hit := 2 + s.rng.Intn(8)
			damage += hit
			newHP := s.marine.HP() - hit
			if newHP <= 0 {
				_ = s.marine.SetHP(0)
				s.log.Info("Marine down", "level", snap.LevelID, "kills", kills)
				return kills, damage, false
			}
			_ = s.marine.SetHP(newHP)
		}
	}
	return kills, damage, true
}

// heal patches the marine back up between attempts.
func (s *simulation) heal() {
	_ = s.marine.SetHP(s.marine.MaxHP())
}

// completeObjectives walks every active quest and fires the trigger that its
// current objective is waiting for.
func (s *simulation) completeObjectives(levelID levels.ID) {
	// Objectives can cascade into new quests; loop until nothing is active.
	for pass := 0; pass < 32; pass++ {
		states := s.sess.Engine.ActiveQuests()
		if len(states) == 0 {
			return
		}
		progressed := false
		for _, st := range states {
			q := questByID(s.sess, st.QuestID)
			if q == nil || st.ObjectiveIndex >= len(q.Objectives) {
				continue
			}
			o := q.Objectives[st.ObjectiveIndex]
			s.fireObjectiveTrigger(&o)
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

func (s *simulation) fireObjectiveTrigger(o *quest.Objective) {
	switch o.Type {
	case quest.ObjectiveReachLocation:
		if o.Target != nil {
			s.sess.Engine.OnPlayerReachLocation(*o.Target)
		}
	case quest.ObjectiveInteract:
		s.sess.Engine.OnObjectInteract(o.TargetKey)
	case quest.ObjectiveCollect:
		for i := 0; i < o.RequiredCount(); i++ {
			s.sess.Engine.OnCollectibleFound(o.TargetKey)
		}
	case quest.ObjectiveKillEnemies:
		for i := 0; i < o.RequiredCount(); i++ {
			s.sess.Engine.OnEnemyKilled(o.TargetKey)
		}
	case quest.ObjectiveKillTarget:
		s.sess.Engine.OnEnemyKilled(o.TargetKey)
	case quest.ObjectiveSurvive, quest.ObjectiveDefend:
		s.sess.Engine.Tick(o.Duration + 1)
	default:
		// escort, vehicle, stealth and custom objectives key off areas
		s.sess.Engine.OnAreaEnter(o.TargetKey)
	}
}

func questByID(sess *session.Session, id string) *quest.Quest {
	return sess.Registry.Get(id)
}

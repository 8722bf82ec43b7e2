package quest

import "github.com/jwebster45206/campaign-engine/pkg/levels"

// DefaultCampaign returns the built-in quest graph for the default level
// chain: one main quest per level plus branch and secret content.
func DefaultCampaign() *Registry {
	reg, err := NewRegistry(defaultQuests())
	if err != nil {
		// The built-in graph is validated at startup; an error here is a
		// programming mistake in the tables below.
		panic(err)
	}
	return reg
}

// DefaultQuests returns the built-in quest definitions. Callers may append
// externally loaded quests before building a registry.
func DefaultQuests() []Quest {
	return defaultQuests()
}

func vec(x, y, z float64) *levels.Vec3 {
	return &levels.Vec3{X: x, Y: y, Z: z}
}

func defaultQuests() []Quest {
	return []Quest{
		// --- Main chain ---
		{
			ID: "mq01-orientation", Type: TypeMain, LevelID: "lv01-anchorage",
			Title: "Orientation", Text: "Complete shipboard orientation.",
			Trigger: TriggerLevelEnter, NextQuestID: "mq02-perimeter",
			Objectives: []Objective{
				{ID: "reach-armory", Type: ObjectiveReachLocation, Text: "Report to the armory",
					Target: vec(12, 0, -34), Radius: 4, StartDialogue: "sgt_welcome"},
				{ID: "collect-rifle", Type: ObjectiveInteract, Text: "Draw a pulse rifle",
					TargetKey: "armory_rack", CompleteDialogue: "sgt_rifle_issued"},
				{ID: "range-targets", Type: ObjectiveKillEnemies, Text: "Destroy range targets",
					Required: 5, TargetKey: "range_target"},
				{ID: "reach-tracker", Type: ObjectiveReachLocation, Text: "Pick up the motion tracker",
					Target: vec(-8, 0, -20), Radius: 3, CompleteDialogue: "sgt_tracker"},
			},
		},
		{
			ID: "mq02-perimeter", Type: TypeMain, LevelID: "lv02-hotdrop",
			Title: "Secure the Perimeter", Text: "Establish a foothold at the colony perimeter.",
			Trigger: TriggerLevelEnter, NextQuestID: "mq03-sweep", FailOnDeath: true,
			Objectives: []Objective{
				{ID: "reach-lz", Type: ObjectiveReachLocation, Text: "Regroup at the landing zone",
					Target: vec(0, 2, 115), Radius: 8, StartDialogue: "drop_chatter"},
				{ID: "clear-gate", Type: ObjectiveKillEnemies, Text: "Clear hostiles at the gate",
					Required: 8},
				{ID: "restore-power", Type: ObjectiveInteract, Text: "Restore perimeter power",
					TargetKey: "perimeter_breaker", CompleteDialogue: "power_restored"},
				{ID: "hold-gate", Type: ObjectiveDefend, Text: "Hold the gate until the squad is through",
					Duration: 45, CompleteDialogue: "gate_held"},
			},
		},
		{
			ID: "mq03-sweep", Type: TypeMain, LevelID: "lv03-colony",
			Title: "Sublevel Sweep", Text: "Sweep the colony sublevels for survivors.",
			Trigger: TriggerLevelEnter, NextQuestID: "mq04-charges", FailOnDeath: true,
			Objectives: []Objective{
				{ID: "find-medbay", Type: ObjectiveReachLocation, Text: "Search the medbay",
					Target: vec(-42, -6, 18), Radius: 6},
				{ID: "talk-survivor", Type: ObjectiveInteract, Text: "Question the survivor",
					TargetKey: "survivor_keyes", StartDialogue: "survivor_found",
					CompleteDialogue: "survivor_statement"},
				{ID: "uplink-key", Type: ObjectiveCollect, Text: "Recover uplink keycards",
					Required: 2, TargetKey: "uplink_keycard"},
				{ID: "restore-uplink", Type: ObjectiveInteract, Text: "Bring the uplink online",
					TargetKey: "colony_uplink", CompleteDialogue: "uplink_online"},
			},
		},
		{
			ID: "mq04-charges", Type: TypeMain, LevelID: "lv04-refinery",
			Title: "Demolition Run", Text: "Plant charges on the refinery coolant lines.",
			Trigger: TriggerLevelEnter, NextQuestID: "mq05-push", FailOnDeath: true,
			Objectives: []Objective{
				{ID: "collect-charges", Type: ObjectiveCollect, Text: "Collect demolition charges",
					Required: 3, TargetKey: "demo_charge"},
				{ID: "plant-a", Type: ObjectiveInteract, Text: "Plant a charge at coolant line A",
					TargetKey: "coolant_a"},
				{ID: "plant-b", Type: ObjectiveInteract, Text: "Plant a charge at coolant line B",
					TargetKey: "coolant_b"},
				{ID: "escape-blast", Type: ObjectiveReachLocation, Text: "Get clear of the blast radius",
					Target: vec(88, 10, -4), Radius: 10, TimeLimit: 120,
					StartDialogue: "charges_armed", CompleteDialogue: "blast_clear"},
			},
		},
		{
			ID: "mq05-push", Type: TypeMain, LevelID: "lv05-nest",
			Title: "Into the Nest", Text: "Push through the nest outskirts.",
			Trigger: TriggerLevelEnter, NextQuestID: "mq06-queen", FailOnDeath: true,
			Objectives: []Objective{
				{ID: "escort-synth", Type: ObjectiveEscort, Text: "Escort the synthetic to the junction",
					TargetKey: "synth_arrived", StartDialogue: "synth_intro"},
				{ID: "survive-swarm", Type: ObjectiveSurvive, Text: "Survive the swarm",
					Duration: 90, StartDialogue: "swarm_warning", CompleteDialogue: "swarm_over"},
				{ID: "reach-mouth", Type: ObjectiveReachLocation, Text: "Reach the nest mouth",
					Target: vec(-120, -22, 240), Radius: 8},
			},
		},
		{
			ID: "mq06-queen", Type: TypeMain, LevelID: "lv06-hive",
			Title: "The Queen", Text: "Find and kill the queen.",
			Trigger: TriggerLevelEnter, NextQuestID: "mq07-evac", FailOnDeath: true,
			Objectives: []Objective{
				{ID: "find-chamber", Type: ObjectiveReachLocation, Text: "Locate the queen's chamber",
					Target: vec(-6, -80, 310), Radius: 12, CompleteDialogue: "queen_detected"},
				{ID: "kill-queen", Type: ObjectiveKillTarget, Text: "Kill the queen",
					TargetKey: "hive_queen", StartDialogue: "queen_fight", CompleteDialogue: "queen_dead"},
			},
		},
		{
			ID: "mq07-evac", Type: TypeMain, LevelID: "lv07-evac",
			Title: "Final Evac", Text: "Reach the dropship before the refinery detonates.",
			Trigger: TriggerLevelEnter, FailOnDeath: true,
			Objectives: []Objective{
				{ID: "reach-dropship", Type: ObjectiveReachLocation, Text: "Reach the dropship",
					Target: vec(310, 14, -60), Radius: 10, TimeLimit: 420,
					StartDialogue: "evac_countdown", CompleteDialogue: "evac_reached"},
			},
		},

		// --- Branch quests ---
		{
			ID: "bq02-beacon", Type: TypeBranch, LevelID: "lv02-hotdrop",
			Title: "Dark Beacon", Text: "Silence the rogue distress beacon.",
			Trigger: TriggerAreaEnter, TriggerKey: "beacon_ridge", FailOnDeath: false,
			Objectives: []Objective{
				{ID: "reach-beacon", Type: ObjectiveReachLocation, Text: "Climb to the beacon",
					Target: vec(64, 30, 140), Radius: 5},
				{ID: "disable-beacon", Type: ObjectiveInteract, Text: "Disable the beacon",
					TargetKey: "distress_beacon", CompleteDialogue: "beacon_silenced"},
			},
			Rewards: []string{"signal_decoder"},
		},
		{
			ID: "bq03-records", Type: TypeBranch, LevelID: "lv03-colony",
			Title: "Colony Records", Text: "Recover the administrator's records.",
			Trigger: TriggerNPCDialogue, TriggerKey: "survivor_keyes",
			RequiresQuests: []string{"mq02-perimeter"},
			Objectives: []Objective{
				{ID: "collect-records", Type: ObjectiveCollect, Text: "Collect record slates",
					Required: 3, TargetKey: "record_slate"},
				{ID: "return-records", Type: ObjectiveInteract, Text: "Hand the records to Keyes",
					TargetKey: "survivor_keyes", CompleteDialogue: "records_returned"},
			},
			Rewards: []string{"admin_passkey"},
		},
		{
			ID: "bq04-venting", Type: TypeBranch, LevelID: "lv04-refinery",
			Title: "Emergency Venting", Text: "Vent the flooded maintenance shafts.",
			Trigger: TriggerInteract, TriggerKey: "vent_console",
			RequiresItems: []string{"admin_passkey"},
			Objectives: []Objective{
				{ID: "vent-shafts", Type: ObjectiveInteract, Text: "Trigger the emergency vent",
					TargetKey: "vent_master", CompleteDialogue: "shafts_vented"},
				{ID: "stealth-exit", Type: ObjectiveStealth, Text: "Slip out before the drones wake",
					TargetKey: "shaft_exit", TimeLimit: 90},
			},
		},
		{
			ID: "bq05-wounded", Type: TypeBranch, LevelID: "lv05-nest",
			Title: "No One Left Behind", Text: "Carry the wounded marine to the extraction point.",
			Trigger: TriggerAreaEnter, TriggerKey: "crash_site", FailOnDeath: true,
			Objectives: []Objective{
				{ID: "escort-wounded", Type: ObjectiveEscort, Text: "Get Vasquez to the extraction point",
					TargetKey: "vasquez_extracted", StartDialogue: "vasquez_found",
					CompleteDialogue: "vasquez_safe"},
			},
		},

		// --- Secret quests ---
		{
			ID: "sq03-blackbox", Type: TypeSecret, LevelID: "lv03-colony",
			Title: "Black Box", Text: "Someone wiped the colony logs. Someone missed one.",
			Trigger: TriggerCollectible, TriggerKey: "blackbox_log",
			Objectives: []Objective{
				{ID: "collect-blackbox", Type: ObjectiveCollect, Text: "Recover the black box recordings",
					Required: 1, TargetKey: "blackbox_log", CompleteDialogue: "blackbox_plays"},
			},
			Unlocks: []string{"sq06-broodcull"},
		},
		{
			ID: "sq06-broodcull", Type: TypeSecret, LevelID: "lv06-hive",
			Title: "Brood Cull", Text: "Burn the egg clutches on the way down.",
			Trigger: TriggerLevelEnter,
			RequiresQuests: []string{"sq03-blackbox"},
			Objectives: []Objective{
				{ID: "burn-clutches", Type: ObjectiveKillEnemies, Text: "Burn egg clutches",
					Required: 6, TargetKey: "egg_clutch"},
			},
		},

		// --- Bonus level ---
		{
			ID: "mq-bonus-gauntlet", Type: TypeMain, LevelID: "bonus-proving",
			Title: "The Gauntlet", Text: "Survive the simulated gauntlet.",
			Trigger: TriggerLevelEnter,
			Objectives: []Objective{
				{ID: "gauntlet-kills", Type: ObjectiveKillEnemies, Text: "Destroy simulation drones",
					Required: 20},
				{ID: "gauntlet-survive", Type: ObjectiveSurvive, Text: "Survive the final wave",
					Duration: 60, CompleteDialogue: "gauntlet_clear"},
			},
		},
	}
}

package levels

// DefaultChain returns the built-in campaign: one tutorial level, six combat
// missions and one bonus level reachable from the hive approach.
func DefaultChain() *Chain {
	chain, err := NewChain([]Config{
		{
			ID:       "lv01-anchorage",
			Name:     "Anchorage Station",
			Order:    1,
			Tutorial: true,
			Next:     "lv02-hotdrop",
			Briefing: "Shipboard orientation. Weapons check, movement drills, motion tracker familiarization.",
		},
		{
			ID:         "lv02-hotdrop",
			Name:       "Hot Drop",
			Order:      2,
			FirstDrop:  true,
			Next:       "lv03-colony",
			Briefing:   "Drop to the colony perimeter. Contact with the garrison was lost six hours ago.",
			Secrets:    2,
			AudioLogs:  3,
			ParSeconds: 600,
		},
		{
			ID:         "lv03-colony",
			Name:       "Colony Sublevels",
			Order:      3,
			Next:       "lv04-refinery",
			Briefing:   "Sweep the colony sublevels. Locate survivors and restore power to the uplink.",
			Secrets:    3,
			AudioLogs:  4,
			ParSeconds: 900,
		},
		{
			ID:         "lv04-refinery",
			Name:       "Atmosphere Refinery",
			Order:      4,
			Next:       "lv05-nest",
			Briefing:   "The hive has tapped the refinery coolant lines. Plant charges and get clear.",
			Secrets:    2,
			AudioLogs:  3,
			ParSeconds: 840,
		},
		{
			ID:         "lv05-nest",
			Name:       "Nest Approach",
			Order:      5,
			Next:       "lv06-hive",
			Briefing:   "Push through the nest outskirts. Expect heavy resistance and zero visibility.",
			Secrets:    2,
			AudioLogs:  2,
			ParSeconds: 780,
		},
		{
			ID:         "lv06-hive",
			Name:       "The Hive",
			Order:      6,
			Next:       "lv07-evac",
			Briefing:   "Locate the queen's chamber. Telemetry puts it deep below the refinery foundation.",
			Secrets:    1,
			AudioLogs:  2,
			ParSeconds: 960,
			BossLevel:  true,
		},
		{
			ID:         "lv07-evac",
			Name:       "Final Evac",
			Order:      7,
			Briefing:   "The charges are armed. Reach the dropship before the refinery goes up.",
			Secrets:    1,
			AudioLogs:  1,
			ParSeconds: 420,
		},
		{
			ID:         "bonus-proving",
			Name:       "Proving Grounds",
			Order:      100,
			Bonus:      true,
			Briefing:   "Simulated combat chamber. Survive the gauntlet.",
			ParSeconds: 300,
		},
	})
	if err != nil {
		// The built-in chain is a compile-time constant in all but syntax.
		panic(err)
	}
	return chain
}

// Package levels holds the static campaign level chain. The chain is built
// once at startup and never mutated; every other component reads it through
// lookup helpers.
package levels

import "fmt"

// ID identifies a level in the campaign chain.
type ID string

// Config is the static definition of one level.
type Config struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name"`
	Order      int     `json:"order"`
	Tutorial   bool    `json:"tutorial,omitempty"`     // routed to the tutorial phase on load
	FirstDrop  bool    `json:"first_drop,omitempty"`   // routed through the drop sequence on load
	Bonus      bool    `json:"bonus,omitempty"`        // optional bonus level, outside the main chain
	Next       ID      `json:"next,omitempty"`         // empty on the final level
	Briefing   string  `json:"briefing,omitempty"`     // briefing text shown before the mission
	Secrets    int     `json:"secrets,omitempty"`      // total hidden areas in the level
	AudioLogs  int     `json:"audio_logs,omitempty"`   // total collectible audio logs
	ParSeconds float64 `json:"par_seconds,omitempty"`  // target completion time
	BossLevel  bool    `json:"boss_level,omitempty"`
}

// Chain is the immutable ordered set of campaign levels.
type Chain struct {
	byID    map[ID]*Config
	ordered []ID
}

// NewChain builds a chain from configs. Configs are indexed in the order
// given; Next pointers are validated against the set.
func NewChain(configs []Config) (*Chain, error) {
	c := &Chain{byID: make(map[ID]*Config, len(configs))}
	for i := range configs {
		cfg := configs[i]
		if cfg.ID == "" {
			return nil, fmt.Errorf("level at index %d has empty id", i)
		}
		if _, dup := c.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate level id %q", cfg.ID)
		}
		c.byID[cfg.ID] = &cfg
		c.ordered = append(c.ordered, cfg.ID)
	}
	for _, id := range c.ordered {
		cfg := c.byID[id]
		if cfg.Next == "" {
			continue
		}
		if _, ok := c.byID[cfg.Next]; !ok {
			return nil, fmt.Errorf("level %q points to unknown next level %q", id, cfg.Next)
		}
	}
	return c, nil
}

// Get returns the config for a level id, or nil if unknown.
func (c *Chain) Get(id ID) *Config {
	return c.byID[id]
}

// First returns the first non-bonus level in the chain.
func (c *Chain) First() *Config {
	for _, id := range c.ordered {
		if cfg := c.byID[id]; !cfg.Bonus {
			return cfg
		}
	}
	return nil
}

// Next returns the level after id in the main chain, or nil if id is the
// final level or unknown.
func (c *Chain) Next(id ID) *Config {
	cfg := c.byID[id]
	if cfg == nil || cfg.Next == "" {
		return nil
	}
	return c.byID[cfg.Next]
}

// IDs returns the level ids in chain order.
func (c *Chain) IDs() []ID {
	out := make([]ID, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Configs returns copies of every level config in chain order.
func (c *Chain) Configs() []Config {
	out := make([]Config, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, *c.byID[id])
	}
	return out
}

// Len returns the number of levels, bonus levels included.
func (c *Chain) Len() int {
	return len(c.ordered)
}

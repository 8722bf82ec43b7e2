package levels

import (
	"strings"
	"testing"
)

func TestNewChainValidation(t *testing.T) {
	tests := []struct {
		name    string
		configs []Config
		wantErr string
	}{
		{
			name: "valid chain",
			configs: []Config{
				{ID: "a", Next: "b"},
				{ID: "b"},
			},
		},
		{
			name:    "empty id",
			configs: []Config{{Name: "Unnamed"}},
			wantErr: "empty id",
		},
		{
			name: "duplicate id",
			configs: []Config{
				{ID: "a"},
				{ID: "a"},
			},
			wantErr: "duplicate level id",
		},
		{
			name: "dangling next pointer",
			configs: []Config{
				{ID: "a", Next: "missing"},
			},
			wantErr: "unknown next level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChain(tt.configs)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestChainLookups(t *testing.T) {
	chain, err := NewChain([]Config{
		{ID: "warmup", Bonus: true},
		{ID: "a", Next: "b"},
		{ID: "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if chain.Get("missing") != nil {
		t.Error("expected nil for unknown level")
	}
	if cfg := chain.Get("a"); cfg == nil || cfg.ID != "a" {
		t.Errorf("expected config for a, got %+v", cfg)
	}

	// First skips bonus levels regardless of position.
	if first := chain.First(); first == nil || first.ID != "a" {
		t.Errorf("expected first non-bonus level a, got %+v", first)
	}

	if next := chain.Next("a"); next == nil || next.ID != "b" {
		t.Errorf("expected next of a to be b, got %+v", next)
	}
	if chain.Next("b") != nil {
		t.Error("expected nil next for the final level")
	}
	if chain.Next("missing") != nil {
		t.Error("expected nil next for an unknown level")
	}

	if chain.Len() != 3 {
		t.Errorf("expected chain length 3, got %d", chain.Len())
	}

	ids := chain.IDs()
	want := []ID{"warmup", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestDefaultChain(t *testing.T) {
	chain := DefaultChain()

	first := chain.First()
	if first == nil || first.ID != "lv01-anchorage" {
		t.Fatalf("expected the campaign to open at anchorage, got %+v", first)
	}
	if !first.Tutorial {
		t.Error("expected the first level to be the tutorial")
	}

	// Walking Next pointers from the first level must terminate at the evac.
	seen := 0
	cfg := first
	for cfg != nil {
		seen++
		if seen > chain.Len() {
			t.Fatal("next pointers form a cycle")
		}
		if cfg.Next == "" {
			break
		}
		cfg = chain.Next(cfg.ID)
	}
	if cfg == nil || cfg.ID != "lv07-evac" {
		t.Errorf("expected the chain to end at lv07-evac, got %+v", cfg)
	}
	if seen != 7 {
		t.Errorf("expected 7 main-chain levels, got %d", seen)
	}

	bonus := chain.Get("bonus-proving")
	if bonus == nil || !bonus.Bonus {
		t.Errorf("expected a bonus proving grounds level, got %+v", bonus)
	}
}

func TestConfigsReturnsCopies(t *testing.T) {
	chain, err := NewChain([]Config{{ID: "a", Name: "Alpha"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	configs := chain.Configs()
	configs[0].Name = "mutated"

	if chain.Get("a").Name != "Alpha" {
		t.Error("mutating the returned slice must not affect the chain")
	}
}

func TestVec3Distance(t *testing.T) {
	tests := []struct {
		a, b Vec3
		want float64
	}{
		{Vec3{}, Vec3{}, 0},
		{Vec3{X: 3, Y: 4}, Vec3{}, 5},
		{Vec3{X: 1, Y: 2, Z: 2}, Vec3{X: 1, Y: 2, Z: 5}, 3},
	}
	for _, tt := range tests {
		if got := tt.a.Distance(tt.b); got != tt.want {
			t.Errorf("Distance(%+v, %+v) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

package achievements

import (
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/pkg/campaign"
)

func newTestTracker() *Tracker {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	return NewTracker(uuid.New(), nil, logger)
}

func hasUnlocked(t *Tracker, id string) bool {
	for _, got := range t.Unlocked() {
		if got == id {
			return true
		}
	}
	return false
}

func TestTracker_FirstBlood(t *testing.T) {
	tracker := newTestTracker()
	if len(tracker.Unlocked()) != 0 {
		t.Fatal("expected no achievements on a fresh tracker")
	}

	tracker.OnKill(1.0)
	if !hasUnlocked(tracker, FirstBlood) {
		t.Error("expected first_blood after the first kill")
	}

	// Unlocks are idempotent.
	tracker.OnKill(1.0)
	count := 0
	for _, id := range tracker.Unlocked() {
		if id == FirstBlood {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected first_blood exactly once, got %d", count)
	}
}

func TestTracker_Exterminator(t *testing.T) {
	tracker := newTestTracker()
	for i := 0; i < 99; i++ {
		tracker.OnKill(1.0)
	}
	if hasUnlocked(tracker, Exterminator) {
		t.Fatal("exterminator unlocked a kill early")
	}
	tracker.OnKill(1.0)
	if !hasUnlocked(tracker, Exterminator) {
		t.Error("expected exterminator at 100 kills")
	}
}

func TestTracker_CloseCall(t *testing.T) {
	tracker := newTestTracker()

	tracker.OnKill(0.5)
	if hasUnlocked(tracker, CloseCall) {
		t.Error("close_call should need sub-10% health")
	}

	tracker.OnKill(0.08)
	if !hasUnlocked(tracker, CloseCall) {
		t.Error("expected close_call for a kill at 8% health")
	}
}

func TestTracker_CloseCallIgnoresUnknownHealth(t *testing.T) {
	tracker := newTestTracker()
	// Zero means the runtime didn't report health; never treat it as critical.
	tracker.OnKill(0)
	if hasUnlocked(tracker, CloseCall) {
		t.Error("close_call must not unlock without a health reading")
	}
}

func TestTracker_LevelCompletion(t *testing.T) {
	tracker := newTestTracker()

	tracker.OnLevelComplete("lv02-hotdrop", true, campaign.DifficultyNormal)
	if hasUnlocked(tracker, Flawless) {
		t.Error("flawless should need a deathless clear")
	}

	tracker.OnLevelComplete("lv03-colony", false, campaign.DifficultyHard)
	if !hasUnlocked(tracker, Flawless) {
		t.Error("expected flawless for a deathless clear")
	}
	if !hasUnlocked(tracker, HardenedVet) {
		t.Error("expected hardened_vet for a hard clear")
	}

	tracker.OnLevelCompleteUntouched("lv03-colony")
	if !hasUnlocked(tracker, Untouchable) {
		t.Error("expected untouchable for a zero-damage clear")
	}
}

func TestTracker_CollectibleThresholds(t *testing.T) {
	tracker := newTestTracker()

	for i := 0; i < 10; i++ {
		tracker.OnSecretFound()
		tracker.OnAudioLogFound()
	}

	got := tracker.Unlocked()
	sort.Strings(got)
	want := []string{Archivist, Spelunker}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

// Package storage persists campaign save games. Three drivers implement the
// same interface: an in-memory store for tests and development, a Redis
// store, and a SQLite store for single-file installs.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

// SaveRecord is one persisted campaign save slot.
type SaveRecord struct {
	ID              uuid.UUID                       `json:"id"`
	Difficulty      campaign.Difficulty             `json:"difficulty"`
	CurrentLevel    levels.ID                       `json:"current_level"`
	CompletedLevels []levels.ID                     `json:"completed_levels,omitempty"`
	LevelTimes      map[levels.ID]float64           `json:"level_times,omitempty"`
	LevelKills      map[levels.ID]int               `json:"level_kills,omitempty"`
	LevelFlags      map[levels.ID]map[string]bool   `json:"level_flags,omitempty"`
	Objectives      map[string]bool                 `json:"objectives,omitempty"`
	TotalKills      int                             `json:"total_kills"`
	Deaths          int                             `json:"deaths"`
	Quests          *quest.SaveState                `json:"quests,omitempty"`
	CreatedAt       time.Time                       `json:"created_at"`
	UpdatedAt       time.Time                       `json:"updated_at"`
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// NewSaveRecord creates a fresh save slot at the given difficulty.
func NewSaveRecord(difficulty campaign.Difficulty, firstLevel levels.ID) *SaveRecord {
	now := time.Now().UTC()
	return &SaveRecord{
		ID:           uuid.New(),
		Difficulty:   difficulty,
		CurrentLevel: firstLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasCompleted reports whether the record lists the level as completed.
func (r *SaveRecord) HasCompleted(levelID levels.ID) bool {
	for _, id := range r.CompletedLevels {
		if id == levelID {
			return true
		}
	}
	return false
}

// Storage defines the save-game persistence interface.
type Storage interface {
	// Ping tests the backing connection.
	Ping(ctx context.Context) error
	// Close closes the backing connection.
	Close() error

	// PutSave writes a save record, stamping UpdatedAt.
	PutSave(ctx context.Context, rec *SaveRecord) error
	// GetSave retrieves a save by id. Returns nil if it doesn't exist.
	GetSave(ctx context.Context, id uuid.UUID) (*SaveRecord, error)
	// LatestSave returns the most recently updated save, or nil if none.
	LatestSave(ctx context.Context) (*SaveRecord, error)
	// DeleteSave removes a save by id.
	DeleteSave(ctx context.Context, id uuid.UUID) error
}

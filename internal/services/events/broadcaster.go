// Package events publishes campaign events to Redis Pub/Sub for SSE
// distribution.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeSnapshotUpdated     EventType = "campaign.snapshot"
	EventTypeQuestStarted        EventType = "quest.started"
	EventTypeQuestCompleted      EventType = "quest.completed"
	EventTypeQuestFailed         EventType = "quest.failed"
	EventTypeObjectiveUpdated    EventType = "objective.updated"
	EventTypeMarkerUpdated       EventType = "marker.updated"
	EventTypeMarkerCleared       EventType = "marker.cleared"
	EventTypeDialogueTriggered   EventType = "dialogue.triggered"
	EventTypeAchievementUnlocked EventType = "achievement.unlocked"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Channel returns the Pub/Sub channel name for a session's event stream.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("campaign-events:%s", sessionID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution.
// A nil Broadcaster drops every event, so callers don't need to guard
// against running without Redis.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishSnapshot publishes a campaign.snapshot event after a dispatch
// mutates campaign state.
func (b *Broadcaster) PublishSnapshot(ctx context.Context, sessionID uuid.UUID, version int, phase string, levelID string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeSnapshotUpdated,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"version": version,
			"phase":   phase,
			"level":   levelID,
		},
	})
}

// PublishQuestEvent publishes quest lifecycle events.
func (b *Broadcaster) PublishQuestEvent(ctx context.Context, sessionID uuid.UUID, eventType EventType, questID string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["quest_id"] = questID
	return b.publish(ctx, sessionID, Event{
		Type:      eventType,
		SessionID: sessionID.String(),
		Data:      data,
	})
}

// PublishDialogue publishes a dialogue.triggered event.
func (b *Broadcaster) PublishDialogue(ctx context.Context, sessionID uuid.UUID, dialogueID string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeDialogueTriggered,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"dialogue_id": dialogueID,
		},
	})
}

// PublishAchievement publishes an achievement.unlocked event.
func (b *Broadcaster) PublishAchievement(ctx context.Context, sessionID uuid.UUID, achievementID string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeAchievementUnlocked,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"achievement_id": achievementID,
		},
	})
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	if b == nil || b.redisClient == nil {
		return nil
	}
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}

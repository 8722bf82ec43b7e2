package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/internal/services/events"
	"github.com/jwebster45206/campaign-engine/internal/storage"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

// questSink forwards quest engine events to the session's event stream and
// mirrors objective completions into the save record.
type questSink struct {
	sessionID   uuid.UUID
	broadcaster *events.Broadcaster
	saves       *storage.GameSaves
	logger      *slog.Logger
}

var _ quest.EventSink = (*questSink)(nil)

func (s *questSink) QuestStarted(q *quest.Quest) {
	s.logger.Info("Quest started", "quest_id", q.ID, "quest_type", q.Type)
	s.publishQuest(events.EventTypeQuestStarted, q.ID, map[string]interface{}{
		"title": q.Title,
		"type":  string(q.Type),
	})
}

func (s *questSink) QuestCompleted(q *quest.Quest) {
	s.logger.Info("Quest completed", "quest_id", q.ID)
	s.publishQuest(events.EventTypeQuestCompleted, q.ID, map[string]interface{}{
		"title": q.Title,
	})
}

func (s *questSink) QuestFailed(q *quest.Quest, reason string) {
	s.logger.Info("Quest failed", "quest_id", q.ID, "reason", reason)
	s.publishQuest(events.EventTypeQuestFailed, q.ID, map[string]interface{}{
		"title":  q.Title,
		"reason": reason,
	})
}

func (s *questSink) ObjectiveChanged(q *quest.Quest, o *quest.Objective, progress, required int) {
	s.publishQuest(events.EventTypeObjectiveUpdated, q.ID, map[string]interface{}{
		"objective_id": o.ID,
		"text":         o.Text,
		"progress":     progress,
		"required":     required,
	})
	if s.saves != nil && required > 0 && progress >= required {
		// Off the engine's call stack; the save write reads engine state back.
		key := q.ID + ":" + o.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.saves.SetObjective(ctx, key, true); err != nil {
				s.logger.Debug("Objective flag not recorded", "objective", key, "error", err.Error())
			}
		}()
	}
}

func (s *questSink) MarkerChanged(q *quest.Quest, pos levels.Vec3, radius float64) {
	s.publishQuest(events.EventTypeMarkerUpdated, q.ID, map[string]interface{}{
		"x":      pos.X,
		"y":      pos.Y,
		"z":      pos.Z,
		"radius": radius,
	})
}

func (s *questSink) MarkerCleared(q *quest.Quest) {
	s.publishQuest(events.EventTypeMarkerCleared, q.ID, nil)
}

func (s *questSink) Dialogue(triggerID string) {
	if err := s.broadcaster.PublishDialogue(context.Background(), s.sessionID, triggerID); err != nil {
		s.logger.Error("Failed to publish dialogue event", "error", err, "dialogue_id", triggerID)
	}
}

func (s *questSink) publishQuest(eventType events.EventType, questID string, data map[string]interface{}) {
	if err := s.broadcaster.PublishQuestEvent(context.Background(), s.sessionID, eventType, questID, data); err != nil {
		s.logger.Error("Failed to publish quest event", "error", err, "quest_id", questID)
	}
}

// dialogueSink forwards campaign dialogue triggers to the event stream.
type dialogueSink struct {
	sessionID   uuid.UUID
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func (s *dialogueSink) Trigger(id string) {
	s.logger.Debug("Dialogue triggered", "dialogue_id", id)
	if err := s.broadcaster.PublishDialogue(context.Background(), s.sessionID, id); err != nil {
		s.logger.Error("Failed to publish dialogue event", "error", err, "dialogue_id", id)
	}
}

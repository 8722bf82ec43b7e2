package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jwebster45206/campaign-engine/internal/session"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// TriggerRequest is a world event reported by the game runtime. Type selects
// the quest engine entry point; the other fields qualify it.
type TriggerRequest struct {
	Type          string       `json:"type"`
	Key           string       `json:"key,omitempty"`
	Position      *levels.Vec3 `json:"position,omitempty"`
	HealthPercent float64      `json:"health_percent,omitempty"` // player health at kill time, 0..1
}

// Trigger types accepted by the triggers endpoint.
const (
	TriggerObjectInteract   = "object_interact"
	TriggerNPCDialogue      = "npc_dialogue"
	TriggerAreaEnter        = "area_enter"
	TriggerCollectibleFound = "collectible_found"
	TriggerEnemyKilled      = "enemy_killed"
	TriggerPlayerPosition   = "player_position"
	TriggerSecretFound      = "secret_found"
	TriggerAudioLogFound    = "audio_log_found"
)

func (h *CampaignHandler) handleTrigger(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Type {
	case TriggerObjectInteract:
		sess.Engine.OnObjectInteract(req.Key)
	case TriggerNPCDialogue:
		sess.Engine.OnNPCDialogue(req.Key)
	case TriggerAreaEnter:
		sess.Engine.OnAreaEnter(req.Key)
	case TriggerCollectibleFound:
		sess.Engine.OnCollectibleFound(req.Key)
	case TriggerEnemyKilled:
		sess.Engine.OnEnemyKilled(req.Key)
		sess.Achievements.OnKill(req.HealthPercent)
	case TriggerPlayerPosition:
		if req.Position == nil {
			h.writeError(w, http.StatusBadRequest, "Position is required for player_position triggers")
			return
		}
		sess.Engine.OnPlayerReachLocation(*req.Position)
	case TriggerSecretFound:
		sess.Achievements.OnSecretFound()
	case TriggerAudioLogFound:
		sess.Achievements.OnAudioLogFound()
	default:
		h.writeError(w, http.StatusBadRequest, "Unknown trigger type")
		return
	}

	h.logger.Debug("Trigger processed",
		"session_id", sess.ID.String(),
		"trigger_type", req.Type,
		"key", req.Key)
	w.WriteHeader(http.StatusAccepted)
}

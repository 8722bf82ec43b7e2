// Package handlers exposes the campaign engine over HTTP. Each handler is a
// plain http.Handler wired into the mux in cmd/api.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/campaign-engine/internal/session"
	"github.com/jwebster45206/campaign-engine/pkg/campaign"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CampaignHandler handles campaign session operations.
type CampaignHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewCampaignHandler(sessions *session.Manager, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// CreateCampaignRequest starts a session. Mode is "new" or "continue";
// difficulty applies to new games only.
type CreateCampaignRequest struct {
	Mode       string              `json:"mode"`
	Difficulty campaign.Difficulty `json:"difficulty,omitempty"`
}

// CampaignResponse wraps a session id with its current snapshot.
type CampaignResponse struct {
	SessionID string            `json:"session_id"`
	Snapshot  campaign.Snapshot `json:"snapshot"`
}

// ServeHTTP routes campaign session requests.
// Routes:
// POST   /v1/campaign                  - Start a session
// GET    /v1/campaign/{id}             - Read the current snapshot
// DELETE /v1/campaign/{id}             - End a session
// POST   /v1/campaign/{id}/commands    - Dispatch a campaign command
// POST   /v1/campaign/{id}/triggers    - Report a world trigger
// GET    /v1/campaign/{id}/quests      - Read quest states
// GET    /v1/campaign/{id}/tracker     - Read the HUD tracker projection
func (h *CampaignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/campaign")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	sess := h.sessions.Get(sessionID)
	if sess == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.writeJSON(w, http.StatusOK, CampaignResponse{
				SessionID: sess.ID.String(),
				Snapshot:  sess.Director.Snapshot(),
			})
		case http.MethodDelete:
			h.sessions.Remove(sessionID)
			w.WriteHeader(http.StatusNoContent)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	if len(parts) != 2 {
		h.writeError(w, http.StatusNotFound, "Unknown campaign resource")
		return
	}
	switch parts[1] {
	case "commands":
		h.handleCommand(w, r, sess)
	case "triggers":
		h.handleTrigger(w, r, sess)
	case "quests":
		h.handleQuests(w, r, sess)
	case "tracker":
		h.handleTracker(w, r, sess)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown campaign resource")
	}
}

func (h *CampaignHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := h.sessions.Create()
	switch req.Mode {
	case "", "new":
		sess.Director.Dispatch(campaign.Command{Type: campaign.CmdNewGame, Difficulty: req.Difficulty})
	case "continue":
		sess.Director.Dispatch(campaign.Command{Type: campaign.CmdContinue})
	default:
		h.sessions.Remove(sess.ID)
		h.writeError(w, http.StatusBadRequest, "Invalid mode. Expected \"new\" or \"continue\"")
		return
	}

	h.writeJSON(w, http.StatusCreated, CampaignResponse{
		SessionID: sess.ID.String(),
		Snapshot:  sess.Director.Snapshot(),
	})
}

func (h *CampaignHandler) handleCommand(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}
	var cmd campaign.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if cmd.Type == "" {
		h.writeError(w, http.StatusBadRequest, "Command type is required")
		return
	}

	before := sess.Director.Snapshot().Version
	sess.Director.Dispatch(cmd)
	snap := sess.Director.Snapshot()

	h.logger.Debug("Command dispatched",
		"session_id", sess.ID.String(),
		"command", cmd.Type,
		"applied", snap.Version != before)

	h.writeJSON(w, http.StatusOK, CampaignResponse{
		SessionID: sess.ID.String(),
		Snapshot:  snap,
	})
}

func (h *CampaignHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *CampaignHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

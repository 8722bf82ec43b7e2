package handlers

import (
	"net/http"

	"github.com/jwebster45206/campaign-engine/internal/session"
	"github.com/jwebster45206/campaign-engine/pkg/quest"
)

// QuestsResponse is the full quest progress view for one session.
type QuestsResponse struct {
	Active    []quest.State `json:"active"`
	Completed []string      `json:"completed"`
	Failed    []string      `json:"failed"`
}

func (h *CampaignHandler) handleQuests(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	h.writeJSON(w, http.StatusOK, QuestsResponse{
		Active:    sess.Engine.ActiveQuests(),
		Completed: sess.Engine.CompletedQuestIDs(),
		Failed:    sess.Engine.FailedQuestIDs(),
	})
}

func (h *CampaignHandler) handleTracker(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Engine.Tracker())
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

// LevelsHandler serves the static level chain.
type LevelsHandler struct {
	chain  *levels.Chain
	logger *slog.Logger
}

func NewLevelsHandler(chain *levels.Chain, logger *slog.Logger) *LevelsHandler {
	return &LevelsHandler{
		chain:  chain,
		logger: logger,
	}
}

// ServeHTTP handles GET /v1/levels
func (h *LevelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Method not allowed. Only GET is supported.",
		}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(h.chain.Configs()); err != nil {
		h.logger.Error("Failed to encode levels response", "error", err)
	}
}

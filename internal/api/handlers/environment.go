package handlers

import (
	"net/http"
)

type EnvironmentHandler struct {
	env EnvironmentProvider
}

func NewEnvironmentHandler(env EnvironmentProvider) *EnvironmentHandler {
	return &EnvironmentHandler{env: env}
}

// GetSnapshot returns the latest environment readings. ?refresh=1 forces a
// fetch first; a failed forced fetch still serves the last good value.
func (h *EnvironmentHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if wantsRefresh(r) {
		_ = h.env.Refresh(r.Context())
	}

	state := h.env.State()
	if !state.HasValue && state.Err != nil {
		writeError(w, "Environment data unavailable", state.Err)
		return
	}

	resp := map[string]any{
		"success":   true,
		"status":    state.Status,
		"snapshot":  nil,
		"updatedAt": nil,
	}
	if state.HasValue {
		resp["snapshot"] = state.Value
		resp["display_time"] = state.Value.DisplayTime()
		resp["updatedAt"] = state.UpdatedAt
	}
	if state.Err != nil {
		resp["message"] = state.Err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

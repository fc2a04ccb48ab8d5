package handlers

import "net/http"

// ListActivity returns the caller's activity feed, newest first.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 50)
	activity, err := h.activity.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "unable_to_load_activity")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"activity": activity,
		"limit":    limit,
		"offset":   offset,
	})
}

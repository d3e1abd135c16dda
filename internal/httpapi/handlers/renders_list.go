package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"vidcap/internal/httpkit"
)

// ListRenders returns recent render jobs, newest first. Without a database
// the ledger is empty.
func (h *Handler) ListRenders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 50
	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	jobs, err := h.history.Recent(ctx, limit)
	if err != nil {
		h.log.FromContext(ctx).Error("history query failed", "error", err.Error())
		httpkit.WriteErrMessage(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

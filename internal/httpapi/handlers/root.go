package handlers

import (
	"net/http"

	"vidcap/internal/httpkit"
)

const usage = "Server is running. POST /render (lines only) or /render-edit (videoUrl + lines) to generate or edit a video."

// Root answers a plain-text usage string so the service can be sanity
// checked from a browser.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httpkit.WriteText(w, http.StatusOK, usage)
}

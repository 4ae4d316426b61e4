package handlers

import (
	"errors"
	"net/http"

	"github.com/lehigh-university-libraries/scanview/internal/i18n"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
)

type sessionResponse struct {
	upload.Snapshot
	ProgressLabel string `json:"progress_label,omitempty"`
}

// sessionResponse localizes the fixed error message of snap.
func (h *Handler) sessionResponse(r *http.Request, snap upload.Snapshot) sessionResponse {
	if id := i18n.MessageID(snap.ErrorCode); id != "" {
		snap.Error = i18n.Localize(r.Context(), id)
	}
	resp := sessionResponse{Snapshot: snap}
	if snap.Status == upload.StatusUploading {
		resp.ProgressLabel = i18n.Localize(r.Context(), "progress", map[string]any{"Percent": snap.Progress})
	}
	return resp
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sessionResponse(r, h.uploader.Snapshot()))
}

// HandleReset clears the session and releases the selected file.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.uploader.Reset(); err != nil {
		if errors.Is(err, upload.ErrUploadInProgress) {
			h.writeAPIError(w, i18n.Localize(r.Context(), "upload_in_progress"), http.StatusConflict)
			return
		}
		h.writeAPIError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, h.sessionResponse(r, h.uploader.Snapshot()))
}

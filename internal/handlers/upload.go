package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/i18n"
	"github.com/lehigh-university-libraries/scanview/internal/transport"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

// HandleSelect stores the submitted file locally and selects it.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+formOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeAPIError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.writeAPIError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(transport.FieldName)
	if err != nil {
		h.writeAPIError(w, i18n.Localize(r.Context(), "no_file_selected"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	entry, err := h.store.Put(header.Filename, file)
	if err != nil {
		if errors.Is(err, blob.ErrTooLarge) {
			h.writeAPIError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Error("Failed to store selected file", "name", header.Filename, "err", err)
		h.writeAPIError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	handle := entry.Handle
	selected := upload.File{
		Name:  entry.Name,
		Size:  entry.Size,
		Local: blob.Local(handle),
		Open: func() (io.ReadCloser, error) {
			return h.store.Open(handle)
		},
	}
	if err := h.uploader.SelectFile(selected); err != nil {
		if releaseErr := h.store.Release(handle); releaseErr != nil {
			slog.Warn("Unable to release rejected file", "handle", handle, "err", releaseErr)
		}
		if errors.Is(err, upload.ErrUploadInProgress) {
			h.writeAPIError(w, i18n.Localize(r.Context(), "upload_in_progress"), http.StatusConflict)
			return
		}
		h.writeAPIError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, h.sessionResponse(r, h.uploader.Snapshot()))
}

// HandleUpload starts sending the selected file. Without a selection the
// session fails and the Failed snapshot is returned with 200.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	err := h.uploader.BeginUpload()
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusAccepted, h.sessionResponse(r, h.uploader.Snapshot()))
	case errors.Is(err, upload.ErrNoFileSelected):
		h.writeJSON(w, http.StatusOK, h.sessionResponse(r, h.uploader.Snapshot()))
	case errors.Is(err, upload.ErrUploadInProgress):
		h.writeAPIError(w, i18n.Localize(r.Context(), "upload_in_progress"), http.StatusConflict)
	default:
		h.writeAPIError(w, err.Error(), http.StatusInternalServerError)
	}
}

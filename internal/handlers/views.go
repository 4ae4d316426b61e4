package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/scanview/internal/transform"
	"github.com/lehigh-university-libraries/scanview/internal/view"
)

type wheelRequest struct {
	X      float64 `json:"x"`
	DeltaY float64 `json:"delta_y"`
}

// composerOrError resolves the view and slot path values.
func (h *Handler) composerOrError(w http.ResponseWriter, r *http.Request) (*view.Composer, bool) {
	c, ok := h.views.Get(r.PathValue("id"))
	if !ok {
		h.writeAPIError(w, "View not found", http.StatusNotFound)
		return nil, false
	}
	return c, true
}

func (h *Handler) slotOrError(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		h.writeAPIError(w, "Invalid slot", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// HandleSlotCommand runs zoom-in, zoom-out or reset on one slot.
func (h *Handler) HandleSlotCommand(w http.ResponseWriter, r *http.Request) {
	c, ok := h.composerOrError(w, r)
	if !ok {
		return
	}
	n, ok := h.slotOrError(w, r)
	if !ok {
		return
	}
	if !h.flags.ShowZoomControls {
		h.writeAPIError(w, "Zoom controls are disabled", http.StatusForbidden)
		return
	}
	sv, err := c.Do(n, view.Command(r.PathValue("cmd")))
	h.writeSlot(w, sv, err)
}

// HandleGesture applies a pan or pinch update reported by the browser.
func (h *Handler) HandleGesture(w http.ResponseWriter, r *http.Request) {
	c, ok := h.composerOrError(w, r)
	if !ok {
		return
	}
	n, ok := h.slotOrError(w, r)
	if !ok {
		return
	}
	var g transform.Gesture
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		h.writeAPIError(w, "Invalid gesture", http.StatusBadRequest)
		return
	}
	sv, err := c.Gesture(n, g)
	h.writeSlot(w, sv, err)
}

// HandleWheel routes a page-level wheel event to the slot under the cursor.
func (h *Handler) HandleWheel(w http.ResponseWriter, r *http.Request) {
	c, ok := h.composerOrError(w, r)
	if !ok {
		return
	}
	var req wheelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeAPIError(w, "Invalid wheel event", http.StatusBadRequest)
		return
	}
	sv, err := c.Wheel(req.X, req.DeltaY)
	h.writeSlot(w, sv, err)
}

// HandleCloseView drops a view whose page was left.
func (h *Handler) HandleCloseView(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.composerOrError(w, r); !ok {
		return
	}
	h.views.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeSlot(w http.ResponseWriter, sv view.SlotView, err error) {
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, sv)
	case errors.Is(err, view.ErrSlotOutOfRange):
		h.writeAPIError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, view.ErrUnknownCommand):
		h.writeAPIError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, view.ErrEmptySlot):
		h.writeAPIError(w, err.Error(), http.StatusConflict)
	default:
		h.writeAPIError(w, err.Error(), http.StatusInternalServerError)
	}
}

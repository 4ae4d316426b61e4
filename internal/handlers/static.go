package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/i18n"
	"github.com/lehigh-university-libraries/scanview/internal/nav"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
	"github.com/lehigh-university-libraries/scanview/internal/view"
	"github.com/lehigh-university-libraries/scanview/internal/web"
)

type viewerData struct {
	ViewID   string
	Mode     view.Mode
	Slots    []view.SlotView
	Captions []string
}

type homeData struct {
	viewerData
	Session       upload.Snapshot
	Error         string
	ProgressLabel string
	FileSize      string
	ViewLink      string
	CompareLink   string
}

// HandleHome renders the upload page. A selected file is shown in a single
// viewer right away; once the session holds a result the original and
// processed images are shown together.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	resp := h.sessionResponse(r, h.uploader.Snapshot())
	data := homeData{
		Session:       resp.Snapshot,
		Error:         resp.Error,
		ProgressLabel: resp.ProgressLabel,
	}
	if f := resp.File; f != nil && f.Size >= 0 {
		data.FileSize = units.HumanSize(float64(f.Size))
	}

	var original *blob.Resource
	if resp.File != nil && resp.File.Preview.Locator != "" {
		p := resp.File.Preview
		original = &p
	}
	originalCaption := i18n.Localize(r.Context(), "original_image")

	switch {
	case resp.Result != nil:
		processed := resp.Result.Resource
		mode := view.ModeSingle
		resources := []blob.Resource{processed}
		captions := []string{i18n.Localize(r.Context(), "processed_image")}
		if original != nil && h.flags.EnableCompare {
			mode = view.ModeCompare
			resources = []blob.Resource{*original, processed}
			captions = []string{originalCaption, captions[0]}
		}
		if !h.buildHomeViewer(w, &data, mode, captions, resources...) {
			return
		}
		data.ViewLink = nav.Link(nav.PathView, &processed)
		if original != nil && h.flags.EnableCompare {
			data.CompareLink = nav.Link(nav.PathCompare, original, &processed)
		}
	case original != nil:
		if !h.buildHomeViewer(w, &data, view.ModeSingle, []string{originalCaption}, *original) {
			return
		}
		data.ViewLink = nav.Link(nav.PathView, original)
	}

	route, _ := nav.Lookup(nav.PathHome)
	h.render(w, r, http.StatusOK, route, data)
}

func (h *Handler) buildHomeViewer(w http.ResponseWriter, data *homeData, mode view.Mode, captions []string, resources ...blob.Resource) bool {
	c, err := h.newComposer(mode, resources...)
	if err != nil {
		h.writeError(w, "Failed to build viewer", http.StatusInternalServerError)
		return false
	}
	data.viewerData = viewerData{ViewID: c.ID, Mode: mode, Slots: c.Slots(), Captions: captions}
	return true
}

// HandleViewer renders /view and /compare with the handed-off images.
func (h *Handler) HandleViewer(w http.ResponseWriter, r *http.Request) {
	dest, err := nav.Resolve(r.URL, h.flags)
	if err != nil {
		if errors.Is(err, nav.ErrDisabled) {
			h.renderError(w, r, http.StatusNotFound, "compare_disabled")
			return
		}
		h.renderError(w, r, http.StatusNotFound, "not_found")
		return
	}

	c, err := h.newComposer(dest.Route.Mode, dest.Resources...)
	if err != nil {
		h.writeError(w, "Failed to build viewer", http.StatusInternalServerError)
		return
	}

	data := viewerData{ViewID: c.ID, Mode: c.Mode(), Slots: c.Slots()}
	data.Captions = make([]string, len(data.Slots))
	if c.Mode() == view.ModeCompare {
		data.Captions = []string{
			i18n.Localize(r.Context(), "original_image"),
			i18n.Localize(r.Context(), "processed_image"),
		}
	}
	h.render(w, r, http.StatusOK, dest.Route, data)
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "not_found")
}

// HandleLocal serves the content behind a live local handle.
func (h *Handler) HandleLocal(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	entry, ok := h.store.Stat(handle)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rc, err := h.store.Open(handle)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidHandle) {
			http.NotFound(w, r)
			return
		}
		h.writeError(w, "Failed to open local file", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(entry.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Unable to stream local file", "handle", handle, "err", err)
	}
}

func (h *Handler) newComposer(mode view.Mode, resources ...blob.Resource) (*view.Composer, error) {
	cfg, err := view.NewConfiguration(mode, resources...)
	if err != nil {
		return nil, err
	}
	c := view.NewComposer(uuid.NewString(), cfg, h.flags)
	h.views.Set(c.ID, c)
	slog.Debug("View created", "id", c.ID, "mode", mode, "views", h.views.Len())
	return c, nil
}

func (h *Handler) pageData(r *http.Request, title string, active string, data any) web.PageData {
	ctx := r.Context()
	links := []web.NavLink{{Href: nav.PathHome, Label: i18n.Localize(ctx, "nav_home"), Active: active == nav.PathHome}}
	links = append(links, web.NavLink{Href: nav.PathView, Label: i18n.Localize(ctx, "nav_view"), Active: active == nav.PathView})
	if h.flags.EnableCompare {
		links = append(links, web.NavLink{Href: nav.PathCompare, Label: i18n.Localize(ctx, "nav_compare"), Active: active == nav.PathCompare})
	}
	return web.PageData{
		Title: title,
		Lang:  i18n.Language(ctx),
		Nav:   links,
		T:     func(id string) string { return i18n.Localize(ctx, id) },
		Data:  data,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, route nav.Route, data any) {
	title := i18n.Localize(r.Context(), route.Label)
	if err := h.pages.Render(w, status, route.Template, h.pageData(r, title, route.Path, data)); err != nil {
		slog.Error("Failed to render page", "template", route.Template, "err", err)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, messageID string) {
	msg := i18n.Localize(r.Context(), messageID)
	if err := h.pages.Render(w, status, "error.html", h.pageData(r, msg, "", msg)); err != nil {
		slog.Error("Failed to render error page", "err", err)
	}
}

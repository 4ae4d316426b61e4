package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/i18n"
	"github.com/lehigh-university-libraries/scanview/internal/storage"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
	"github.com/lehigh-university-libraries/scanview/internal/view"
	"github.com/lehigh-university-libraries/scanview/internal/web"
)

type Handler struct {
	uploader      *upload.Uploader
	store         *blob.Store
	views         *storage.ViewStore
	pages         *web.TemplateSet
	translator    *i18n.Translator
	flags         view.Flags
	maxUploadSize int64
}

// Options wires the handler's collaborators.
type Options struct {
	Uploader      *upload.Uploader
	Store         *blob.Store
	Views         *storage.ViewStore
	Pages         *web.TemplateSet
	Translator    *i18n.Translator
	Flags         view.Flags
	MaxUploadSize int64
}

func New(opts Options) *Handler {
	views := opts.Views
	if views == nil {
		views = storage.New(storage.DefaultCapacity)
	}
	return &Handler{
		uploader:      opts.Uploader,
		store:         opts.Store,
		views:         views,
		pages:         opts.Pages,
		translator:    opts.Translator,
		flags:         opts.Flags,
		maxUploadSize: opts.MaxUploadSize,
	}
}

// Routes registers every page and API endpoint.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("GET /view", h.HandleViewer)
	mux.HandleFunc("GET /compare", h.HandleViewer)
	mux.HandleFunc("POST /api/select", h.HandleSelect)
	mux.HandleFunc("POST /api/upload", h.HandleUpload)
	mux.HandleFunc("GET /api/session", h.HandleSession)
	mux.HandleFunc("POST /api/reset", h.HandleReset)
	mux.HandleFunc("POST /api/views/{id}/slots/{n}/gesture", h.HandleGesture)
	mux.HandleFunc("POST /api/views/{id}/slots/{n}/{cmd}", h.HandleSlotCommand)
	mux.HandleFunc("POST /api/views/{id}/wheel", h.HandleWheel)
	mux.HandleFunc("DELETE /api/views/{id}", h.HandleCloseView)
	mux.HandleFunc("GET /local/{handle}", h.HandleLocal)
	mux.Handle("GET /static/", web.Static())
	mux.HandleFunc("GET /healthcheck", h.HandleHealthcheck)
	mux.HandleFunc("/", h.HandleNotFound)

	var handler http.Handler = mux
	if h.translator != nil {
		handler = h.translator.Middleware(handler)
	}
	return HTTPLogger(handler)
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// writeAPIError reports a JSON error the browser script can display.
func (h *Handler) writeAPIError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, code, map[string]string{"error": message})
}

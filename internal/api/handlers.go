package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/martinsuchenak/thingprobe/internal/probe"
	"github.com/martinsuchenak/thingprobe/internal/thing"
	"github.com/martinsuchenak/thingprobe/pkg/device"
)

// Handler handles HTTP requests
type Handler struct {
	newFetcher device.FetcherFactory
}

// NewHandler creates a new API handler
func NewHandler(newFetcher device.FetcherFactory) *Handler {
	return &Handler{newFetcher: newFetcher}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/probe", h.probe)
	mux.HandleFunc("GET /api/describe", h.describe)
}

// probe handles GET /api/probe?host=&port=
func (h *Handler) probe(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	rep := probe.Report(r.Context(), h.newFetcher(target))
	if !rep.OK {
		log.Info("Probe failed", "run_id", rep.RunID, "url", rep.URL, "error", rep.Error)
		h.writeJSON(w, http.StatusBadGateway, rep)
		return
	}

	log.Info("Probe succeeded", "run_id", rep.RunID, "url", rep.URL, "id", rep.Record.ID())
	h.writeJSON(w, http.StatusOK, rep)
}

// describe handles GET /api/describe?host=&port= and returns the parsed
// description as served by the device
func (h *Handler) describe(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	f := h.newFetcher(target)
	desc, err := f.FetchBase(r.Context())
	if err != nil {
		var se *thing.StatusError
		if errors.As(err, &se) {
			h.writeError(w, http.StatusBadGateway, se.Error())
			return
		}
		log.Warn("Describe failed", "url", f.BaseURL(), "error", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, desc)
}

// target reads host and port from the query. Both must be present; their
// content is passed through unchecked.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (model.Target, bool) {
	q := r.URL.Query()
	if !q.Has("host") || !q.Has("port") {
		h.writeError(w, http.StatusBadRequest, "host and port query parameters are required")
		return model.Target{}, false
	}
	return model.Target{Host: q.Get("host"), Port: q.Get("port")}, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

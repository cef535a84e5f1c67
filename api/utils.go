package api

import (
	"errors"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/htol/locallibrary/logger"
	"github.com/htol/locallibrary/middleware"
	"github.com/htol/locallibrary/service"
	"github.com/htol/locallibrary/view"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// render picks the JSON renderer when the client asked for it.
func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	renderer := h.pages
	if view.WantsJSON(r) {
		renderer = h.data
	}
	if err := renderer.Render(w, status, name, data); err != nil {
		logger.Error("Failed to render view", "view", name, "error", err, "request_id", middleware.RequestIDFrom(r.Context()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// respondWithError maps a service error to the error page: 404 for absent
// records, 500 with a generic message for everything else.
func (h *handler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		h.respondWithStatus(w, r, http.StatusNotFound, nf.Message, err)
		return
	}
	h.respondWithStatus(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
}

// respondWithStatus logs an error and renders the error view
func (h *handler) respondWithStatus(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	log := logger.With("path", r.URL.Path, "request_id", middleware.RequestIDFrom(r.Context()))
	if status >= http.StatusInternalServerError {
		log.Error(message, "error", err, "status", status)
	} else {
		log.Warn(message, "error", err, "status", status)
	}

	h.render(w, r, status, "error", map[string]any{
		"title":   http.StatusText(status),
		"message": message,
		"status":  status,
	})
}

// respondJSON writes v as a JSON document
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// getBaseURL extracts the base URL from the request
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// Check for X-Forwarded-Proto header (common with reverse proxies)
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

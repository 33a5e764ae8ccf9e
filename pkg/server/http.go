package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bastiangx/tagcomplete/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 64 << 10

// NewRouter exposes svc over HTTP.
func NewRouter(svc *Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	h := &handler{svc: svc}
	r.Get("/health", h.health)
	r.Get("/_complete/tags", h.completeTags)
	r.Get("/api/tags", h.listTags)
	r.Post("/api/tags", h.addTags)
	return r
}

type handler struct {
	svc *Service
}

// requestLogger logs each request through charm log at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug("http", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "status", ww.Status())
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) completeTags(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")

	tags, err := h.svc.Complete(term, 0)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, CompletionResults{Results: toResults(tags)})
}

func (h *handler) addTags(w http.ResponseWriter, r *http.Request) {
	var req AddTagsRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		log.Debugf("Unmarshaling request: %v", err)
		return
	}

	tags, err := h.svc.Record(r.Context(), req.Tags)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		log.Errorf("Recording tags: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, AddTagsResponse{Tags: toResults(tags)})
}

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Lookup(r.Context(), r.URL.Query().Get("term"), 0)
	if err != nil {
		if errors.Is(err, ErrNoStore) {
			sendError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Errorf("Listing tags: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stored := make([]StoredTag, 0, len(tags))
	for _, t := range tags {
		stored = append(stored, StoredTag{ID: t.ID, Name: t.Name, Uses: t.Uses})
	}
	writeJSON(w, http.StatusOK, StoredTags{Tags: stored})
}

func toResults(tags []index.Tag) []TagResult {
	results := make([]TagResult, 0, len(tags))
	for _, t := range tags {
		results = append(results, TagResult{ID: t.ID, Label: t.Name, Value: t.Name})
	}
	return results
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Marshaling response: %v", err)
	}
}

func sendError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message, Status: status})
}

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/store"
)

// entryRoute binds a URL segment to one of the named entry lists.
type entryRoute struct {
	segment string
	kind    model.EntryKind
}

var entryRoutes = []entryRoute{
	{"components", model.KindComponent},
	{"substitutes", model.KindSubstitute},
	{"ingress-annotations", model.KindIngressAnnotation},
}

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health and
// GET /metrics) must include a valid Authorization: Bearer <token> header.
// Every request is logged and counted.
func (s *CatalogServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	mux.HandleFunc("GET /v1/applications", s.handleListApplications)
	mux.HandleFunc("POST /v1/applications", s.handleCreateApplication)
	mux.HandleFunc("GET /v1/applications/{namespace}/{name}", s.handleGetApplication)
	mux.HandleFunc("PUT /v1/applications/{namespace}/{name}", s.handleUpdateApplication)
	mux.HandleFunc("DELETE /v1/applications/{namespace}/{name}", s.handleDeleteApplication)

	mux.HandleFunc("GET /v1/applications/{namespace}/{name}/dependencies", s.handleGetDependencies)
	mux.HandleFunc("POST /v1/applications/dependencies", s.handleQueryDependencies)
	mux.HandleFunc("GET /v1/graph", s.handleGetGraph)

	for _, r := range entryRoutes {
		mux.HandleFunc("GET /v1/"+r.segment, s.handleListEntries(r.kind))
		mux.HandleFunc("POST /v1/"+r.segment, s.handleCreateEntry(r.kind))
		mux.HandleFunc("PUT /v1/"+r.segment+"/{name}", s.handleRenameEntry(r.kind))
		mux.HandleFunc("DELETE /v1/"+r.segment+"/{name}", s.handleDeleteEntry(r.kind))
	}

	mux.HandleFunc("GET /v1/sync/status", s.handleSyncStatus)
	mux.HandleFunc("POST /v1/sync/pull", s.handleSyncPull)
	mux.HandleFunc("POST /v1/sync/push", s.handleSyncPush)

	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/audit", s.handleListAudit)
	mux.Handle("GET /metrics", promhttp.Handler())

	return RequestLogger(AuthMiddleware(authToken, mux))
}

// handleHealth handles GET /v1/health.
func (s *CatalogServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps a store or validation error to a response. Anything
// unrecognised is logged and reported as "failed to <action>".
func writeStoreError(w http.ResponseWriter, err error, action string) {
	var ve *model.ValidationError
	var ie inputError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return inputError("invalid JSON body")
	}
	return nil
}

// actorOf returns the user named by the request, if any.
func actorOf(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

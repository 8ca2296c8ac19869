package server

import (
	"net/http"

	"github.com/alfredjeanlab/appdeck/internal/events"
	"github.com/alfredjeanlab/appdeck/internal/graph"
	"github.com/alfredjeanlab/appdeck/internal/model"
)

// handleListApplications handles GET /v1/applications.
func (s *CatalogServer) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.store.ListApplications(r.Context())
	if err != nil {
		writeStoreError(w, err, "list applications")
		return
	}

	// Ensure applications is never null in JSON output.
	if apps == nil {
		apps = []*model.Application{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        len(apps),
	})
}

// handleCreateApplication handles POST /v1/applications.
func (s *CatalogServer) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var app model.Application
	if err := decodeBody(r, &app); err != nil {
		writeStoreError(w, err, "create application")
		return
	}

	if err := s.store.CreateApplication(r.Context(), &app); err != nil {
		writeStoreError(w, err, "create application")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicApplicationCreated, graph.KeyOf(&app).ID(), actorOf(r),
		events.ApplicationCreated{Application: &app})

	writeJSON(w, http.StatusCreated, &app)
}

// handleGetApplication handles GET /v1/applications/{namespace}/{name}.
func (s *CatalogServer) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.store.GetApplication(r.Context(), r.PathValue("namespace"), r.PathValue("name"))
	if err != nil {
		writeStoreError(w, err, "get application")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleUpdateApplication handles PUT /v1/applications/{namespace}/{name}.
// The body replaces the whole record; a different name or namespace in the
// body renames the application.
func (s *CatalogServer) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	namespace, name := r.PathValue("namespace"), r.PathValue("name")

	var app model.Application
	if err := decodeBody(r, &app); err != nil {
		writeStoreError(w, err, "update application")
		return
	}

	if err := s.store.UpdateApplication(r.Context(), namespace, name, &app); err != nil {
		writeStoreError(w, err, "update application")
		return
	}

	evt := events.ApplicationUpdated{Application: &app}
	if app.Name != name || app.Namespace != namespace {
		evt.PreviousName = name
		evt.PreviousNamespace = namespace
	}
	s.recordAndPublish(r.Context(), events.TopicApplicationUpdated, graph.KeyOf(&app).ID(), actorOf(r), evt)

	writeJSON(w, http.StatusOK, &app)
}

// handleDeleteApplication handles DELETE /v1/applications/{namespace}/{name}.
func (s *CatalogServer) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	namespace, name := r.PathValue("namespace"), r.PathValue("name")

	if err := s.store.DeleteApplication(r.Context(), namespace, name); err != nil {
		writeStoreError(w, err, "delete application")
		return
	}

	key := graph.Key{Name: name, Namespace: namespace}
	s.recordAndPublish(r.Context(), events.TopicApplicationDeleted, key.ID(), actorOf(r),
		events.ApplicationDeleted{Name: name, Namespace: namespace})

	w.WriteHeader(http.StatusNoContent)
}

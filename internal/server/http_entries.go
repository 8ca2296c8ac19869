package server

import (
	"net/http"

	"github.com/alfredjeanlab/appdeck/internal/events"
	"github.com/alfredjeanlab/appdeck/internal/model"
)

// entryInput is the body of the create and rename entry routes.
type entryInput struct {
	Name string `json:"name"`
}

// handleListEntries handles GET /v1/{components,substitutes,ingress-annotations}.
func (s *CatalogServer) handleListEntries(kind model.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.store.ListEntries(r.Context(), kind)
		if err != nil {
			writeStoreError(w, err, "list "+kind.String()+" entries")
			return
		}
		if entries == nil {
			entries = []model.Entry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"kind":    kind,
			"entries": entries,
		})
	}
}

// handleCreateEntry handles POST /v1/{components,substitutes,ingress-annotations}.
func (s *CatalogServer) handleCreateEntry(kind model.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in entryInput
		if err := decodeBody(r, &in); err != nil {
			writeStoreError(w, err, "create "+kind.String())
			return
		}

		entry, err := s.store.CreateEntry(r.Context(), kind, in.Name)
		if err != nil {
			writeStoreError(w, err, "create "+kind.String())
			return
		}

		s.recordAndPublish(r.Context(), events.EntryTopic(kind, events.ActionCreated),
			entrySubject(kind, entry.Name), actorOf(r),
			events.EntryCreated{Kind: kind, Name: entry.Name})

		writeJSON(w, http.StatusCreated, entry)
	}
}

// handleRenameEntry handles PUT /v1/{components,substitutes,ingress-annotations}/{name}.
func (s *CatalogServer) handleRenameEntry(kind model.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oldName := r.PathValue("name")

		var in entryInput
		if err := decodeBody(r, &in); err != nil {
			writeStoreError(w, err, "rename "+kind.String())
			return
		}

		entry, err := s.store.RenameEntry(r.Context(), kind, oldName, in.Name)
		if err != nil {
			writeStoreError(w, err, "rename "+kind.String())
			return
		}

		s.recordAndPublish(r.Context(), events.EntryTopic(kind, events.ActionRenamed),
			entrySubject(kind, entry.Name), actorOf(r),
			events.EntryRenamed{Kind: kind, OldName: oldName, NewName: entry.Name})

		writeJSON(w, http.StatusOK, entry)
	}
}

// handleDeleteEntry handles DELETE /v1/{components,substitutes,ingress-annotations}/{name}.
func (s *CatalogServer) handleDeleteEntry(kind model.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		if err := s.store.DeleteEntry(r.Context(), kind, name); err != nil {
			writeStoreError(w, err, "delete "+kind.String())
			return
		}

		s.recordAndPublish(r.Context(), events.EntryTopic(kind, events.ActionDeleted),
			entrySubject(kind, name), actorOf(r),
			events.EntryDeleted{Kind: kind, Name: name})

		w.WriteHeader(http.StatusNoContent)
	}
}

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/audit"
	"github.com/alfredjeanlab/appdeck/internal/events"
	decksync "github.com/alfredjeanlab/appdeck/internal/sync"
)

// pushInput is the body of POST /v1/sync/push.
type pushInput struct {
	CommitMessage string `json:"commit_message"`
}

// handleSyncStatus handles GET /v1/sync/status.
func (s *CatalogServer) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeJSON(w, http.StatusOK, decksync.RepoStatus{})
		return
	}
	st, err := s.repo.Status(r.Context())
	if err != nil {
		slog.Error("sync status failed", "path", s.repo.Path(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read repository status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleSyncPull handles POST /v1/sync/pull.
func (s *CatalogServer) handleSyncPull(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusNotFound, decksync.ErrNotRepository.Error())
		return
	}

	head, err := s.repo.Pull(r.Context())
	if err != nil {
		writeSyncError(w, err, "pull")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicRepoPulled, "repo", actorOf(r), events.RepoPulled{Head: head})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "pulled " + head,
		"head":    head,
	})
}

// handleSyncPush handles POST /v1/sync/push.
func (s *CatalogServer) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	var in pushInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.CommitMessage) == "" {
		writeError(w, http.StatusBadRequest, "commit_message is required")
		return
	}
	if s.repo == nil {
		writeError(w, http.StatusNotFound, decksync.ErrNotRepository.Error())
		return
	}

	res, err := s.repo.Push(r.Context(), in.CommitMessage)
	if err != nil {
		writeSyncError(w, err, "push")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicRepoPushed, "repo", actorOf(r),
		events.RepoPushed{Head: res.Head, Message: in.CommitMessage})

	msg := "pushed " + res.Head
	if !res.Committed {
		msg = "nothing to commit, pushed " + res.Head
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   msg,
		"committed": res.Committed,
		"head":      res.Head,
	})
}

// writeSyncError maps a git failure to a response. Git's own message is
// passed through so the operator can act on it.
func writeSyncError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, decksync.ErrNotRepository):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, decksync.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("git "+op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, op+" failed: "+err.Error())
	}
}

// handleListAudit handles GET /v1/audit?subject=&limit=.
func (s *CatalogServer) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{Subject: q.Get("subject")}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	evts, err := s.recorder.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err, "list audit events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": evts,
		"total":  len(evts),
	})
}

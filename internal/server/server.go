// Package server exposes the application catalog over HTTP and gRPC.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/audit"
	"github.com/alfredjeanlab/appdeck/internal/events"
	"github.com/alfredjeanlab/appdeck/internal/idgen"
	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/store"
	decksync "github.com/alfredjeanlab/appdeck/internal/sync"
)

const (
	// actorHeader carries the name of the user behind a mutation.
	actorHeader = "X-Deck-Actor"

	// filesystemActor is recorded for changes made outside the server.
	filesystemActor = "filesystem"
)

// CatalogServer serves the application catalog, its named entry lists, the
// dependency graph views and repository synchronization.
type CatalogServer struct {
	store     store.Store
	publisher events.Publisher
	recorder  audit.Recorder
	repo      *decksync.Repo
	sseHub    *sseHub
}

// NewCatalogServer returns a CatalogServer. A nil publisher or recorder is
// replaced by its no-op implementation; a nil repo reports sync as
// unconfigured.
func NewCatalogServer(s store.Store, p events.Publisher, r audit.Recorder, repo *decksync.Repo) *CatalogServer {
	if p == nil {
		p = events.NoopPublisher{}
	}
	if r == nil {
		r = audit.NoopRecorder{}
	}
	return &CatalogServer{
		store:     s,
		publisher: p,
		recorder:  r,
		repo:      repo,
		sseHub:    newSSEHub(),
	}
}

// recordAndPublish writes an event to the audit log, publishes it to the bus
// and broadcasts it to SSE clients. Every step is best-effort; failures are
// logged but do not fail the caller.
func (s *CatalogServer) recordAndPublish(ctx context.Context, topic, subject, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "subject", subject, "error", err)
		return
	}
	if id, err := idgen.EventID(); err != nil {
		slog.Warn("failed to generate event id", "topic", topic, "subject", subject, "error", err)
	} else if err := s.recorder.Record(ctx, &model.Event{
		ID:      id,
		Topic:   topic,
		Subject: subject,
		Actor:   actor,
		Payload: payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "subject", subject, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "subject", subject, "error", err)
	}
	s.sseHub.broadcast(topic, payload)
}

// CatalogChanged announces a catalog file that changed on disk without going
// through the server. path is reported relative to the repository when
// possible.
func (s *CatalogServer) CatalogChanged(ctx context.Context, path string) {
	if s.repo != nil {
		if rel, err := filepath.Rel(s.repo.Path(), path); err == nil && !strings.HasPrefix(rel, "..") {
			path = filepath.ToSlash(rel)
		}
	}
	slog.Info("catalog changed on disk", "path", path)
	s.recordAndPublish(ctx, events.TopicCatalogChanged, path, filesystemActor, events.CatalogChanged{Path: path})
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// entrySubject is the audit subject of a named entry, e.g. "component/nginx".
func entrySubject(kind model.EntryKind, name string) string {
	return kind.String() + "/" + name
}

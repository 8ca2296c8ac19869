// Package client provides a transport-agnostic interface for the appdeck
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

// CatalogClient is the interface that all deck CLI commands use to
// communicate with the catalog server.
type CatalogClient interface {
	// Applications
	ListApplications(ctx context.Context) ([]*model.Application, error)
	GetApplication(ctx context.Context, namespace, name string) (*model.Application, error)
	CreateApplication(ctx context.Context, app *model.Application) (*model.Application, error)
	UpdateApplication(ctx context.Context, namespace, name string, app *model.Application) (*model.Application, error)
	DeleteApplication(ctx context.Context, namespace, name string) error

	// Graphs
	GetGraph(ctx context.Context) (*model.Graph, error)
	GetDependencies(ctx context.Context, req *DependenciesRequest) (*model.Graph, error)

	// Named entries
	ListEntries(ctx context.Context, kind model.EntryKind) ([]model.Entry, error)
	CreateEntry(ctx context.Context, kind model.EntryKind, name string) (*model.Entry, error)
	RenameEntry(ctx context.Context, kind model.EntryKind, oldName, newName string) (*model.Entry, error)
	DeleteEntry(ctx context.Context, kind model.EntryKind, name string) error

	// Repository sync
	SyncStatus(ctx context.Context) (*SyncStatus, error)
	Pull(ctx context.Context) (*SyncResult, error)
	Push(ctx context.Context, commitMessage string) (*SyncResult, error)

	// Audit and events
	ListAudit(ctx context.Context, subject string, limit int) ([]*model.Event, error)
	StreamEvents(ctx context.Context, topics []string, fn func(StreamEvent) error) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// DependenciesRequest selects a bounded dependency tree. Depth is a level
// count or "all"; empty means the server default.
type DependenciesRequest struct {
	AppName      string `json:"app_name"`
	AppNamespace string `json:"app_namespace"`
	Depth        string `json:"depth,omitempty"`
}

// SyncStatus is the state of the server's catalog working copy.
type SyncStatus struct {
	Configured bool   `json:"configured"`
	Branch     string `json:"branch,omitempty"`
	Head       string `json:"head,omitempty"`
	Dirty      bool   `json:"dirty"`
}

// SyncResult is the response to a pull or push.
type SyncResult struct {
	Message   string `json:"message"`
	Head      string `json:"head"`
	Committed bool   `json:"committed,omitempty"`
}

// StreamEvent is one event read from the server's event stream.
type StreamEvent struct {
	ID    string
	Topic string
	Data  []byte
}

package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would create a second record with
	// an identity that is already taken.
	ErrConflict = errors.New("already exists")
)

// Store defines the persistence interface for the application catalog.
type Store interface {
	// Applications
	ListApplications(ctx context.Context) ([]*model.Application, error) // sorted by name, case-insensitive
	GetApplication(ctx context.Context, namespace, name string) (*model.Application, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	UpdateApplication(ctx context.Context, namespace, name string, app *model.Application) error
	DeleteApplication(ctx context.Context, namespace, name string) error

	// Named entries (components, substitutes, ingress annotations)
	ListEntries(ctx context.Context, kind model.EntryKind) ([]model.Entry, error)
	CreateEntry(ctx context.Context, kind model.EntryKind, name string) (model.Entry, error)
	RenameEntry(ctx context.Context, kind model.EntryKind, oldName, newName string) (model.Entry, error)
	DeleteEntry(ctx context.Context, kind model.EntryKind, name string) error

	// Lifecycle
	Close() error
}

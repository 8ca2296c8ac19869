package sync

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

// mockCatalog is a minimal in-memory Catalog for sync tests.
type mockCatalog struct {
	apps    []*model.Application
	entries map[model.EntryKind][]model.Entry
	listErr error
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{entries: make(map[model.EntryKind][]model.Entry)}
}

func (m *mockCatalog) ListApplications(_ context.Context) ([]*model.Application, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*model.Application, len(m.apps))
	copy(out, m.apps)
	return out, nil
}

func (m *mockCatalog) ListEntries(_ context.Context, kind model.EntryKind) ([]model.Entry, error) {
	if !kind.IsValid() {
		return nil, errors.New("unknown kind")
	}
	return append([]model.Entry(nil), m.entries[kind]...), nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/alfredjeanlab/appdeck/internal/audit"
	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/store"
)

// mockStore is an in-memory store.Store. Setting err makes every call fail.
type mockStore struct {
	mu      sync.Mutex
	apps    []*model.Application
	entries map[model.EntryKind][]model.Entry
	err     error
}

var _ store.Store = (*mockStore)(nil)

func newMockStore(apps ...*model.Application) *mockStore {
	return &mockStore{
		apps:    apps,
		entries: make(map[model.EntryKind][]model.Entry),
	}
}

func (m *mockStore) find(namespace, name string) int {
	for i, a := range m.apps {
		if a.Namespace == namespace && a.Name == name {
			return i
		}
	}
	return -1
}

func (m *mockStore) ListApplications(context.Context) ([]*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]*model.Application(nil), m.apps...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *mockStore) GetApplication(_ context.Context, namespace, name string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	i := m.find(namespace, name)
	if i < 0 {
		return nil, fmt.Errorf("application %s/%s: %w", namespace, name, store.ErrNotFound)
	}
	return m.apps[i], nil
}

func (m *mockStore) CreateApplication(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	app.Normalize()
	app.Base = model.DefaultBase
	if err := model.ValidateApplication(app); err != nil {
		return err
	}
	if m.find(app.Namespace, app.Name) >= 0 {
		return fmt.Errorf("application %s/%s: %w", app.Namespace, app.Name, store.ErrConflict)
	}
	m.apps = append(m.apps, app.Clone())
	return nil
}

func (m *mockStore) UpdateApplication(_ context.Context, namespace, name string, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	app.Normalize()
	if err := model.ValidateApplication(app); err != nil {
		return err
	}
	i := m.find(namespace, name)
	if i < 0 {
		return fmt.Errorf("application %s/%s: %w", namespace, name, store.ErrNotFound)
	}
	if app.Namespace != namespace || app.Name != name {
		if m.find(app.Namespace, app.Name) >= 0 {
			return fmt.Errorf("application %s/%s: %w", app.Namespace, app.Name, store.ErrConflict)
		}
	}
	m.apps[i] = app.Clone()
	return nil
}

func (m *mockStore) DeleteApplication(_ context.Context, namespace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	i := m.find(namespace, name)
	if i < 0 {
		return fmt.Errorf("application %s/%s: %w", namespace, name, store.ErrNotFound)
	}
	m.apps = append(m.apps[:i], m.apps[i+1:]...)
	return nil
}

func (m *mockStore) findEntry(kind model.EntryKind, name string) int {
	for i, e := range m.entries[kind] {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (m *mockStore) ListEntries(_ context.Context, kind model.EntryKind) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Entry(nil), m.entries[kind]...), nil
}

func (m *mockStore) CreateEntry(_ context.Context, kind model.EntryKind, name string) (model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Entry{}, m.err
	}
	name = strings.TrimSpace(name)
	if err := model.ValidateEntryName(name); err != nil {
		return model.Entry{}, err
	}
	if m.findEntry(kind, name) >= 0 {
		return model.Entry{}, fmt.Errorf("%s %q: %w", kind, name, store.ErrConflict)
	}
	e := model.Entry{Name: name}
	m.entries[kind] = append(m.entries[kind], e)
	return e, nil
}

func (m *mockStore) RenameEntry(_ context.Context, kind model.EntryKind, oldName, newName string) (model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Entry{}, m.err
	}
	newName = strings.TrimSpace(newName)
	if err := model.ValidateEntryName(newName); err != nil {
		return model.Entry{}, err
	}
	i := m.findEntry(kind, oldName)
	if i < 0 {
		return model.Entry{}, fmt.Errorf("%s %q: %w", kind, oldName, store.ErrNotFound)
	}
	if j := m.findEntry(kind, newName); j >= 0 && j != i {
		return model.Entry{}, fmt.Errorf("%s %q: %w", kind, newName, store.ErrConflict)
	}
	m.entries[kind][i] = model.Entry{Name: newName}
	return m.entries[kind][i], nil
}

func (m *mockStore) DeleteEntry(_ context.Context, kind model.EntryKind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	i := m.findEntry(kind, name)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", kind, name, store.ErrNotFound)
	}
	m.entries[kind] = append(m.entries[kind][:i], m.entries[kind][i+1:]...)
	return nil
}

func (m *mockStore) Close() error { return nil }

// mockRecorder keeps recorded events in memory.
type mockRecorder struct {
	mu     sync.Mutex
	events []*model.Event
	err    error
}

var _ audit.Recorder = (*mockRecorder)(nil)

func (r *mockRecorder) Record(_ context.Context, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *mockRecorder) List(_ context.Context, f audit.Filter) ([]*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []*model.Event{}
	for i := len(r.events) - 1; i >= 0; i-- {
		if f.Subject == "" || r.events[i].Subject == f.Subject {
			out = append(out, r.events[i])
		}
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *mockRecorder) Close() error { return nil }

func (r *mockRecorder) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}

// mockPublisher captures published topics.
type mockPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *mockPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

// failingPublisher fails every publish.
type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error {
	return errors.New("bus unavailable")
}

func (failingPublisher) Close() error { return nil }

// newTestServer returns a server backed by an in-memory store and recorder,
// with no repository and auth disabled.
func newTestServer(apps ...*model.Application) (*CatalogServer, *mockStore, *mockRecorder, http.Handler) {
	ms := newMockStore(apps...)
	rec := &mockRecorder{}
	srv := NewCatalogServer(ms, &mockPublisher{}, rec, nil)
	return srv, ms, rec, srv.NewHTTPHandler("")
}

// app returns an active application depending on "name:namespace" refs.
func app(name, namespace string, deps ...string) *model.Application {
	a := &model.Application{Active: true, Name: name, Namespace: namespace}
	for _, d := range deps {
		n, ns, _ := strings.Cut(d, ":")
		a.DependsOn = append(a.DependsOn, model.DependencyRef{Name: n, Namespace: ns})
	}
	return a
}

// Package yamlstore implements store.Store on top of the YAML files of a
// catalog repository.
//
// Applications live under the applications root as
// <namespace>/apps_<namespace>_<name>.yaml, each file holding an "apps"
// mapping keyed by application name. Components, substitutes and ingress
// annotations are lists of {nom} entries under metadatas.apps.<list> in their
// own files. Keys the store does not manage are preserved on write.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/appdeck/internal/config"
	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/store"
)

const appsKey = "apps"

// YAMLStore implements store.Store backed by YAML files on disk.
type YAMLStore struct {
	paths  config.DataPaths
	logger *slog.Logger

	mu sync.RWMutex

	// writes maps each file path to the time the store last wrote or removed
	// it, so Watch can skip the store's own changes.
	writes sync.Map
}

// Compile-time check that YAMLStore implements store.Store.
var _ store.Store = (*YAMLStore)(nil)

// New returns a store reading and writing the files named by paths. Nothing
// is read until the first call; missing files behave as empty catalogs.
func New(paths config.DataPaths, logger *slog.Logger) *YAMLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &YAMLStore{paths: paths, logger: logger}
}

// Close is a no-op; every operation opens and closes its own files.
func (s *YAMLStore) Close() error {
	return nil
}

// record is an application together with where it was loaded from.
type record struct {
	app  *model.Application
	path string
	key  string // key under "apps" in path
}

// appPath is the canonical location of an application record.
func (s *YAMLStore) appPath(namespace, name string) string {
	return filepath.Join(s.paths.ApplicationsRoot, namespace, "apps_"+namespace+"_"+name+".yaml")
}

// loadAll reads every application under the applications root. Files that
// cannot be read or parsed are logged and skipped.
func (s *YAMLStore) loadAll(ctx context.Context) ([]record, error) {
	var out []record
	err := filepath.WalkDir(s.paths.ApplicationsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.paths.ApplicationsRoot {
				return filepath.SkipAll
			}
			s.logger.Warn("yamlstore: skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}

		root, err := readDocument(path)
		if err != nil {
			s.logger.Warn("yamlstore: skipping malformed file", "path", path, "err", err)
			return nil
		}
		apps := lookup(root, appsKey)
		if apps == nil || apps.Kind != yaml.MappingNode {
			return nil
		}
		for i := 0; i+1 < len(apps.Content); i += 2 {
			key := apps.Content[i].Value
			var app model.Application
			if err := apps.Content[i+1].Decode(&app); err != nil {
				s.logger.Warn("yamlstore: skipping malformed application",
					"path", path, "app", key, "err", err)
				continue
			}
			if app.Name == "" {
				app.Name = key
			}
			app.Path = path
			out = append(out, record{app: &app, path: path, key: key})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].app.Name) < strings.ToLower(out[j].app.Name)
	})
	return out, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// find returns the record for (namespace, name). When the identity is
// defined more than once the last record read wins, as it does in the graph.
func find(recs []record, namespace, name string) (record, bool) {
	for i := len(recs) - 1; i >= 0; i-- {
		if r := recs[i]; r.app.Name == name && r.app.Namespace == namespace {
			return r, true
		}
	}
	return record{}, false
}

func (s *YAMLStore) ListApplications(ctx context.Context) ([]*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	apps := make([]*model.Application, len(recs))
	for i, r := range recs {
		apps[i] = r.app
	}
	return apps, nil
}

func (s *YAMLStore) GetApplication(ctx context.Context, namespace, name string) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := find(recs, namespace, name)
	if !ok {
		return nil, fmt.Errorf("application %s/%s: %w", namespace, name, store.ErrNotFound)
	}
	return r.app, nil
}

func (s *YAMLStore) CreateApplication(ctx context.Context, app *model.Application) error {
	app.Normalize()
	app.Base = model.DefaultBase
	if err := model.ValidateApplication(app); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := find(recs, app.Namespace, app.Name); ok {
		return fmt.Errorf("application %s/%s: %w", app.Namespace, app.Name, store.ErrConflict)
	}

	path := s.appPath(app.Namespace, app.Name)
	if err := s.putApp(path, "", app); err != nil {
		return err
	}
	app.Path = path
	return nil
}

// UpdateApplication replaces the application currently identified by
// (namespace, name). When the new record carries a different identity the
// entry moves to its canonical file and is removed from the old one.
func (s *YAMLStore) UpdateApplication(ctx context.Context, namespace, name string, app *model.Application) error {
	app.Normalize()
	if err := model.ValidateApplication(app); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	cur, ok := find(recs, namespace, name)
	if !ok {
		return fmt.Errorf("application %s/%s: %w", namespace, name, store.ErrNotFound)
	}
	if app.Base == "" {
		app.Base = cur.app.Base
	}

	renamed := app.Name != name || app.Namespace != namespace
	if !renamed {
		if err := s.putApp(cur.path, cur.key, app); err != nil {
			return err
		}
		app.Path = cur.path
		return nil
	}

	if _, taken := find(recs, app.Namespace, app.Name); taken {
		return fmt.Errorf("application %s/%s: %w", app.Namespace, app.Name, store.ErrConflict)
	}

	path := s.appPath(app.Namespace, app.Name)
	if path == cur.path {
		if err := s.putApp(path, cur.key, app); err != nil {
			return err
		}
	} else {
		if err := s.putApp(path, "", app); err != nil {
			return err
		}
		if err := s.removeApp(cur.path, cur.key); err != nil {
			return err
		}
	}
	app.Path = path
	return nil
}

func (s *YAMLStore) DeleteApplication(ctx context.Context, namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	cur, ok := find(recs, namespace, name)
	if !ok {
		return fmt.Errorf("application %s/%s: %w", namespace, name, store.ErrNotFound)
	}
	return s.removeApp(cur.path, cur.key)
}

// putApp writes app into the apps mapping of path under its name. When
// replaceKey is set and differs from the name, that entry is dropped first.
func (s *YAMLStore) putApp(path, replaceKey string, app *model.Application) error {
	root, err := readDocument(path)
	if err != nil {
		return err
	}
	node, err := encodeNode(app)
	if err != nil {
		return fmt.Errorf("encode application %s/%s: %w", app.Namespace, app.Name, err)
	}

	apps := child(root, appsKey)
	if replaceKey != "" && replaceKey != app.Name {
		remove(apps, replaceKey)
	}
	set(apps, app.Name, node)
	s.noteWrite(path)
	return writeDocument(path, root)
}

// removeApp drops key from the apps mapping of path. A file left with no
// applications and no other content is deleted, along with its directory
// when that becomes empty.
func (s *YAMLStore) removeApp(path, key string) error {
	root, err := readDocument(path)
	if err != nil {
		return err
	}
	apps := lookup(root, appsKey)
	if apps == nil || !remove(apps, key) {
		return nil
	}
	s.noteWrite(path)
	if len(apps.Content) > 0 {
		return writeDocument(path, root)
	}

	remove(root, appsKey)
	if len(root.Content) > 0 {
		return writeDocument(path, root)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != filepath.Clean(s.paths.ApplicationsRoot) {
		// Only succeeds once the directory is empty.
		_ = os.Remove(dir)
	}
	return nil
}

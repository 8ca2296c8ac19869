package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// selfWriteWindow is how long after the store writes a file that
// filesystem events for it are attributed to the store.
const selfWriteWindow = 2 * time.Second

func (s *YAMLStore) noteWrite(path string) {
	s.writes.Store(filepath.Clean(path), time.Now())
}

func (s *YAMLStore) wroteRecently(path string) bool {
	v, ok := s.writes.Load(filepath.Clean(path))
	return ok && time.Since(v.(time.Time)) < selfWriteWindow
}

// Watch reports changes made to catalog files by anything other than the
// store itself, such as a manual edit or a git pull. fn is called with the
// changed path once a file has been quiet for debounce. Watch blocks until
// ctx is done.
func (s *YAMLStore) Watch(ctx context.Context, debounce time.Duration, fn func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := os.MkdirAll(s.paths.ApplicationsRoot, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.paths.ApplicationsRoot, err)
	}
	if err := s.addTree(w, s.paths.ApplicationsRoot); err != nil {
		return err
	}
	for _, file := range []string{s.paths.Components, s.paths.Substitutes, s.paths.IngressAnnotations} {
		dir := filepath.Dir(file)
		if err := w.Add(dir); err != nil {
			s.logger.Warn("yamlstore: not watching metadata directory", "dir", dir, "err", err)
		}
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("yamlstore: watcher error", "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := s.addTree(w, ev.Name); err != nil {
						s.logger.Warn("yamlstore: not watching directory", "dir", ev.Name, "err", err)
					}
					continue
				}
			}
			if !s.relevant(ev.Name) || s.wroteRecently(ev.Name) {
				continue
			}

			path := ev.Name
			mu.Lock()
			if t, ok := pending[path]; ok {
				t.Reset(debounce)
			} else {
				pending[path] = time.AfterFunc(debounce, func() {
					mu.Lock()
					delete(pending, path)
					mu.Unlock()
					if ctx.Err() == nil {
						fn(path)
					}
				})
			}
			mu.Unlock()
		}
	}
}

// relevant reports whether path is a catalog file: a YAML file below the
// applications root or one of the entry list files.
func (s *YAMLStore) relevant(path string) bool {
	path = filepath.Clean(path)
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	switch path {
	case filepath.Clean(s.paths.Components), filepath.Clean(s.paths.Substitutes), filepath.Clean(s.paths.IngressAnnotations):
		return true
	}
	rel, err := filepath.Rel(s.paths.ApplicationsRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return isYAML(path)
}

// addTree watches dir and every directory below it.
func (s *YAMLStore) addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

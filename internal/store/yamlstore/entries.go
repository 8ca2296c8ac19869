package yamlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/store"
)

const metadatasKey = "metadatas"

// listKey is the key under metadatas.apps holding the list for kind.
func listKey(kind model.EntryKind) string {
	switch kind {
	case model.KindComponent:
		return "components"
	case model.KindSubstitute:
		return "substitutes"
	case model.KindIngressAnnotation:
		return "ingress_annotations"
	}
	return ""
}

func (s *YAMLStore) entryPath(kind model.EntryKind) (string, error) {
	switch kind {
	case model.KindComponent:
		return s.paths.Components, nil
	case model.KindSubstitute:
		return s.paths.Substitutes, nil
	case model.KindIngressAnnotation:
		return s.paths.IngressAnnotations, nil
	}
	return "", fmt.Errorf("unknown entry kind %q", kind)
}

// sameName compares entry names. Component names are case-insensitive; the
// other lists compare exactly.
func sameName(kind model.EntryKind, a, b string) bool {
	if kind == model.KindComponent {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func (s *YAMLStore) readEntries(kind model.EntryKind) ([]model.Entry, error) {
	path, err := s.entryPath(kind)
	if err != nil {
		return nil, err
	}
	root, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	list := lookup(lookup(lookup(root, metadatasKey), appsKey), listKey(kind))
	if list == nil {
		return []model.Entry{}, nil
	}
	var entries []model.Entry
	if err := list.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode %s list in %s: %w", kind, path, err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

func (s *YAMLStore) writeEntries(kind model.EntryKind, entries []model.Entry) error {
	path, err := s.entryPath(kind)
	if err != nil {
		return err
	}
	root, err := readDocument(path)
	if err != nil {
		return err
	}
	node, err := encodeNode(entries)
	if err != nil {
		return fmt.Errorf("encode %s list: %w", kind, err)
	}
	set(child(child(root, metadatasKey), appsKey), listKey(kind), node)
	s.noteWrite(path)
	return writeDocument(path, root)
}

func (s *YAMLStore) ListEntries(_ context.Context, kind model.EntryKind) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readEntries(kind)
}

func (s *YAMLStore) CreateEntry(_ context.Context, kind model.EntryKind, name string) (model.Entry, error) {
	name = strings.TrimSpace(name)
	if err := model.ValidateEntryName(name); err != nil {
		return model.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries(kind)
	if err != nil {
		return model.Entry{}, err
	}
	for _, e := range entries {
		if sameName(kind, e.Name, name) {
			return model.Entry{}, fmt.Errorf("%s %q: %w", kind, name, store.ErrConflict)
		}
	}

	entry := model.Entry{Name: name}
	if err := s.writeEntries(kind, append(entries, entry)); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// RenameEntry renames the entry named exactly oldName. Renaming onto the
// name of another entry fails with store.ErrConflict.
func (s *YAMLStore) RenameEntry(_ context.Context, kind model.EntryKind, oldName, newName string) (model.Entry, error) {
	newName = strings.TrimSpace(newName)
	if err := model.ValidateEntryName(newName); err != nil {
		return model.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries(kind)
	if err != nil {
		return model.Entry{}, err
	}

	idx := -1
	for i, e := range entries {
		if e.Name == oldName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Entry{}, fmt.Errorf("%s %q: %w", kind, oldName, store.ErrNotFound)
	}
	for i, e := range entries {
		if i != idx && sameName(kind, e.Name, newName) {
			return model.Entry{}, fmt.Errorf("%s %q: %w", kind, newName, store.ErrConflict)
		}
	}

	entries[idx].Name = newName
	if err := s.writeEntries(kind, entries); err != nil {
		return model.Entry{}, err
	}
	return entries[idx], nil
}

func (s *YAMLStore) DeleteEntry(_ context.Context, kind model.EntryKind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries(kind)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return fmt.Errorf("%s %q: %w", kind, name, store.ErrNotFound)
	}
	return s.writeEntries(kind, kept)
}

// Package graph builds dependency graphs over catalog applications.
//
// Two views are provided. BuildFull returns every application together with
// every dependsOn target, including targets that have no record of their own.
// Walk follows dependsOn edges outward from a single root, breadth first and
// bounded by a Depth, and only emits applications that exist in the catalog.
//
// Both views are computed from the slice they are given and hold no state
// between calls.
package graph

import "github.com/alfredjeanlab/appdeck/internal/model"

// Key identifies an application by its (name, namespace) pair. It is
// comparable and is used as the lookup key throughout the package, so names
// containing the ":" delimiter cannot collide internally.
type Key struct {
	Name      string
	Namespace string
}

// KeyOf returns the identity key of an application record.
func KeyOf(a *model.Application) Key {
	return Key{Name: a.Name, Namespace: a.Namespace}
}

// KeyOfRef returns the identity key a dependency reference points at.
func KeyOfRef(d model.DependencyRef) Key {
	return Key{Name: d.Name, Namespace: d.Namespace}
}

// ID renders the key as the public node id, name + ":" + namespace. Empty
// fields are kept, so the zero Key renders as ":".
func (k Key) ID() string {
	return k.Name + ":" + k.Namespace
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return k.ID()
}

// index builds the lookup table for a set of applications. Later records
// replace earlier ones with the same key. The returned order lists each key
// once, at the position it was first seen.
func index(apps []*model.Application) (map[Key]*model.Application, []Key) {
	lookup := make(map[Key]*model.Application, len(apps))
	order := make([]Key, 0, len(apps))
	for _, app := range apps {
		if app == nil {
			continue
		}
		k := KeyOf(app)
		if _, seen := lookup[k]; !seen {
			order = append(order, k)
		}
		lookup[k] = app
	}
	return lookup, order
}

func newGraph() *model.Graph {
	return &model.Graph{
		Nodes: []model.GraphNode{},
		Links: []model.GraphLink{},
	}
}

func dependencyLink(dep, dependent Key) model.GraphLink {
	return model.GraphLink{
		Source: dep.ID(),
		Target: dependent.ID(),
		Type:   model.LinkDependency,
	}
}

package graph

import "github.com/alfredjeanlab/appdeck/internal/model"

// BuildFull returns the dependency graph of every application in apps.
//
// Applications are visited in input order and emitted as "application" nodes.
// Each dependsOn target not yet emitted becomes a "dependency" node, whether
// or not a record exists for it. The first emission of an id wins, so an
// application referenced before its own turn keeps the "dependency" type.
//
// One link is emitted per declared dependsOn entry; links are not
// deduplicated.
func BuildFull(apps []*model.Application) *model.Graph {
	lookup, order := index(apps)
	g := newGraph()
	emitted := make(map[Key]bool, len(order))

	for _, key := range order {
		app := lookup[key]

		if !emitted[key] {
			g.Nodes = append(g.Nodes, model.GraphNode{
				ID:        key.ID(),
				Name:      app.Name,
				Namespace: app.Namespace,
				Type:      model.NodeApplication,
			})
			emitted[key] = true
		}

		for _, dep := range app.DependsOn {
			dk := KeyOfRef(dep)
			if !emitted[dk] {
				g.Nodes = append(g.Nodes, model.GraphNode{
					ID:        dk.ID(),
					Name:      dep.Name,
					Namespace: dep.Namespace,
					Type:      model.NodeDependency,
				})
				emitted[dk] = true
			}
			g.Links = append(g.Links, dependencyLink(dk, key))
		}
	}

	return g
}

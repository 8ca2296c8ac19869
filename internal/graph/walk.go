package graph

import "github.com/alfredjeanlab/appdeck/internal/model"

type walkItem struct {
	key   Key
	level int
	typ   model.NodeType
}

// Walk returns the dependency tree of root, explored breadth first along
// dependsOn edges up to limit levels away from the root.
//
// The root is emitted at level 0 with type "source"; everything reached from
// it has type "dependency". An id is expanded at most once, which keeps the
// walk finite on cyclic catalogs even with an Unbounded depth. References to
// applications that have no record are dropped: they yield neither a node nor
// a link. A root without a record yields an empty graph.
func Walk(apps []*model.Application, root Key, limit Depth) *model.Graph {
	lookup, _ := index(apps)
	g := newGraph()

	visited := make(map[Key]bool)
	queue := []walkItem{{key: root, level: 0, typ: model.NodeSource}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.key] || !limit.Allows(cur.level) {
			continue
		}
		visited[cur.key] = true

		app, ok := lookup[cur.key]
		if !ok {
			continue
		}

		level := cur.level
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:        cur.key.ID(),
			Name:      app.Name,
			Namespace: app.Namespace,
			Level:     &level,
			Type:      cur.typ,
		})

		if !limit.Expands(cur.level) {
			continue
		}
		for _, dep := range app.DependsOn {
			dk := KeyOfRef(dep)
			if _, ok := lookup[dk]; !ok {
				continue
			}
			g.Links = append(g.Links, dependencyLink(dk, cur.key))
			queue = append(queue, walkItem{key: dk, level: cur.level + 1, typ: model.NodeDependency})
		}
	}

	return g
}

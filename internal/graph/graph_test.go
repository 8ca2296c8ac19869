package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

func app(name, ns string, deps ...string) *model.Application {
	a := &model.Application{Name: name, Namespace: ns}
	for _, d := range deps {
		a.DependsOn = append(a.DependsOn, model.DependencyRef{Name: d, Namespace: ns})
	}
	return a
}

func nodeIDs(g *model.Graph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func levelOf(n model.GraphNode) int {
	if n.Level == nil {
		return -1
	}
	return *n.Level
}

func assertUniqueIDs(t *testing.T, g *model.Graph) {
	t.Helper()
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		assert.False(t, seen[n.ID], "duplicate node id %q", n.ID)
		seen[n.ID] = true
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "web:prod", Key{Name: "web", Namespace: "prod"}.ID())
	assert.Equal(t, ":", Key{}.ID())
	assert.Equal(t, "db:prod", KeyOfRef(model.DependencyRef{Name: "db", Namespace: "prod"}).String())
	assert.Equal(t, Key{Name: "web", Namespace: "prod"}, KeyOf(app("web", "prod")))

	// Keys that render the same id stay distinct as map keys.
	a := Key{Name: "a:b", Namespace: "c"}
	b := Key{Name: "a", Namespace: "b:c"}
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a, b)
}

func TestBuildFull_DanglingDependency(t *testing.T) {
	g := BuildFull([]*model.Application{app("A", "ns", "X")})

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, model.GraphNode{ID: "A:ns", Name: "A", Namespace: "ns", Type: model.NodeApplication}, g.Nodes[0])
	assert.Equal(t, model.GraphNode{ID: "X:ns", Name: "X", Namespace: "ns", Type: model.NodeDependency}, g.Nodes[1])
	assert.Equal(t, []model.GraphLink{{Source: "X:ns", Target: "A:ns", Type: "dependency"}}, g.Links)
}

func TestBuildFull_LinkCountLaw(t *testing.T) {
	apps := []*model.Application{
		app("api", "ns", "db", "cache"),
		app("cache", "ns"),
		app("db", "ns"),
		app("web", "ns", "api", "cache", "ghost"),
	}
	g := BuildFull(apps)

	declared := 0
	for _, a := range apps {
		declared += len(a.DependsOn)
	}
	assert.Len(t, g.Links, declared)
	assert.Len(t, g.Nodes, 5)
	assertUniqueIDs(t, g)
	assert.LessOrEqual(t, len(g.Nodes), len(apps)+declared)
}

func TestBuildFull_RepeatedLinksAreKept(t *testing.T) {
	g := BuildFull([]*model.Application{
		app("web", "ns", "db", "db"),
		app("db", "ns"),
	})
	assert.Len(t, g.Links, 2)
	assert.Equal(t, g.Links[0], g.Links[1])
}

func TestBuildFull_FirstEmissionWins(t *testing.T) {
	// "api" is referenced by "a-web" before its own turn, so it keeps the
	// dependency type.
	g := BuildFull([]*model.Application{
		app("a-web", "ns", "api"),
		app("api", "ns"),
	})
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, model.NodeDependency, g.Nodes[1].Type)

	// Reversed input order: the application is emitted first.
	g = BuildFull([]*model.Application{
		app("api", "ns"),
		app("a-web", "ns", "api"),
	})
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, model.NodeApplication, g.Nodes[0].Type)
	assert.Equal(t, "api:ns", g.Nodes[0].ID)
}

func TestBuildFull_DuplicateRecordsLastWins(t *testing.T) {
	g := BuildFull([]*model.Application{
		app("web", "ns", "old"),
		app("db", "ns"),
		app("web", "ns", "db"),
	})
	assert.Equal(t, []string{"web:ns", "db:ns"}, nodeIDs(g))
	assert.Equal(t, []model.GraphLink{{Source: "db:ns", Target: "web:ns", Type: "dependency"}}, g.Links)
}

func TestBuildFull_Empty(t *testing.T) {
	g := BuildFull(nil)
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Links)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)
}

func TestBuildFull_NodesHaveNoLevel(t *testing.T) {
	g := BuildFull([]*model.Application{app("web", "ns", "db"), app("db", "ns")})
	for _, n := range g.Nodes {
		assert.Nil(t, n.Level, "node %s", n.ID)
	}
}

func TestBuildFull_Deterministic(t *testing.T) {
	apps := []*model.Application{
		app("api", "ns", "db"),
		app("db", "ns"),
		app("web", "ns", "api", "db"),
	}
	first := BuildFull(apps)
	for range 5 {
		assert.Equal(t, first, BuildFull(apps))
	}
}

func TestWalk_ZeroDepth(t *testing.T) {
	apps := []*model.Application{app("A", "ns", "B")}
	g := Walk(apps, Key{Name: "A", Namespace: "ns"}, 0)

	require.Len(t, g.Nodes, 1)
	n := g.Nodes[0]
	assert.Equal(t, "A:ns", n.ID)
	assert.Equal(t, "A", n.Name)
	assert.Equal(t, "ns", n.Namespace)
	assert.Equal(t, 0, levelOf(n))
	assert.Equal(t, model.NodeSource, n.Type)
	assert.Empty(t, g.Links)
}

func TestWalk_OneHop(t *testing.T) {
	apps := []*model.Application{app("A", "ns", "B"), app("B", "ns")}
	g := Walk(apps, Key{Name: "A", Namespace: "ns"}, 1)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "A:ns", g.Nodes[0].ID)
	assert.Equal(t, 0, levelOf(g.Nodes[0]))
	assert.Equal(t, "B:ns", g.Nodes[1].ID)
	assert.Equal(t, 1, levelOf(g.Nodes[1]))
	assert.Equal(t, model.NodeDependency, g.Nodes[1].Type)
	assert.Equal(t, []model.GraphLink{{Source: "B:ns", Target: "A:ns", Type: "dependency"}}, g.Links)
}

func TestWalk_OneHopDanglingDropped(t *testing.T) {
	apps := []*model.Application{app("A", "ns", "B")}
	g := Walk(apps, Key{Name: "A", Namespace: "ns"}, 1)

	assert.Equal(t, []string{"A:ns"}, nodeIDs(g))
	assert.Empty(t, g.Links)
}

func TestWalk_DanglingAsymmetryWithBuildFull(t *testing.T) {
	apps := []*model.Application{app("A", "ns", "X")}

	full := BuildFull(apps)
	tree := Walk(apps, Key{Name: "A", Namespace: "ns"}, Unbounded)

	assert.Contains(t, nodeIDs(full), "X:ns")
	assert.NotContains(t, nodeIDs(tree), "X:ns")
	assert.Len(t, full.Links, 1)
	assert.Empty(t, tree.Links)
}

func TestWalk_CycleUnbounded(t *testing.T) {
	apps := []*model.Application{app("A", "ns", "B"), app("B", "ns", "A")}
	g := Walk(apps, Key{Name: "A", Namespace: "ns"}, Unbounded)

	assert.Equal(t, []string{"A:ns", "B:ns"}, nodeIDs(g))
	assert.Equal(t, []model.GraphLink{
		{Source: "B:ns", Target: "A:ns", Type: "dependency"},
		{Source: "A:ns", Target: "B:ns", Type: "dependency"},
	}, g.Links)
}

func TestWalk_SelfDependency(t *testing.T) {
	apps := []*model.Application{app("A", "ns", "A")}
	g := Walk(apps, Key{Name: "A", Namespace: "ns"}, Unbounded)

	assert.Equal(t, []string{"A:ns"}, nodeIDs(g))
	assert.Len(t, g.Links, 1)
}

func TestWalk_DepthBound(t *testing.T) {
	// chain: a -> b -> c -> d -> e
	apps := []*model.Application{
		app("a", "ns", "b"),
		app("b", "ns", "c"),
		app("c", "ns", "d"),
		app("d", "ns", "e"),
		app("e", "ns"),
	}
	for _, limit := range []Depth{0, 1, 2, 3, 10} {
		g := Walk(apps, Key{Name: "a", Namespace: "ns"}, limit)
		for _, n := range g.Nodes {
			assert.LessOrEqual(t, levelOf(n), int(limit), "depth %d node %s", limit, n.ID)
		}
		assertUniqueIDs(t, g)
	}

	g := Walk(apps, Key{Name: "a", Namespace: "ns"}, 2)
	assert.Equal(t, []string{"a:ns", "b:ns", "c:ns"}, nodeIDs(g))
	assert.Len(t, g.Links, 2)

	g = Walk(apps, Key{Name: "a", Namespace: "ns"}, Unbounded)
	assert.Len(t, g.Nodes, 5)
	assert.Equal(t, 4, levelOf(g.Nodes[4]))
}

func TestWalk_BreadthFirstLevels(t *testing.T) {
	// diamond: top -> left, right; left -> bottom; right -> bottom
	apps := []*model.Application{
		app("top", "ns", "left", "right"),
		app("left", "ns", "bottom"),
		app("right", "ns", "bottom"),
		app("bottom", "ns"),
	}
	g := Walk(apps, Key{Name: "top", Namespace: "ns"}, Unbounded)

	assert.Equal(t, []string{"top:ns", "left:ns", "right:ns", "bottom:ns"}, nodeIDs(g))
	assert.Equal(t, 2, levelOf(g.Nodes[3]))
	// bottom is reached from both parents, so both links are reported.
	assert.Len(t, g.Links, 4)
	assertUniqueIDs(t, g)
}

func TestWalk_IgnoresDependents(t *testing.T) {
	apps := []*model.Application{app("web", "ns", "db"), app("db", "ns")}
	g := Walk(apps, Key{Name: "db", Namespace: "ns"}, Unbounded)

	assert.Equal(t, []string{"db:ns"}, nodeIDs(g))
	assert.Empty(t, g.Links)
}

func TestWalk_UnknownRoot(t *testing.T) {
	g := Walk([]*model.Application{app("web", "ns")}, Key{Name: "nope", Namespace: "ns"}, Unbounded)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)

	g = Walk([]*model.Application{app("web", "ns")}, Key{}, DefaultDepth)
	assert.Empty(t, g.Nodes)
}

func TestWalk_Deterministic(t *testing.T) {
	apps := []*model.Application{
		app("top", "ns", "left", "right"),
		app("left", "ns", "bottom"),
		app("right", "ns", "bottom"),
		app("bottom", "ns"),
	}
	first := Walk(apps, Key{Name: "top", Namespace: "ns"}, Unbounded)
	for range 5 {
		assert.Equal(t, first, Walk(apps, Key{Name: "top", Namespace: "ns"}, Unbounded))
	}
}

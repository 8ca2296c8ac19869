package model

// NodeType classifies a node in a dependency graph response.
type NodeType string

const (
	// NodeApplication marks a node emitted for an application record.
	NodeApplication NodeType = "application"
	// NodeDependency marks a node first discovered as a dependsOn target.
	NodeDependency NodeType = "dependency"
	// NodeSource marks the root of a bounded dependency tree.
	NodeSource NodeType = "source"
)

// LinkDependency is the only link type emitted today.
const LinkDependency = "dependency"

// GraphNode is a vertex of a dependency graph. Level is set only for nodes
// produced by a bounded tree walk.
type GraphNode struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Namespace string   `json:"namespace"`
	Level     *int     `json:"level,omitempty"`
	Type      NodeType `json:"type"`
}

// GraphLink is a directed edge from the depended-upon application (Source)
// to the application that depends on it (Target).
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Graph is the response for the dependency graph endpoints.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

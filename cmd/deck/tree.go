package main

import (
	"context"
	"fmt"
	"io"

	"github.com/alfredjeanlab/appdeck/internal/client"
	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/ui"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:     "tree <name:namespace>",
	Short:   "Show the dependency tree of an application",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ns, err := parseAppRef(args[0])
		if err != nil {
			return err
		}
		depth, _ := cmd.Flags().GetString("depth")

		g, err := deckClient.GetDependencies(context.Background(), &client.DependenciesRequest{
			AppName:      name,
			AppNamespace: ns,
			Depth:        depth,
		})
		if err != nil {
			return fmt.Errorf("getting dependencies: %w", err)
		}
		if jsonOutput {
			return printJSON(g)
		}
		if len(g.Nodes) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s not found\n", args[0])
			return nil
		}
		renderTree(cmd.OutOrStdout(), g)
		return nil
	},
}

// renderTree prints a walk result as an ASCII tree rooted at the source
// node. Dependencies are the link sources pointing at a node. A node seen
// earlier on the current branch is marked as a cycle; a node whose subtree
// was already printed on another branch is marked as seen and not expanded
// again.
func renderTree(w io.Writer, g *model.Graph) {
	t := treePrinter{
		w:        w,
		nodes:    make(map[string]model.GraphNode, len(g.Nodes)),
		deps:     make(map[string][]string),
		path:     make(map[string]bool),
		expanded: make(map[string]bool),
	}
	var root string
	for _, n := range g.Nodes {
		t.nodes[n.ID] = n
		if n.Type == model.NodeSource && root == "" {
			root = n.ID
		}
	}
	if root == "" {
		return
	}
	for _, l := range g.Links {
		t.deps[l.Target] = append(t.deps[l.Target], l.Source)
	}

	fmt.Fprintln(w, nodeLabel(t.nodes[root]))
	t.path[root] = true
	t.expanded[root] = true
	t.branch(root, "")
}

type treePrinter struct {
	w        io.Writer
	nodes    map[string]model.GraphNode
	deps     map[string][]string
	path     map[string]bool // ids on the branch being printed
	expanded map[string]bool // ids whose children were printed
}

func (t *treePrinter) branch(id, prefix string) {
	children := t.deps[id]
	for i, child := range children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		n, ok := t.nodes[child]
		if !ok {
			n = model.GraphNode{ID: child}
		}
		switch {
		case t.path[child]:
			fmt.Fprintf(t.w, "%s%s%s %s\n", prefix, connector, nodeLabel(n), ui.RenderWarn("(cycle)"))
			continue
		case t.expanded[child] && len(t.deps[child]) > 0:
			fmt.Fprintf(t.w, "%s%s%s %s\n", prefix, connector, nodeLabel(n), ui.RenderMuted("(seen)"))
			continue
		}
		fmt.Fprintf(t.w, "%s%s%s\n", prefix, connector, nodeLabel(n))

		t.expanded[child] = true
		t.path[child] = true
		t.branch(child, childPrefix)
		delete(t.path, child)
	}
}

func nodeLabel(n model.GraphNode) string {
	label := ui.RenderCommand(n.ID)
	if n.Level != nil {
		label += ui.RenderMuted(fmt.Sprintf(" [level %d]", *n.Level))
	}
	return label
}

func init() {
	treeCmd.Flags().String("depth", "", `levels to follow, or "all" (default: server default)`)
}

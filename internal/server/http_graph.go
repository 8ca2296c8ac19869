package server

import (
	"net/http"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/graph"
)

// dependenciesRequest is the body of POST /v1/applications/dependencies.
// Depth is a non-negative integer, graph.UnboundedToken, or absent.
type dependenciesRequest struct {
	AppName      string `json:"app_name"`
	AppNamespace string `json:"app_namespace"`
	Depth        any    `json:"depth"`
}

// handleGetGraph handles GET /v1/graph.
// Returns every application and every dependsOn target as nodes, including
// targets with no record of their own.
func (s *CatalogServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	apps, err := s.store.ListApplications(r.Context())
	if err != nil {
		writeStoreError(w, err, "load applications")
		return
	}

	g := graph.BuildFull(apps)
	observeGraph("full", g)
	writeJSON(w, http.StatusOK, g)
}

// handleGetDependencies handles
// GET /v1/applications/{namespace}/{name}/dependencies?depth=N.
func (s *CatalogServer) handleGetDependencies(w http.ResponseWriter, r *http.Request) {
	root := graph.Key{Name: r.PathValue("name"), Namespace: r.PathValue("namespace")}
	depth := graph.DefaultDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		depth = graph.ParseDepth(v)
	}
	s.writeTree(w, r, root, depth)
}

// handleQueryDependencies handles POST /v1/applications/dependencies.
func (s *CatalogServer) handleQueryDependencies(w http.ResponseWriter, r *http.Request) {
	var in dependenciesRequest
	if err := decodeBody(r, &in); err != nil {
		writeStoreError(w, err, "query dependencies")
		return
	}
	if strings.TrimSpace(in.AppName) == "" || strings.TrimSpace(in.AppNamespace) == "" {
		writeError(w, http.StatusBadRequest, "app_name and app_namespace are required")
		return
	}

	root := graph.Key{Name: in.AppName, Namespace: in.AppNamespace}
	s.writeTree(w, r, root, graph.DepthFrom(in.Depth))
}

// writeTree walks the dependencies of root and writes the resulting tree.
// An unknown root yields an empty graph.
func (s *CatalogServer) writeTree(w http.ResponseWriter, r *http.Request, root graph.Key, depth graph.Depth) {
	apps, err := s.store.ListApplications(r.Context())
	if err != nil {
		writeStoreError(w, err, "load applications")
		return
	}

	g := graph.Walk(apps, root, depth)
	observeGraph("tree", g)
	writeJSON(w, http.StatusOK, g)
}

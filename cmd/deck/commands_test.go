package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/appdeck/internal/client"
	"github.com/alfredjeanlab/appdeck/internal/config"
	"github.com/alfredjeanlab/appdeck/internal/server"
	"github.com/alfredjeanlab/appdeck/internal/store/yamlstore"
)

// withCatalog points deckClient at a real catalog server backed by a
// temporary YAML store and returns the store directory.
func withCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	st := yamlstore.New(config.DataPaths{
		ApplicationsRoot:   filepath.Join(dir, "apps"),
		Components:         filepath.Join(dir, "metadatas", "components.yaml"),
		Substitutes:        filepath.Join(dir, "metadatas", "substitutes.yaml"),
		IngressAnnotations: filepath.Join(dir, "metadatas", "ingress_annotations.yaml"),
	}, nil)
	srv := httptest.NewServer(server.NewCatalogServer(st, nil, nil, nil).NewHTTPHandler(""))
	t.Cleanup(srv.Close)

	deckClient = client.NewHTTPClient(srv.URL, "", "tester")
	jsonOutput = false
	t.Cleanup(func() { deckClient = nil })
	return dir
}

// run executes the subcommand at path below parent and returns its output.
// Flags are reset afterwards so commands can be run again.
func run(t *testing.T, parent *cobra.Command, path, args []string, flags map[string]string) (string, error) {
	t.Helper()
	cmd := parent
	if len(path) > 0 {
		var err error
		cmd, _, err = parent.Find(path)
		require.NoError(t, err)
	}

	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	defer cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

func TestAppCommands(t *testing.T) {
	withCatalog(t)

	out, err := run(t, appCmd, []string{"create"}, []string{"db:prod"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Created prod/db\n", out)

	out, err = run(t, appCmd, []string{"create"}, []string{"prod/web"}, map[string]string{
		"depends-on": "db:prod",
		"active":     "true",
	})
	require.NoError(t, err)
	assert.Equal(t, "Created prod/web\n", out)

	out, err = run(t, appCmd, []string{"list"}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "2 applications")
	assert.Regexp(t, `prod\s+web\s+active\s+1`, out)

	out, err = run(t, appCmd, []string{"show"}, []string{"web:prod"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Depends On:  prod/db")
	assert.Contains(t, out, "Base:        apps")

	// Flags left unset keep the stored values.
	_, err = run(t, appCmd, []string{"update"}, []string{"web:prod"}, map[string]string{"interval": "5m"})
	require.NoError(t, err)
	app, err := deckClient.GetApplication(t.Context(), "prod", "web")
	require.NoError(t, err)
	assert.Equal(t, "5m", app.Interval)
	assert.True(t, app.Active)
	require.Len(t, app.DependsOn, 1)

	out, err = run(t, appCmd, []string{"delete"}, []string{"web:prod"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Deleted prod/web\n", out)

	_, err = run(t, appCmd, []string{"show"}, []string{"web:prod"}, nil)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestAppCreate_FromFile(t *testing.T) {
	withCatalog(t)

	file := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
name: api
namespace: staging
active: true
components:
  - path: components/api
dependsOn:
  - name: db
    namespace: staging
substitute:
  - key: REPLICAS
    value: "2"
`), 0o644))

	_, err := run(t, appCmd, []string{"create"}, nil, map[string]string{"file": file})
	require.NoError(t, err)

	app, err := deckClient.GetApplication(t.Context(), "staging", "api")
	require.NoError(t, err)
	assert.True(t, app.Active)
	assert.Equal(t, "components/api", app.Components[0].Path)
	assert.Equal(t, "REPLICAS", app.Substitute[0].Key)
}

func TestAppCreate_RequiresReference(t *testing.T) {
	withCatalog(t)

	_, err := run(t, appCmd, []string{"create"}, nil, nil)
	require.Error(t, err)

	_, err = run(t, appCmd, []string{"create"}, []string{"just-a-name"}, nil)
	require.Error(t, err)
}

func TestTreeCommand(t *testing.T) {
	withCatalog(t)

	for _, ref := range []string{"db:prod", "cache:prod"} {
		_, err := run(t, appCmd, []string{"create"}, []string{ref}, nil)
		require.NoError(t, err)
	}
	_, err := run(t, appCmd, []string{"create"}, []string{"api:prod"}, map[string]string{"depends-on": "db:prod"})
	require.NoError(t, err)
	_, err = run(t, appCmd, []string{"create"}, []string{"web:prod"}, map[string]string{"depends-on": "api:prod,cache:prod"})
	require.NoError(t, err)

	out, err := run(t, treeCmd, nil, []string{"web:prod"}, map[string]string{"depth": "1"})
	require.NoError(t, err)
	assert.Contains(t, out, "api:prod [level 1]")
	assert.Contains(t, out, "cache:prod [level 1]")
	assert.NotContains(t, out, "db:prod")

	out, err = run(t, treeCmd, nil, []string{"web:prod"}, map[string]string{"depth": "all"})
	require.NoError(t, err)
	assert.Contains(t, out, "db:prod [level 2]")

	out, err = run(t, treeCmd, nil, []string{"ghost:prod"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ghost:prod not found\n", out)

	out, err = run(t, graphCmd, nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "4 nodes, 3 links")
}

func TestEntryCommands(t *testing.T) {
	withCatalog(t)

	out, err := run(t, componentCmd, []string{"add"}, []string{"nginx"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Added component \"nginx\"\n", out)

	_, err = run(t, componentCmd, []string{"add"}, []string{"redis"}, nil)
	require.NoError(t, err)

	_, err = run(t, componentCmd, []string{"rename"}, []string{"redis", "valkey"}, nil)
	require.NoError(t, err)

	_, err = run(t, componentCmd, []string{"remove"}, []string{"nginx"}, nil)
	require.NoError(t, err)

	out, err = run(t, componentCmd, []string{"list"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "valkey\n", out)

	// Kinds are independent lists.
	out, err = run(t, substituteCmd, []string{"list"}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, annotationCmd, []string{"remove"}, []string{"missing"}, nil)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestSyncStatus_Unconfigured(t *testing.T) {
	withCatalog(t)

	out, err := run(t, syncCmd, []string{"status"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "no repository configured\n", out)

	_, err = run(t, syncCmd, []string{"pull"}, nil, nil)
	require.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	withCatalog(t)

	out, err := run(t, healthCmd, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Health: ok\n", out)
}

func TestParseAppRef(t *testing.T) {
	for _, tc := range []struct {
		in       string
		name, ns string
		wantErr  bool
	}{
		{in: "web:prod", name: "web", ns: "prod"},
		{in: "prod/web", name: "web", ns: "prod"},
		{in: "web", wantErr: true},
		{in: ":prod", wantErr: true},
		{in: "prod/", wantErr: true},
		{in: "", wantErr: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			name, ns, err := parseAppRef(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, name)
			assert.Equal(t, tc.ns, ns)
		})
	}
}

func TestColorizeHelpOutput(t *testing.T) {
	in := "Catalog:\n  app         Manage applications\n\nFlags:\n      --http-url string   catalog server URL (default \"http://localhost:8080\")\n"
	out := colorizeHelpOutput(in)

	// Color is disabled in tests, so styling leaves the text unchanged.
	assert.Equal(t, in, out)
	assert.True(t, strings.HasPrefix(out, "Catalog:"))
}

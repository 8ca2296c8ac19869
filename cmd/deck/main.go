package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/client"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool
	actor      string

	deckClient client.CatalogClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultHTTPURL() string {
	if s := os.Getenv("DECK_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if s := os.Getenv("DECK_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

// skipClient is installed as PersistentPreRunE on commands that never talk
// to a server.
func skipClient(*cobra.Command, []string) error { return nil }

var rootCmd = &cobra.Command{
	Use:          "deck <command>",
	Short:        "Manage the application catalog and its dependency graph",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		deckClient = client.NewHTTPClient(httpURL, authToken, actor)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deckClient != nil {
			deckClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "catalog server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor recorded on mutations")

	rootCmd.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "repo", Title: "Repository:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Catalog
	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(componentCmd)
	rootCmd.AddCommand(substituteCmd)
	rootCmd.AddCommand(annotationCmd)

	// Views
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(auditCmd)

	// Repository
	rootCmd.AddCommand(syncCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

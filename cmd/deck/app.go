package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// parseAppRef accepts either a node id ("name:namespace") or a path-style
// reference ("namespace/name").
func parseAppRef(s string) (name, namespace string, err error) {
	if n, ns, ok := strings.Cut(s, ":"); ok && n != "" && ns != "" {
		return n, ns, nil
	}
	if ns, n, ok := strings.Cut(s, "/"); ok && n != "" && ns != "" {
		return n, ns, nil
	}
	return "", "", fmt.Errorf("invalid application %q (want name:namespace or namespace/name)", s)
}

func parseDependencies(refs []string) ([]model.DependencyRef, error) {
	deps := make([]model.DependencyRef, 0, len(refs))
	for _, r := range refs {
		name, ns, err := parseAppRef(r)
		if err != nil {
			return nil, err
		}
		deps = append(deps, model.DependencyRef{Name: name, Namespace: ns})
	}
	return deps, nil
}

// readApplicationFile decodes an application record from a YAML (or JSON)
// file; "-" reads stdin.
func readApplicationFile(path string) (*model.Application, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var app model.Application
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &app, nil
}

var appCmd = &cobra.Command{
	Use:     "app",
	Short:   "Manage applications",
	GroupID: "catalog",
}

var appListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := deckClient.ListApplications(context.Background())
		if err != nil {
			return fmt.Errorf("listing applications: %w", err)
		}
		if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
			filtered := apps[:0]
			for _, a := range apps {
				if a.Namespace == ns {
					filtered = append(filtered, a)
				}
			}
			apps = filtered
		}
		if jsonOutput {
			return printJSON(apps)
		}
		printApplicationTable(cmd.OutOrStdout(), apps)
		return nil
	},
}

var appShowCmd = &cobra.Command{
	Use:   "show <name:namespace>",
	Short: "Show an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ns, err := parseAppRef(args[0])
		if err != nil {
			return err
		}
		app, err := deckClient.GetApplication(context.Background(), ns, name)
		if err != nil {
			return fmt.Errorf("getting application: %w", err)
		}
		if jsonOutput {
			return printJSON(app)
		}
		printApplication(cmd.OutOrStdout(), app)
		return nil
	},
}

var appCreateCmd = &cobra.Command{
	Use:   "create [name:namespace]",
	Short: "Create an application from flags or a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		var app *model.Application
		switch {
		case file != "":
			a, err := readApplicationFile(file)
			if err != nil {
				return err
			}
			app = a
		case len(args) == 1:
			name, ns, err := parseAppRef(args[0])
			if err != nil {
				return err
			}
			app = &model.Application{Name: name, Namespace: ns}
		default:
			return fmt.Errorf("an application reference or --file is required")
		}
		if err := applyAppFlags(cmd, app); err != nil {
			return err
		}

		created, err := deckClient.CreateApplication(context.Background(), app)
		if err != nil {
			return fmt.Errorf("creating application: %w", err)
		}
		if jsonOutput {
			return printJSON(created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s/%s\n", created.Namespace, created.Name)
		return nil
	},
}

var appUpdateCmd = &cobra.Command{
	Use:   "update <name:namespace>",
	Short: "Update an application",
	Args:  cobra.ExactArgs(1),
	Long: `Update an application. With --file the record is replaced by the file
contents; otherwise the current record is fetched and the given flags are
applied to it. Changing the name or namespace renames the application.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ns, err := parseAppRef(args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()

		var app *model.Application
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			app, err = readApplicationFile(file)
		} else {
			app, err = deckClient.GetApplication(ctx, ns, name)
		}
		if err != nil {
			return err
		}
		if err := applyAppFlags(cmd, app); err != nil {
			return err
		}

		updated, err := deckClient.UpdateApplication(ctx, ns, name, app)
		if err != nil {
			return fmt.Errorf("updating application: %w", err)
		}
		if jsonOutput {
			return printJSON(updated)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s/%s\n", updated.Namespace, updated.Name)
		return nil
	},
}

var appDeleteCmd = &cobra.Command{
	Use:   "delete <name:namespace>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ns, err := parseAppRef(args[0])
		if err != nil {
			return err
		}
		if err := deckClient.DeleteApplication(context.Background(), ns, name); err != nil {
			return fmt.Errorf("deleting application: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", ns, name)
		return nil
	},
}

// applyAppFlags applies the flags the user set to app. Flags left at their
// defaults do not touch the record.
func applyAppFlags(cmd *cobra.Command, app *model.Application) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		app.Name, _ = flags.GetString("name")
	}
	if flags.Changed("namespace") {
		app.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("active") {
		app.Active, _ = flags.GetBool("active")
	}
	if flags.Changed("prune") {
		app.Prune, _ = flags.GetBool("prune")
	}
	if flags.Changed("interval") {
		app.Interval, _ = flags.GetString("interval")
	}
	if flags.Changed("depends-on") {
		refs, _ := flags.GetStringSlice("depends-on")
		deps, err := parseDependencies(refs)
		if err != nil {
			return err
		}
		app.DependsOn = deps
	}
	if flags.Changed("component") {
		paths, _ := flags.GetStringSlice("component")
		app.Components = app.Components[:0]
		for _, p := range paths {
			app.Components = append(app.Components, model.ComponentRef{Path: p})
		}
	}
	return nil
}

func addAppFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "read the application record from a YAML file (- for stdin)")
	cmd.Flags().String("name", "", "application name")
	cmd.Flags().String("namespace", "", "application namespace")
	cmd.Flags().Bool("active", false, "mark the application active")
	cmd.Flags().Bool("prune", false, "enable pruning")
	cmd.Flags().String("interval", "", "reconciliation interval (e.g. 5m)")
	cmd.Flags().StringSlice("depends-on", nil, "dependencies as name:namespace (repeatable)")
	cmd.Flags().StringSlice("component", nil, "component paths (repeatable)")
}

func init() {
	appListCmd.Flags().StringP("namespace", "n", "", "only list applications in this namespace")
	addAppFlags(appCreateCmd)
	addAppFlags(appUpdateCmd)

	appCmd.AddCommand(appListCmd)
	appCmd.AddCommand(appShowCmd)
	appCmd.AddCommand(appCreateCmd)
	appCmd.AddCommand(appUpdateCmd)
	appCmd.AddCommand(appDeleteCmd)
}

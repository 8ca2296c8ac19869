package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/alfredjeanlab/appdeck/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// labelWidth is the width of the "Depends On:  " style labels.
const labelWidth = 13

func printApplication(w io.Writer, app *model.Application) {
	valueWidth := ui.Width() - labelWidth
	fmt.Fprintf(w, "Name:        %s\n", app.Name)
	fmt.Fprintf(w, "Namespace:   %s\n", app.Namespace)
	fmt.Fprintf(w, "Status:      %s\n", ui.RenderActive(app.Active))
	if app.Base != "" {
		fmt.Fprintf(w, "Base:        %s\n", app.Base)
	}
	fmt.Fprintf(w, "Prune:       %t\n", app.Prune)
	for _, f := range []struct{ label, v string }{
		{"Interval:    ", app.Interval},
		{"Retry:       ", app.RetryInterval},
		{"Timeout:     ", app.Timeout},
	} {
		if f.v != "" {
			fmt.Fprintf(w, "%s%s\n", f.label, f.v)
		}
	}
	if len(app.Components) > 0 {
		paths := make([]string, 0, len(app.Components))
		for _, c := range app.Components {
			if c.Path != "" {
				paths = append(paths, c.Path)
			} else {
				paths = append(paths, c.Nom)
			}
		}
		fmt.Fprintf(w, "Components:  %s\n", ui.Truncate(strings.Join(paths, ", "), valueWidth))
	}
	if len(app.DependsOn) > 0 {
		deps := make([]string, 0, len(app.DependsOn))
		for _, d := range app.DependsOn {
			deps = append(deps, d.Namespace+"/"+d.Name)
		}
		fmt.Fprintf(w, "Depends On:  %s\n", ui.Truncate(strings.Join(deps, ", "), valueWidth))
	}
	if app.Ingress != nil {
		fmt.Fprintf(w, "Ingress:     %s %s\n", app.Ingress.ClassName, app.Ingress.SectionPath)
		for k, v := range app.Ingress.Annotations {
			fmt.Fprintf(w, "  %s: %s\n", k, v)
		}
	}
	for _, s := range app.Substitute {
		fmt.Fprintf(w, "Substitute:  %s=%s\n", s.Key, s.Value)
	}
}

func printApplicationTable(w io.Writer, apps []*model.Application) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAMESPACE\tNAME\tSTATUS\tDEPENDS ON")
	for _, a := range apps {
		status := "inactive"
		if a.Active {
			status = "active"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", a.Namespace, a.Name, status, len(a.DependsOn))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d applications\n", len(apps))
}

func printGraphTable(w io.Writer, g *model.Graph) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\t\tTARGET")
	for _, l := range g.Links {
		fmt.Fprintf(tw, "%s\t->\t%s\n", l.Source, l.Target)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d nodes, %d links\n", len(g.Nodes), len(g.Links))
}

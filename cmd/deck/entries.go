package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/appdeck/internal/model"
	"github.com/spf13/cobra"
)

var (
	componentCmd  = newEntryCmd("component", "Manage the component list", model.KindComponent)
	substituteCmd = newEntryCmd("substitute", "Manage the substitute list", model.KindSubstitute)
	annotationCmd = newEntryCmd("annotation", "Manage the ingress annotation list", model.KindIngressAnnotation)
)

// newEntryCmd builds the list/add/rename/remove command tree for one named
// entry list.
func newEntryCmd(use, short string, kind model.EntryKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: "catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List " + use + " entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := deckClient.ListEntries(context.Background(), kind)
			if err != nil {
				return fmt.Errorf("listing %s entries: %w", use, err)
			}
			if jsonOutput {
				return printJSON(entries)
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a " + use + " entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := deckClient.CreateEntry(context.Background(), kind, args[0])
			if err != nil {
				return fmt.Errorf("adding %s: %w", use, err)
			}
			if jsonOutput {
				return printJSON(e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q\n", use, e.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a " + use + " entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := deckClient.RenameEntry(context.Background(), kind, args[0], args[1])
			if err != nil {
				return fmt.Errorf("renaming %s: %w", use, err)
			}
			if jsonOutput {
				return printJSON(e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s %q to %q\n", use, args[0], e.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a " + use + " entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deckClient.DeleteEntry(context.Background(), kind, args[0]); err != nil {
				return fmt.Errorf("removing %s: %w", use, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %q\n", use, args[0])
			return nil
		},
	})

	return cmd
}

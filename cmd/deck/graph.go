package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:     "graph",
	Short:   "Show the full dependency graph",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := deckClient.GetGraph(context.Background())
		if err != nil {
			return fmt.Errorf("getting graph: %w", err)
		}
		if jsonOutput {
			return printJSON(g)
		}
		printGraphTable(cmd.OutOrStdout(), g)
		return nil
	},
}

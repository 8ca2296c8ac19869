package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/appdeck/internal/ui"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Synchronize the catalog repository with its remote",
	GroupID: "repo",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the server's working copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := deckClient.SyncStatus(context.Background())
		if err != nil {
			return fmt.Errorf("getting sync status: %w", err)
		}
		if jsonOutput {
			return printJSON(st)
		}
		out := cmd.OutOrStdout()
		if !st.Configured {
			fmt.Fprintln(out, ui.RenderWarn("no repository configured"))
			return nil
		}
		state := ui.RenderSuccess("clean")
		if st.Dirty {
			state = ui.RenderWarn("uncommitted changes")
		}
		fmt.Fprintf(out, "Branch: %s\nHead:   %s\nState:  %s\n", st.Branch, st.Head, state)
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull remote changes into the working copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := deckClient.Pull(context.Background())
		if err != nil {
			return fmt.Errorf("pulling: %w", err)
		}
		if jsonOutput {
			return printJSON(res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push <message>",
	Short: "Commit local catalog changes and push them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := deckClient.Push(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("pushing: %w", err)
		}
		if jsonOutput {
			return printJSON(res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
}

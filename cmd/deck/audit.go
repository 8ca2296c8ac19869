package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:     "audit [subject]",
	Short:   "Show recorded catalog mutations",
	GroupID: "views",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		var subject string
		if len(args) == 1 {
			subject = args[0]
		}

		evts, err := deckClient.ListAudit(context.Background(), subject, limit)
		if err != nil {
			return fmt.Errorf("listing audit log: %w", err)
		}
		if jsonOutput {
			return printJSON(evts)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOPIC\tSUBJECT\tACTOR")
		for _, e := range evts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Topic,
				e.Subject,
				e.Actor,
			)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().Int("limit", 50, "maximum number of entries")
}

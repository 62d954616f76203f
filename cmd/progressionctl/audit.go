package main

import (
	"fmt"
	"progression-engine/internal/droptable"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	auditUser  string
	auditSince time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Summarize reward grants by context and rarity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		since := a.clock.Now().Add(-auditSince)
		summary, err := a.rewards.Summarize(cmd.Context(), auditUser, since)
		if err != nil {
			return fmt.Errorf("failed to summarize reward audit: %w", err)
		}

		totals := make(map[string]int)
		for _, row := range summary {
			totals[row.Context] += row.Grants
		}

		scope := auditUser
		if scope == "" {
			scope = "all users"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "grants for %s since %s\n", scope, since.Format(time.RFC3339))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "CONTEXT\tRARITY\tGRANTS\tSHARE\tANOMALIES\t")
		for _, row := range summary {
			share := 100 * float64(row.Grants) / float64(totals[row.Context])
			fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\t%d\t\n", row.Context, row.Rarity, row.Grants, share, row.Anomalies)
		}
		w.Flush()

		var epicPlus, total int
		for _, row := range summary {
			total += row.Grants
			if row.Rarity >= droptable.Epic {
				epicPlus += row.Grants
			}
		}
		if total > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "epic or better: %.1f%% of %d grants\n", 100*float64(epicPlus)/float64(total), total)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditUser, "user", "", "limit to one user id")
	auditCmd.Flags().DurationVar(&auditSince, "since", 24*time.Hour, "look-back window")
	rootCmd.AddCommand(auditCmd)
}

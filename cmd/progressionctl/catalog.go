package main

import (
	"fmt"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
	"progression-engine/internal/service"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	catalogKind string
	catalogAt   string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Generate and inspect quest periods",
}

var catalogGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the quests of a period if it has none yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, at, err := catalogTarget()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if at.IsZero() {
			at = a.clock.Now()
		}

		generator := service.NewPeriodGenerator(a.catalog, a.quests, a.logger)
		for _, kind := range kinds {
			defs, err := generator.Ensure(cmd.Context(), kind, at)
			if err != nil {
				return err
			}
			printDefinitions(cmd, period.Key(kind, at), defs)
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored quests of a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, at, err := catalogTarget()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if at.IsZero() {
			at = a.clock.Now()
		}

		for _, kind := range kinds {
			key := period.Key(kind, at)
			defs, err := a.quests.ListDefinitions(cmd.Context(), key)
			if err != nil {
				return err
			}
			printDefinitions(cmd, key, defs)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{catalogGenerateCmd, catalogShowCmd} {
		c.Flags().StringVar(&catalogKind, "kind", "all", "period kind: daily, weekly or all")
		c.Flags().StringVar(&catalogAt, "at", "", "RFC3339 instant inside the period (default now)")
		catalogCmd.AddCommand(c)
	}
	rootCmd.AddCommand(catalogCmd)
}

func catalogTarget() ([]period.Kind, time.Time, error) {
	var kinds []period.Kind
	switch catalogKind {
	case "all", "":
		kinds = []period.Kind{period.Daily, period.Weekly}
	case string(period.Daily), string(period.Weekly):
		kinds = []period.Kind{period.Kind(catalogKind)}
	default:
		return nil, time.Time{}, fmt.Errorf("unknown period kind %q", catalogKind)
	}

	var at time.Time
	if catalogAt != "" {
		parsed, err := time.Parse(time.RFC3339, catalogAt)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("invalid --at: %w", err)
		}
		at = parsed
	}
	return kinds, at, nil
}

func printDefinitions(cmd *cobra.Command, key string, defs []domain.QuestDefinition) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d quests)\n", key, len(defs))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  CODE\tGOAL\tTARGET\tDUST\tXP\tTICKET\tBADGE")
	for _, d := range defs {
		ticket := "-"
		if d.Reward.Ticket > 0 {
			ticket = d.Reward.Ticket.String()
		}
		badge := d.Reward.Badge
		if badge == "" {
			badge = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%d\t%d\t%d\t%s\t%s\n", d.Code, d.GoalType, d.GoalValue, d.Reward.Dust, d.Reward.XP, ticket, badge)
	}
	w.Flush()
}

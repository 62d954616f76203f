package main

import (
	"context"
	"fmt"
	"progression-engine/internal/constants"
	"progression-engine/internal/service"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate each new quest period shortly after UTC midnight",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		generator := service.NewPeriodGenerator(a.catalog, a.quests, a.logger)

		sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		job, err := sched.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 5))),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
				defer cancel()

				if _, err := generator.Active(ctx, a.clock.Now()); err != nil {
					a.logger.Error().Err(err).Msg("failed to generate quest periods")
				}
			}),
			gocron.WithName("generate-quest-periods"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule job: %w", err)
		}

		sched.Start()
		next, _ := job.NextRun()
		a.logger.Info().Str("job", job.Name()).Time("next_run", next).Msg("scheduler started")

		<-cmd.Context().Done()

		a.logger.Info().Msg("stopping scheduler")
		return sched.Shutdown()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

package main

import (
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/transitdesk/console/jobs"
)

func newWarmupCmd() *cobra.Command {
	var (
		entities []string
		pages    int
	)
	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Enqueue a list cache warmup run",
		Example: `  # Warm the first page of every table
  consolectl warmup

  # Warm three pages of bookings only
  consolectl warmup --entity booking --pages 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if pages < 0 || pages > 10 {
				return fmt.Errorf("pages must be between 0 and 10, got %d", pages)
			}
			client := jobs.NewClient(cfg.AsynqRedis())
			defer client.Close()

			info, err := client.EnqueueWarmup(cmd.Context(), jobs.WarmupPayload{Entities: entities, Pages: pages})
			if errors.Is(err, asynq.ErrDuplicateTask) {
				fmt.Fprintln(cmd.OutOrStdout(), "an identical warmup is already queued")
				return nil
			}
			if err != nil {
				return fmt.Errorf("enqueue warmup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s (id %s)\n", info.Type, info.Queue, info.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&entities, "entity", nil, "entity to warm (operator, customer, wallet, coupon, booking); repeatable")
	cmd.Flags().IntVar(&pages, "pages", 0, "pages per entity (default: WARMUP_PAGES)")
	return cmd
}

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the background job queue depth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			inspector := asynq.NewInspector(cfg.AsynqRedis())
			defer inspector.Close()

			info, err := inspector.GetQueueInfo(jobs.QueueDefault)
			if err != nil {
				return fmt.Errorf("inspect queue: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
				info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry, info.Failed)
			return nil
		},
	}
}

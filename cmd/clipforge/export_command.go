package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/queue"
	"clipforge/internal/workflow"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "export [video...]",
		Short: "Queue videos and run the batch export",
		Long: "Export queues the given videos (if any) and then processes every " +
			"pending job in queue order: compositing into the template, burning " +
			"captions, dubbing, encoding, validating, and packaging the results " +
			"into zip archives in the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if len(args) > 0 {
					batch := batchID
					if batch == "" {
						batch = uuid.NewString()
					}
					if _, err := enqueueSources(runCtx, store, batch, args, out); err != nil {
						return err
					}
				}

				logger, err := ctx.newLogger(cfg)
				if err != nil {
					return err
				}

				manager := workflow.NewManager(cfg, store, logger)
				if err := manager.RunBatch(runCtx); err != nil {
					return err
				}

				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Batch finished: %d completed, %d failed\n", health.Completed, health.Failed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch identifier for the queued videos (default: random)")
	return cmd
}

package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spec-kit/inventory-service/internal/client"
)

func newSyncCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Args:  cobra.NoArgs,
		Short: "Replay queued offline movements",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := e.api.Queue().Drain(cmd.Context())
			if err != nil {
				return err
			}
			printDrain(cmd, result)
			return nil
		},
	}
}

func newQueueCommand(e *env) *cobra.Command {
	var deadLetters bool

	cmd := &cobra.Command{
		Use:   "queue",
		Args:  cobra.NoArgs,
		Short: "Show queued offline movements",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := e.api.Queue().Pending
			if deadLetters {
				list = e.api.Queue().DeadLetters
			}
			items, err := list()
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		},
	}

	cmd.Flags().BoolVar(&deadLetters, "dead", false, "show dead-lettered movements instead")
	return cmd
}

func newWatchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Args:  cobra.NoArgs,
		Short: "Drain the offline queue whenever the API comes back",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := client.NewWatcher(e.api.Client().Reachable, e.api.Queue(), e.cfg.ProbeInterval(), e.log)
			w.OnDrain = func(result client.DrainResult, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "sync failed: %v\n", err)
					return
				}
				printDrain(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watching %s every %s\n", e.cfg.BaseURL, e.cfg.ProbeInterval())
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func printDrain(cmd *cobra.Command, r client.DrainResult) {
	msg := fmt.Sprintf("synced: %d succeeded, %d failed", r.Succeeded, r.Failed)
	if r.DeadLettered > 0 {
		msg += fmt.Sprintf(" (%d dead-lettered)", r.DeadLettered)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}

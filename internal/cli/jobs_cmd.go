package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locallibrary/locallibrary/jobs"
)

func newJobsCmd(backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}
	cmd.AddCommand(newJobsRemindCmd(backend))
	cmd.AddCommand(newJobsInspectCmd(backend))
	return cmd
}

func newJobsRemindCmd(backend Backend) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Queue a due-loan reminder scan now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			queue, err := backend.Jobs()
			if err != nil {
				return err
			}
			info, err := queue.EnqueueDueReminder(cmd.Context(), jobs.DueReminderPayload{Days: days})
			if err != nil {
				return fmt.Errorf("enqueue reminder: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as %s on %s\n", jobs.TaskTypeDueReminder, info.ID, info.Queue)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Look-ahead window in days (0 uses the worker default)")
	return cmd
}

func newJobsInspectCmd(backend Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the default queue depth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queue, err := backend.Jobs()
			if err != nil {
				return err
			}
			info, err := queue.GetQueueInfo(jobs.QueueDefault)
			if err != nil {
				return fmt.Errorf("inspect queue: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
				info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry, info.Archived)
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/adventofai/backend/src/service"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the unlock state of every challenge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, application, err := openApplication(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer application.Shutdown(ctx)

			statuses, err := application.ChallengeService.ListStatus(ctx)
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}
			return printStatus(cmd.OutOrStdout(), statuses, application.Schedule.Location())
		},
	}
}

func printStatus(w io.Writer, statuses []service.ChallengeStatus, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tSCHEDULED\tSTATE\tDISCUSSION")
	for _, s := range statuses {
		state := "locked"
		discussion := "-"
		if s.Unlocked {
			state = "unlocked"
			if s.DiscussionURL != nil {
				discussion = *s.DiscussionURL
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Day, s.ScheduledUnlockAt.In(loc).Format("Mon Jan 2 15:04 MST"), state, discussion)
	}
	return tw.Flush()
}

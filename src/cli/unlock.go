package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/service"
	"github.com/spf13/cobra"
)

type unlockOutput struct {
	Day              int        `json:"day"`
	AlreadyUnlocked  bool       `json:"alreadyUnlocked"`
	NoChallenge      bool       `json:"noChallenge,omitempty"`
	Date             string     `json:"date,omitempty"`
	DiscussionURL    string     `json:"discussionUrl,omitempty"`
	DiscussionNumber int        `json:"discussionNumber,omitempty"`
	UnlockedAt       *time.Time `json:"unlockedAt,omitempty"`
}

func newUnlockOutput(result *service.UnlockResult) unlockOutput {
	out := unlockOutput{
		Day:             result.Challenge.Day,
		AlreadyUnlocked: result.AlreadyUnlocked,
		UnlockedAt:      result.Challenge.UnlockedAt,
	}
	if result.Challenge.DiscussionURL != nil {
		out.DiscussionURL = *result.Challenge.DiscussionURL
	}
	if result.Challenge.DiscussionNumber != nil {
		out.DiscussionNumber = *result.Challenge.DiscussionNumber
	}
	return out
}

func printUnlock(w io.Writer, format string, out unlockOutput) error {
	if format == "json" {
		return writeJSON(w, out)
	}

	switch {
	case out.NoChallenge:
		_, err := fmt.Fprintf(w, "No challenge scheduled for %s\n", out.Date)
		return err
	case out.AlreadyUnlocked:
		_, err := fmt.Fprintf(w, "Challenge %d is already unlocked: %s\n", out.Day, out.DiscussionURL)
		return err
	default:
		_, err := fmt.Fprintf(w, "Challenge %d unlocked: %s (#%d)\n", out.Day, out.DiscussionURL, out.DiscussionNumber)
		return err
	}
}

// NewUnlockCommand creates the unlock command
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <day>",
		Short: "Unlock one challenge and open its discussion",
		Long: `Unlock a challenge by day number (1-17). Unlocking a day that is
already unlocked does nothing and prints the existing discussion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := domain.ParseDay(args[0])
			if err != nil {
				return fmt.Errorf("invalid day %q: must be between %d and %d", args[0], domain.FirstDay, domain.LastDay)
			}

			ctx, application, err := openApplication(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer application.Shutdown(ctx)

			result, err := application.UnlockService.Unlock(ctx, day)
			if err != nil {
				return err
			}
			return printUnlock(cmd.OutOrStdout(), rootOpts.Format, newUnlockOutput(result))
		},
	}
}

// NewUnlockTodayCommand creates the unlock-today command
func NewUnlockTodayCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "unlock-today",
		Short: "Unlock the challenge scheduled for today in US Eastern time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, application, err := openApplication(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer application.Shutdown(ctx)

			now := time.Now()
			if date != "" {
				now, err = time.ParseInLocation("2006-01-02", date, application.Schedule.Location())
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
				}
			}

			result, err := application.UnlockService.UnlockToday(ctx, now)
			if err != nil {
				return err
			}
			if result.NoChallenge {
				return printUnlock(cmd.OutOrStdout(), rootOpts.Format, unlockOutput{NoChallenge: true, Date: result.Date})
			}

			out := newUnlockOutput(result.Result)
			out.Date = result.Date
			return printUnlock(cmd.OutOrStdout(), rootOpts.Format, out)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "act as if today were this date (YYYY-MM-DD)")

	return cmd
}

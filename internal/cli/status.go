package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/daemon"
	"github.com/sleepsheep/sheep/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status <user>",
	Short: "Show a user's sheep, streak and rewards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			return printStatus(ctx, cmd.OutOrStdout(), d, args[0])
		})
	},
}

// withDaemon opens the configured store for a one-shot command.
func withDaemon(cmd *cobra.Command, fn func(ctx context.Context, d *daemon.Daemon) error) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(cmd.Context(), d)
}

func printStatus(ctx context.Context, out io.Writer, d *daemon.Daemon, userID string) error {
	state, progress, err := d.Service.Account(ctx, userID)
	if err != nil {
		return err
	}
	history, err := d.Service.History(ctx, userID, 30)
	if err != nil {
		return err
	}

	sleeping := false
	if _, err := d.Service.CurrentSession(ctx, userID); err == nil {
		sleeping = true
	} else if !errors.Is(err, domain.ErrNoOpenSession) {
		return err
	}

	lastNight := 0
	for _, s := range history {
		if !s.IsOpen() {
			lastNight = s.PointsEarned
			break
		}
	}
	mood := engagement.SessionMood(lastNight, state.Streak.Current, sleeping)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "USER\t%s\n", state.UserID)
	fmt.Fprintf(w, "SHEEP\t%s\n", progress.StageName)
	fmt.Fprintf(w, "MOOD\t%s\n", mood)
	fmt.Fprintf(w, "POINTS\t%d\n", state.TotalPoints)
	fmt.Fprintf(w, "STREAK\t%d (longest %d). %s\n", state.Streak.Current, state.Streak.Longest,
		engagement.StreakMessage(state.Streak.Current))
	fmt.Fprintf(w, "GOOD NIGHTS\t%d in a row\n", engagement.StreakFromHistory(history, d.Time.LocalDateToday()))
	fmt.Fprintf(w, "NIGHTS\t%d\n", state.SessionsCompleted)
	if state.Deaths > 0 {
		fmt.Fprintf(w, "RESTARTS\t%d\n", state.Deaths)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", stageLine(state.Stage, progress))
	if progress.Warning != "" {
		fmt.Fprintf(out, "  [!] %s\n", progress.Warning)
	}
	if len(history) > 0 && !sleeping {
		fmt.Fprintf(out, "  %s\n", engagement.NightMessage(lastNight, state.Streak.Current))
	}

	if len(progress.Unlocked) > 0 {
		ids := make([]string, 0, len(progress.Unlocked))
		for _, u := range progress.Unlocked {
			ids = append(ids, u.ID)
		}
		fmt.Fprintf(out, "\nUnlocked: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

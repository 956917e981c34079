package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sleepsheep/sheep/internal/app/account"
	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/daemon"
	"github.com/sleepsheep/sheep/internal/domain"
)

var (
	endPhone int
	endAlarm string
)

func init() {
	sleepEndCmd.Flags().IntVar(&endPhone, "phone", 0, "Minutes of phone use after bedtime")
	sleepEndCmd.Flags().StringVar(&endAlarm, "alarm", "", "When the alarm fired (RFC3339); late wake-ups cost points")

	sleepCmd.AddCommand(sleepStartCmd, sleepCheckInCmd, sleepMissCmd, sleepSnoozeCmd, sleepEndCmd)
	rootCmd.AddCommand(sleepCmd)
}

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Run a night's sleep session",
}

var sleepStartCmd = &cobra.Command{
	Use:   "start <user>",
	Short: "Go to bed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			res, err := d.Service.StartSleep(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Good night! Session %s started at %s.\n",
				res.Session.ID, res.Session.Bedtime.Format("15:04"))
			if res.Penalty.Delta < 0 {
				fmt.Fprintf(out, "Past your bedtime: ")
				printResult(out, res.Penalty)
			}
			return nil
		})
	},
}

var sleepCheckInCmd = &cobra.Command{
	Use:   "checkin <user>",
	Short: "Answer a check-in",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionStepCmd((*account.Service).CheckIn),
}

var sleepMissCmd = &cobra.Command{
	Use:   "miss <user>",
	Short: "Record a missed check-in",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionStepCmd((*account.Service).MissCheckIn),
}

var sleepSnoozeCmd = &cobra.Command{
	Use:   "snooze <user>",
	Short: "Record an alarm snooze",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionStepCmd((*account.Service).Snooze),
}

func sessionStepCmd(step func(*account.Service, context.Context, string) (domain.SleepSession, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			sess, err := step(d.Service, ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "missed check-ins: %d, snoozes: %d\n",
				sess.CheckInsMissed, sess.SnoozeCount)
			return nil
		})
	}
}

var sleepEndCmd = &cobra.Command{
	Use:   "end <user>",
	Short: "Wake up and score the night",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := account.EndSleepRequest{PhoneUsageMinutes: endPhone}
		if endAlarm != "" {
			at, err := time.Parse(time.RFC3339, endAlarm)
			if err != nil {
				return fmt.Errorf("--alarm: %w", err)
			}
			req.AlarmFiredAt = &at
		}
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			res, err := d.Service.EndSleep(ctx, args[0], req)
			if err != nil {
				return err
			}
			printNight(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

func printNight(out io.Writer, res domain.SessionResult) {
	b := res.Breakdown
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BEDTIME\t%+d\n", b.BedtimeAdherence)
	fmt.Fprintf(w, "CHECK-INS\t%+d\n", b.CheckIns)
	fmt.Fprintf(w, "STREAK BONUS\t%+d\n", b.StreakBonus)
	fmt.Fprintf(w, "PHONE\t%+d\n", -b.PhonePenalty)
	fmt.Fprintf(w, "SNOOZES\t%+d\n", -b.SnoozePenalty)
	fmt.Fprintf(w, "NIGHT\t%d\n", b.Total)
	w.Flush()

	printResult(out, res.Result)
	fmt.Fprintln(out, engagement.NightMessage(res.Delta, res.Streak.Current))
}

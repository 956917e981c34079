package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/daemon"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/timemath"
)

type scoreFlags struct {
	bedtime string
	target  string
	missed  int
	snoozes int
	streak  int
	phone   int
	simple  bool
	legacy  bool
}

var scoreOpts scoreFlags

func init() {
	f := scoreCmd.Flags()
	f.StringVar(&scoreOpts.bedtime, "bedtime", "", "Actual bedtime, HH:MM (required)")
	f.StringVar(&scoreOpts.target, "target", "", "Bedtime target, HH:MM (default from config)")
	f.IntVar(&scoreOpts.missed, "missed", 0, "Check-ins missed")
	f.IntVar(&scoreOpts.snoozes, "snoozes", 0, "Alarm snoozes")
	f.IntVar(&scoreOpts.streak, "streak", 0, "Streak before this night")
	f.IntVar(&scoreOpts.phone, "phone", 0, "Minutes of phone use after bedtime")
	f.BoolVar(&scoreOpts.simple, "simple", false, "Use the simple streak bonus")
	f.BoolVar(&scoreOpts.legacy, "legacy", false, "Use the first-generation scoring model")
	_ = scoreCmd.MarkFlagRequired("bedtime")
	rootCmd.AddCommand(scoreCmd)
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Preview how a night would score",
	Long: `Score a hypothetical night without touching any account.

Examples:
  sheep score --bedtime 22:10 --missed 1
  sheep score --bedtime 23:00 --target 22:30 --snoozes 2 --legacy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		loc, err := timemath.LoadLocation(cfg.Schedule.Timezone)
		if err != nil {
			return err
		}
		return runScore(cmd.OutOrStdout(), cfg, scoreOpts, time.Now().In(loc))
	},
}

func runScore(out io.Writer, cfg daemon.Config, opts scoreFlags, now time.Time) error {
	target := opts.target
	if target == "" {
		target = cfg.Schedule.BedtimeTarget
	}
	targetAt, err := timemath.At(now, target)
	if err != nil {
		return err
	}
	bedtime, err := timemath.NearestOccurrence(targetAt, opts.bedtime)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if opts.legacy {
		b := engagement.LegacyPoints(engagement.LegacyInput{
			BedtimeTarget:  targetAt,
			ActualBedtime:  bedtime,
			CheckInsMissed: opts.missed,
			SnoozeCount:    opts.snoozes,
			CurrentStreak:  opts.streak,
		})
		fmt.Fprintf(w, "BEDTIME\t%+d\n", b.TimeAdherence)
		fmt.Fprintf(w, "CHECK-INS\t%+d\n", b.CheckIns)
		fmt.Fprintf(w, "SNOOZES\t%+d\n", b.Snoozes)
		fmt.Fprintf(w, "STREAK BONUS\t%+d\n", b.StreakBonus)
		fmt.Fprintf(w, "TOTAL\t%d\n", b.Total)
		return nil
	}

	variant := cfg.Scoring.StreakBonus
	if opts.simple {
		variant = "simple"
	}
	policy := engagement.PolicyFor(cfg.Scoring.ExpectedCheckIns, variant)

	b, err := policy.SessionPoints(domain.SleepSession{
		Bedtime:        bedtime,
		CheckInsMissed: opts.missed,
		SnoozeCount:    opts.snoozes,
	}, domain.UserSettings{BedtimeTarget: target}, opts.streak, opts.phone)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "BEDTIME\t%+d\n", b.BedtimeAdherence)
	fmt.Fprintf(w, "CHECK-INS\t%+d\n", b.CheckIns)
	fmt.Fprintf(w, "STREAK BONUS\t%+d\n", b.StreakBonus)
	fmt.Fprintf(w, "PHONE\t%+d\n", -b.PhonePenalty)
	fmt.Fprintf(w, "SNOOZES\t%+d\n", -b.SnoozePenalty)
	fmt.Fprintf(w, "TOTAL\t%d\n", b.Total)
	for _, a := range b.Anomalies {
		fmt.Fprintf(w, "NOTE\t%s\n", a)
	}
	return nil
}
